// Package search finds the shortest SQL line comment that gives a migration
// a chosen Flyway checksum.
//
// Candidates are "--" followed by 1 to 8 characters from a printable ASCII
// Alphabet. For each length the alphabet is split by first character into
// Partitions, one per worker; workers walk their partition depth first and
// continue from the saved checksum register of the file body, so each
// candidate costs a few CRC steps regardless of file size. The first match
// stops every worker of the round; longer lengths are never tried once a
// shorter one has matched.
package search
