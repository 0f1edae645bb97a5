// Package checksum computes Flyway-compatible migration checksums.
//
// Flyway splits a script into lines on '\n', strips a leading byte order mark
// from each line, and feeds the UTF-8 bytes of every line into one CRC-32
// (IEEE) accumulator. The newline separators themselves are never hashed.
//
// The accumulator exposes its raw register (Register/SetRegister, State,
// MarshalBinary) so a caller can hash a long common prefix once and then
// continue from the saved register for many different suffixes.
package checksum
