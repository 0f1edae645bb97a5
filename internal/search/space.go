package search

import "iter"

// Partition is the half-open range [Start, End) of alphabet indexes a worker
// may use as the first character of a candidate. Later positions always
// range over the whole alphabet.
type Partition struct {
	Start int
	End   int
}

// Size returns the number of first characters in p.
func (p Partition) Size() int { return p.End - p.Start }

// Partitions splits an alphabet of size n into at most workers contiguous,
// disjoint ranges that together cover [0, n). Range sizes differ by at most
// one. There are never more ranges than characters.
func Partitions(n, workers int) []Partition {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	size, extra := n/workers, n%workers
	parts := make([]Partition, 0, workers)
	start := 0
	for w := 0; w < workers; w++ {
		end := start + size
		if w < extra {
			end++
		}
		parts = append(parts, Partition{Start: start, End: end})
		start = end
	}
	return parts
}

// Candidates yields every length-n string over a whose first character lies
// in p, in lexicographic order of alphabet index. Alongside each string it
// yields the index of the leftmost position that differs from the previous
// string (0 for the first), so callers can keep per-position state.
// The yielded slice is reused between iterations.
func (p Partition) Candidates(a Alphabet, n int) iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		if n <= 0 || p.Start < 0 || p.End > len(a) || p.Start >= p.End {
			return
		}

		idx := make([]int, n)
		buf := make([]byte, n)
		idx[0] = p.Start
		buf[0] = a[p.Start]
		for i := 1; i < n; i++ {
			buf[i] = a[0]
		}

		changed := 0
		for {
			if !yield(changed, buf) {
				return
			}

			pos := n - 1
			for {
				idx[pos]++
				limit := len(a)
				if pos == 0 {
					limit = p.End
				}
				if idx[pos] < limit {
					buf[pos] = a[idx[pos]]
					break
				}
				if pos == 0 {
					return
				}
				idx[pos] = 0
				buf[pos] = a[0]
				pos--
			}
			changed = pos
		}
	}
}

// Enumerate yields every length-n string over a in lexicographic order.
func Enumerate(a Alphabet, n int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, c := range (Partition{Start: 0, End: len(a)}).Candidates(a, n) {
			if !yield(string(c)) {
				return
			}
		}
	}
}
