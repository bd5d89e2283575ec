package sampler

import "math/rand/v2"

// Rand is the randomness the sampler draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// DefaultRand uses the goroutine-safe global math/rand/v2 source.
var DefaultRand Rand = globalRand{}

type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Pick returns min(n, len(items)) elements chosen by a uniform shuffle.
// items is left untouched.
func Pick[T any](r Rand, items []T, n int) []T {
	if n <= 0 || len(items) == 0 {
		return []T{}
	}
	if r == nil {
		r = DefaultRand
	}

	shuffled := make([]T, len(items))
	copy(shuffled, items)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// drawPages returns k distinct page indices from [0, totalPages).
// Memory is O(k) whatever totalPages is (Floyd's sampling).
func drawPages(r Rand, totalPages, k int) []int {
	if k > totalPages {
		k = totalPages
	}
	if k <= 0 {
		return nil
	}

	seen := make(map[int]struct{}, k)
	pages := make([]int, 0, k)
	for j := totalPages - k; j < totalPages; j++ {
		p := r.IntN(j + 1)
		if _, dup := seen[p]; dup {
			p = j
		}
		seen[p] = struct{}{}
		pages = append(pages, p)
	}
	return pages
}
