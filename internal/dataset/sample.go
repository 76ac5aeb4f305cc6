package dataset

import (
	"math/rand/v2"

	"github.com/cuisine-engine/backend/internal/cleaning"
)

const (
	DefaultMaxRows = 8000
	DefaultSeed    = 42
)

// Sample returns at most limit rows picked by a permutation seeded with seed.
// The same rows and seed always give the same sample in the same order.
func Sample(rows []cleaning.RawRecord, limit int, seed uint64) []cleaning.RawRecord {
	n := len(rows)
	if limit < 0 {
		limit = 0
	}
	if limit > n {
		limit = n
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	out := make([]cleaning.RawRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = rows[perm[i]]
	}
	return out
}
