// Package proptest runs seeded property checks over randomly generated
// queries. A failing check reports its seed; set PROPTEST_SEED to replay it.
//
//	proptest.Check(t, "placeholders unique", proptest.Config{}, func(g *proptest.Generator) (string, bool) {
//	    cols := proptest.Slice(g, 8, proptest.Column)
//	    ...
//	})
package proptest

import (
	"math/rand"
	"time"
)

// Generator is a seeded source of test inputs.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// New returns a generator for seed; 0 picks a clock-based seed.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the generator's seed.
func (g *Generator) Seed() int64 { return g.seed }

// Intn returns an int in [0, n). It panics if n <= 0.
func (g *Generator) Intn(n int) int { return g.rng.Intn(n) }

// Bool returns true half the time.
func (g *Generator) Bool() bool { return g.Prob(0.5) }

// Prob returns true with probability p.
func (g *Generator) Prob(p float64) bool { return g.rng.Float64() < p }

// IntRange returns an int in [lo, hi].
func (g *Generator) IntRange(lo, hi int) int {
	return int(g.Int64Range(int64(lo), int64(hi)))
}

// Int64Range returns an int64 in [lo, hi]. It panics if lo > hi.
func (g *Generator) Int64Range(lo, hi int64) int64 {
	if lo > hi {
		panic("proptest: empty range")
	}
	return lo + g.rng.Int63n(hi-lo+1)
}

const (
	lower     = "abcdefghijklmnopqrstuvwxyz"
	identTail = lower + "0123456789_"
)

// Identifier returns a lowercase SQL identifier of 1 to maxLen bytes.
func (g *Generator) Identifier(maxLen int) string {
	n := g.IntRange(1, max(maxLen, 1))
	b := make([]byte, n)
	b[0] = lower[g.Intn(len(lower))]
	for i := 1; i < n; i++ {
		b[i] = identTail[g.Intn(len(identTail))]
	}
	return string(b)
}

// Pick returns a random element of items. It panics if items is empty.
func Pick[T any](g *Generator, items ...T) T {
	return items[g.Intn(len(items))]
}

// Slice returns up to maxLen values from gen.
func Slice[T any](g *Generator, maxLen int, gen func(*Generator) T) []T {
	if maxLen <= 0 {
		return nil
	}
	out := make([]T, g.Intn(maxLen+1))
	for i := range out {
		out[i] = gen(g)
	}
	return out
}
