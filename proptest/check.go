package proptest

import (
	"os"
	"strconv"
	"testing"
)

// Config tunes a Check run. The zero value runs 100 trials with a fresh seed.
type Config struct {
	Trials int
	Seed   int64
}

// seed prefers PROPTEST_SEED over cfg.Seed.
func (cfg Config) seed() int64 {
	if s, err := strconv.ParseInt(os.Getenv("PROPTEST_SEED"), 10, 64); err == nil {
		return s
	}
	return cfg.Seed
}

// Check evaluates prop against cfg.Trials generated inputs and stops at the
// first failure. prop returns a label describing its input, which is printed
// with the seed when it fails.
func Check(t *testing.T, name string, cfg Config, prop func(g *Generator) (label string, ok bool)) {
	t.Helper()

	trials := cfg.Trials
	if trials <= 0 {
		trials = 100
	}
	g := New(cfg.seed())
	if testing.Verbose() {
		t.Logf("proptest %q: %d trials, seed %d", name, trials, g.Seed())
	}

	for i := 1; i <= trials; i++ {
		if label, ok := prop(g); !ok {
			t.Errorf("proptest %q failed on trial %d: %s\n  replay with PROPTEST_SEED=%d", name, i, label, g.Seed())
			return
		}
	}
}
