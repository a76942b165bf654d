package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predictable run identifiers for tests.
//
// With a single token every call returns it. With several tokens they are
// returned in order, and once exhausted the generator falls back to
// "<last>-<n>" so a test that runs more often than expected still gets
// distinct values.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedIDGenerator creates a generator over tokens.
// With no tokens, Generate returns "test-run-default".
func NewFixedIDGenerator(tokens ...string) *FixedIDGenerator {
	if len(tokens) == 0 {
		tokens = []string{"test-run-default"}
	}
	return &FixedIDGenerator{tokens: tokens}
}

// Generate returns the next identifier.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.tokens) == 1 {
		return g.tokens[0]
	}
	if g.idx < len(g.tokens) {
		token := g.tokens[g.idx]
		g.idx++
		return token
	}
	g.idx++
	return fmt.Sprintf("%s-%d", g.tokens[len(g.tokens)-1], g.idx-len(g.tokens))
}
