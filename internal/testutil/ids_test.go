package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_Default(t *testing.T) {
	g := NewFixedIDGenerator()
	assert.Equal(t, "test-run-default", g.Generate())
	assert.Equal(t, "test-run-default", g.Generate())
}

func TestFixedIDGenerator_Single(t *testing.T) {
	g := NewFixedIDGenerator("run-1")
	assert.Equal(t, "run-1", g.Generate())
	assert.Equal(t, "run-1", g.Generate())
}

func TestFixedIDGenerator_Sequence(t *testing.T) {
	g := NewFixedIDGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Equal(t, "b-1", g.Generate())
	assert.Equal(t, "b-2", g.Generate())
}
