package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(99)
	b := New(99)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewDiffersBySeed(t *testing.T) {
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestNewOrTimeKeepsExplicitSeed(t *testing.T) {
	assert.Equal(t, New(5).Uint64(), NewOrTime(5).Uint64())
}
