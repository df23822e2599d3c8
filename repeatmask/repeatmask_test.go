package repeatmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAndGet(t *testing.T) {
	s := NewSet(20)
	s.MarkRange(5, 10)
	for i := int64(0); i < 20; i++ {
		want := i >= 5 && i < 10
		assert.Equal(t, want, s.Get(i), "position %d", i)
	}
}

func TestCountInRangeMatchesNaiveScan(t *testing.T) {
	s := NewSet(64)
	s.Mark(0)
	s.Mark(3)
	s.Mark(8)
	s.Mark(9)
	s.Mark(40)
	s.Mark(63)
	s.Freeze()

	naive := func(lo, hi int64) int {
		c := 0
		for i := lo; i < hi; i++ {
			if s.Get(i) {
				c++
			}
		}
		return c
	}

	for _, rng := range [][2]int64{{0, 64}, {0, 10}, {4, 9}, {9, 9}, {40, 64}} {
		assert.Equal(t, naive(rng[0], rng[1]), s.CountInRange(rng[0], rng[1]), "range %v", rng)
	}
}

func TestMarkPanicsAfterFreeze(t *testing.T) {
	s := NewSet(4)
	s.Freeze()
	require.Panics(t, func() { s.Mark(0) })
}
