package band

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandWellFormed(t *testing.T) {
	b, err := Construct([]Anchor{{2, 2}}, 5, 5, 2)
	require.NoError(t, err)

	var prevLo, prevHi int64
	havePrev := false
	for xay := int64(0); xay <= b.lX+b.lY; xay++ {
		d, filled := b.At(xay)
		if !filled {
			havePrev = false
			continue
		}
		assert.LessOrEqual(t, d.XmyL, d.XmyR)
		assert.Equal(t, xay%2, ((d.XmyL%2)+2)%2)
		if havePrev {
			assert.LessOrEqual(t, abs64(d.XmyL-prevLo), int64(1))
			assert.LessOrEqual(t, abs64(d.XmyR-prevHi), int64(1))
		}
		prevLo, prevHi = d.XmyL, d.XmyR
		havePrev = true
	}
}

func TestDiagonalAlgebra(t *testing.T) {
	b, err := Construct([]Anchor{{3, 3}}, 6, 6, 3)
	require.NoError(t, err)
	for xay := int64(0); xay <= 12; xay++ {
		d, filled := b.At(xay)
		if !filled {
			continue
		}
		for xmy := d.XmyL; xmy <= d.XmyR; xmy += 2 {
			x, y := X(xay, xmy), Y(xay, xmy)
			assert.Equal(t, xay, x+y)
			assert.Equal(t, xmy, x-y)
		}
	}
}

func TestConstructRejectsNonMonotonicAnchors(t *testing.T) {
	_, err := Construct([]Anchor{{3, 3}, {2, 5}}, 10, 10, 2)
	assert.Error(t, err)
}

func TestIteratorsTraverseFullRange(t *testing.T) {
	b, err := Construct([]Anchor{{2, 2}}, 4, 4, 4)
	require.NoError(t, err)

	fwd := NewForwardIterator(b)
	var seen []int64
	for {
		d, _, ok := fwd.Next()
		if !ok {
			break
		}
		seen = append(seen, d.Xay)
	}
	assert.Equal(t, int64(8), seen[len(seen)-1])

	clone := fwd.Clone()
	assert.Equal(t, fwd.Xay(), clone.Xay())

	bwd := NewBackwardIterator(b)
	d, _, ok := bwd.Prev()
	require.True(t, ok)
	assert.Equal(t, int64(8), d.Xay)
}
