package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() *Buffers {
	return &Buffers{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		UVs:       []float32{0, 0, 1, 0, 0, 1},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestValidate(t *testing.T) {
	b := triangle()
	require.NoError(t, b.Validate())
	assert.Equal(t, 3, b.VertexCount())
	assert.Equal(t, 1, b.TriangleCount())

	b.Indices = append(b.Indices, 0)
	assert.ErrorIs(t, b.Validate(), ErrIndexCount)

	b = triangle()
	b.Indices[2] = 3
	assert.ErrorIs(t, b.Validate(), ErrIndexRange)

	b = triangle()
	b.UVs = b.UVs[:5]
	assert.ErrorIs(t, b.Validate(), ErrStrideLength)
}

func TestBounds(t *testing.T) {
	b := triangle()
	b.Positions = append(b.Positions, -2, 5, 0.5)
	lo, hi, ok := b.Bounds()
	require.True(t, ok)
	assert.Equal(t, [3]float32{-2, 0, 0}, lo)
	assert.Equal(t, [3]float32{1, 5, 0.5}, hi)

	_, _, ok = (&Buffers{}).Bounds()
	assert.False(t, ok)
}
