// Package geometry holds the flat vertex/index buffers produced by the mesh
// decoders and consumed by the graphics collaborator.
package geometry

import (
	"errors"

	"github.com/rotisserie/eris"
)

const (
	PositionStride = 3
	UVStride       = 2
	NormalStride   = 3
)

var (
	ErrIndexCount   = errors.New("index count is not a multiple of 3")
	ErrIndexRange   = errors.New("index out of vertex range")
	ErrStrideLength = errors.New("attribute array length does not match its stride")
)

// Buffers is the decoder output shared by the text and binary mesh formats.
type Buffers struct {
	Positions []float32
	UVs       []float32
	Normals   []float32
	Indices   []uint32
}

// VertexCount is the number of whole vertex rows in Positions.
func (b *Buffers) VertexCount() int {
	return len(b.Positions) / PositionStride
}

// TriangleCount is the number of triangles described by Indices.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// Validate checks the buffer invariants: whole strides, a multiple of three
// indices, and every index referencing an existing vertex row.
func (b *Buffers) Validate() error {
	if len(b.Positions)%PositionStride != 0 ||
		len(b.UVs)%UVStride != 0 ||
		len(b.Normals)%NormalStride != 0 {
		return eris.Wrapf(ErrStrideLength, "%d positions, %d uvs, %d normals", len(b.Positions), len(b.UVs), len(b.Normals))
	}
	if len(b.Indices)%3 != 0 {
		return eris.Wrapf(ErrIndexCount, "%d indices", len(b.Indices))
	}
	vertices := uint32(b.VertexCount())
	for i, idx := range b.Indices {
		if idx >= vertices {
			return eris.Wrapf(ErrIndexRange, "indices[%d]=%d, vertices=%d", i, idx, vertices)
		}
	}
	return nil
}

// Bounds returns the axis aligned box enclosing all positions. ok is false for
// an empty buffer.
func (b *Buffers) Bounds() (lo, hi [3]float32, ok bool) {
	if len(b.Positions) < PositionStride {
		return lo, hi, false
	}
	copy(lo[:], b.Positions[:3])
	copy(hi[:], b.Positions[:3])
	for i := PositionStride; i+2 < len(b.Positions); i += PositionStride {
		for axis := 0; axis < 3; axis++ {
			v := b.Positions[i+axis]
			if v < lo[axis] {
				lo[axis] = v
			}
			if v > hi[axis] {
				hi[axis] = v
			}
		}
	}
	return lo, hi, true
}
