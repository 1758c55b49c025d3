// Package binmesh reads and writes the chunked binary mesh container.
//
// A file is a sequence of chunks, each an 8 byte little-endian header
// {magic uint32, numBytes uint32} followed by numBytes of payload. Reading
// stops at the first EndOfFile chunk; unknown chunks are skipped.
package binmesh

import (
	"errors"
	"strings"
)

// Chunk magic ids. The asset pipeline depends on these values; never renumber.
const (
	MagicHeader    uint32 = 0x44444444
	MagicVertices  uint32 = 0x55554433
	MagicIndices   uint32 = 0x55556677
	MagicSubGroups uint32 = 0x55556688
	MagicEndOfFile uint32 = 0x55009900
)

const (
	chunkHeaderSize = 8
	// FloatsPerVertex is the interleaved layout: position(3) normal(3) uv(2).
	FloatsPerVertex = 8
	// DefaultMaxChunkSize bounds a single payload allocation.
	DefaultMaxChunkSize = 256 << 20
)

var (
	ErrOpen           = errors.New("mesh source cannot be opened")
	ErrShortRead      = errors.New("chunk shorter than declared")
	ErrMissingHeader  = errors.New("vertex chunk without a mesh header chunk")
	ErrMissingEOF     = errors.New("container ended without an end-of-file chunk")
	ErrBadHeader      = errors.New("invalid mesh header")
	ErrChunkTooLarge  = errors.New("chunk exceeds the size limit")
	ErrInvalidIndices = errors.New("index chunk references missing vertices")
)

// Header is the fixed record carried by the Header chunk. Only BytesPerVertex
// is required; shorter payloads leave the remaining fields zero.
type Header struct {
	BytesPerVertex uint32
	BytesPerIndex  uint32
	NumVertices    uint32
	NumIndices     uint32
	NumSubGroups   uint32
	PrimitiveType  uint32
	VertexType     [32]byte
}

const headerSize = 6*4 + 32

// VertexTypeName returns VertexType up to its first NUL.
func (h Header) VertexTypeName() string {
	s := string(h.VertexType[:])
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

func chunkName(magic uint32) string {
	switch magic {
	case MagicHeader:
		return "header"
	case MagicVertices:
		return "vertices"
	case MagicIndices:
		return "indices"
	case MagicSubGroups:
		return "subgroups"
	case MagicEndOfFile:
		return "eof"
	default:
		return "unknown"
	}
}
