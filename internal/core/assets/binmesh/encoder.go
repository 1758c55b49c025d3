package binmesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/assets/geometry"
)

// Encode writes b as a container with header, vertex, index and end-of-file
// chunks. Missing normals or uvs are written as zeros.
func Encode(w io.Writer, b *geometry.Buffers) error {
	if err := b.Validate(); err != nil {
		return eris.Wrap(err, "encode mesh")
	}

	vertices := b.VertexCount()
	h := Header{
		BytesPerVertex: FloatsPerVertex * 4,
		BytesPerIndex:  4,
		NumVertices:    uint32(vertices),
		NumIndices:     uint32(len(b.Indices)),
	}
	copy(h.VertexType[:], "PosNUv")

	bw := bufio.NewWriter(w)

	var hdr bytes.Buffer
	if err := binary.Write(&hdr, binary.LittleEndian, h); err != nil {
		return eris.Wrap(err, "encode header")
	}
	if err := writeChunk(bw, MagicHeader, hdr.Bytes()); err != nil {
		return err
	}

	vtx := make([]byte, 0, vertices*FloatsPerVertex*4)
	put := func(f float32) {
		vtx = binary.LittleEndian.AppendUint32(vtx, math.Float32bits(f))
	}
	for v := 0; v < vertices; v++ {
		for i := 0; i < 3; i++ {
			put(b.Positions[v*3+i])
		}
		for i := 0; i < 3; i++ {
			put(attr(b.Normals, v*3+i))
		}
		for i := 0; i < 2; i++ {
			put(attr(b.UVs, v*2+i))
		}
	}
	if err := writeChunk(bw, MagicVertices, vtx); err != nil {
		return err
	}

	idx := make([]byte, 0, len(b.Indices)*4)
	for _, i := range b.Indices {
		idx = binary.LittleEndian.AppendUint32(idx, i)
	}
	if err := writeChunk(bw, MagicIndices, idx); err != nil {
		return err
	}
	if err := writeChunk(bw, MagicEndOfFile, nil); err != nil {
		return err
	}
	return bw.Flush()
}

func attr(values []float32, i int) float32 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

// WriteChunk writes one raw chunk. Exposed for tools that append custom chunks.
func WriteChunk(w io.Writer, magic uint32, payload []byte) error {
	return writeChunk(w, magic, payload)
}

func writeChunk(w io.Writer, magic uint32, payload []byte) error {
	var hdr [chunkHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], magic)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return eris.Wrapf(err, "write %s chunk header", chunkName(magic))
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return eris.Wrapf(err, "write %s chunk payload", chunkName(magic))
	}
	return nil
}
