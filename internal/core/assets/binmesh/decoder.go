package binmesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"

	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/assets/geometry"
)

// File is everything read from a container.
type File struct {
	Header    Header
	HasHeader bool
	Buffers   *geometry.Buffers
	// Skipped lists the magic ids of ignored chunks, in file order.
	Skipped []uint32
}

type Option func(*options)

type options struct {
	maxChunkSize uint32
}

// WithMaxChunkSize overrides DefaultMaxChunkSize.
func WithMaxChunkSize(n uint32) Option {
	return func(o *options) { o.maxChunkSize = n }
}

// DecodeFile opens path and decodes its buffers.
func DecodeFile(path string, opts ...Option) (*geometry.Buffers, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(errors.Join(ErrOpen, err), "open %s", path)
	}
	defer f.Close()

	file, err := Read(f, opts...)
	if err != nil {
		return nil, eris.Wrapf(err, "decode %s", path)
	}
	return file.Buffers, nil
}

// Decode reads a container from r and returns its buffers.
func Decode(r io.Reader, opts ...Option) (*geometry.Buffers, error) {
	file, err := Read(r, opts...)
	if err != nil {
		return nil, err
	}
	return file.Buffers, nil
}

// Read walks the chunk stream until the EndOfFile chunk and de-interleaves the
// vertex chunk. A trailing partial vertex is dropped.
func Read(r io.Reader, opts ...Option) (*File, error) {
	o := options{maxChunkSize: DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(&o)
	}

	file := &File{Buffers: &geometry.Buffers{}}
	var (
		vertexBytes []byte
		indexBytes  []byte
		hdr         [chunkHeaderSize]byte
	)

	for {
		n, err := io.ReadFull(r, hdr[:])
		if err != nil {
			if n == 0 && errors.Is(err, io.EOF) {
				return nil, ErrMissingEOF
			}
			return nil, eris.Wrapf(ErrShortRead, "chunk header: got %d of %d bytes", n, chunkHeaderSize)
		}
		magic := binary.LittleEndian.Uint32(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		if magic == MagicEndOfFile {
			break
		}
		if size > o.maxChunkSize {
			return nil, eris.Wrapf(ErrChunkTooLarge, "%s chunk of %d bytes", chunkName(magic), size)
		}

		switch magic {
		case MagicHeader:
			payload, err := readPayload(r, magic, size)
			if err != nil {
				return nil, err
			}
			if file.Header, err = parseHeader(payload); err != nil {
				return nil, err
			}
			file.HasHeader = true
		case MagicVertices:
			if vertexBytes, err = readPayload(r, magic, size); err != nil {
				return nil, err
			}
		case MagicIndices:
			if indexBytes, err = readPayload(r, magic, size); err != nil {
				return nil, err
			}
		default:
			// subgroups are reserved; unknown chunks are skipped for forward compatibility
			if err := skipPayload(r, magic, size); err != nil {
				return nil, err
			}
			file.Skipped = append(file.Skipped, magic)
		}
	}

	if vertexBytes != nil {
		if !file.HasHeader {
			return nil, ErrMissingHeader
		}
		stride := int(file.Header.BytesPerVertex / 4)
		if stride < FloatsPerVertex {
			return nil, eris.Wrapf(ErrBadHeader, "bytes per vertex %d below %d", file.Header.BytesPerVertex, FloatsPerVertex*4)
		}
		deinterleave(file.Buffers, vertexBytes, stride)
	}

	if indexBytes != nil {
		indices, err := parseIndices(indexBytes, file.Header.BytesPerIndex)
		if err != nil {
			return nil, err
		}
		file.Buffers.Indices = indices
		if err := file.Buffers.Validate(); err != nil {
			return nil, eris.Wrap(errors.Join(ErrInvalidIndices, err), "validate buffers")
		}
	}

	return file, nil
}

func readPayload(r io.Reader, magic, size uint32) ([]byte, error) {
	payload := make([]byte, size)
	n, err := io.ReadFull(r, payload)
	if err != nil {
		return nil, eris.Wrapf(ErrShortRead, "%s chunk: got %d of %d bytes", chunkName(magic), n, size)
	}
	return payload, nil
}

func skipPayload(r io.Reader, magic, size uint32) error {
	n, err := io.CopyN(io.Discard, r, int64(size))
	if err != nil {
		return eris.Wrapf(ErrShortRead, "%s chunk %#08x: skipped %d of %d bytes", chunkName(magic), magic, n, size)
	}
	return nil
}

func parseHeader(payload []byte) (Header, error) {
	var h Header
	if len(payload) < 4 {
		return h, eris.Wrapf(ErrBadHeader, "header payload of %d bytes", len(payload))
	}
	padded := make([]byte, headerSize)
	copy(padded, payload)
	if err := binary.Read(bytes.NewReader(padded), binary.LittleEndian, &h); err != nil {
		return h, eris.Wrap(err, "parse header")
	}
	return h, nil
}

func deinterleave(out *geometry.Buffers, raw []byte, stride int) {
	floats := len(raw) / 4
	vertices := floats / stride
	out.Positions = make([]float32, 0, vertices*3)
	out.Normals = make([]float32, 0, vertices*3)
	out.UVs = make([]float32, 0, vertices*2)

	at := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	for v := 0; v < vertices; v++ {
		base := v * stride
		out.Positions = append(out.Positions, at(base), at(base+1), at(base+2))
		out.Normals = append(out.Normals, at(base+3), at(base+4), at(base+5))
		out.UVs = append(out.UVs, at(base+6), at(base+7))
	}
}

func parseIndices(raw []byte, bytesPerIndex uint32) ([]uint32, error) {
	width := int(bytesPerIndex)
	if width == 0 {
		width = 4
	}
	if (width == 2 || width == 4) && len(raw)%width != 0 {
		return nil, eris.Wrapf(ErrShortRead, "index chunk of %d bytes is not a multiple of %d", len(raw), width)
	}
	switch bytesPerIndex {
	case 2:
		out := make([]uint32, len(raw)/2)
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
		return out, nil
	case 0, 4:
		out := make([]uint32, len(raw)/4)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		return out, nil
	default:
		return nil, eris.Wrapf(ErrBadHeader, "bytes per index %d", bytesPerIndex)
	}
}
