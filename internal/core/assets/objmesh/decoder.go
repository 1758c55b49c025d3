// Package objmesh decodes the line oriented Wavefront style mesh description
// (v, vt, vn and f records) into flat geometry buffers.
package objmesh

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/assets/geometry"
	"github.com/zeusync/scenekit/internal/core/observability/log"
)

var (
	ErrOpen          = errors.New("mesh source cannot be opened")
	ErrMalformedFace = errors.New("malformed face vertex key")
	ErrMalformedData = errors.New("malformed attribute record")
)

// File is a decoded mesh plus what the decoder had to drop.
type File struct {
	Buffers *geometry.Buffers
	// TruncatedFaces lists the lines of faces with more than four keys. Only
	// their leading quad was kept.
	TruncatedFaces []int
}

type Option func(*decoder)

// WithLogger reports truncated faces as warnings.
func WithLogger(l log.Log) Option {
	return func(d *decoder) { d.log = l }
}

// DecodeFile opens path and decodes it.
func DecodeFile(path string, opts ...Option) (*geometry.Buffers, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(errors.Join(ErrOpen, err), "open %s", path)
	}
	defer f.Close()

	opts = append([]Option{func(d *decoder) { d.source = path }}, opts...)
	file, err := Read(f, opts...)
	if err != nil {
		return nil, eris.Wrapf(err, "decode %s", path)
	}
	return file.Buffers, nil
}

// Decode reads a mesh description from r and returns its buffers.
func Decode(r io.Reader, opts ...Option) (*geometry.Buffers, error) {
	file, err := Read(r, opts...)
	if err != nil {
		return nil, err
	}
	return file.Buffers, nil
}

// Read reads a mesh description from r.
//
// Every distinct face key ("v/t/n" taken literally) becomes one output vertex
// row; repeated keys reuse the row. Quads are split as a fan from their first
// key, giving indices A B C A D C.
func Read(r io.Reader, opts ...Option) (*File, error) {
	d := decoder{
		out:  &geometry.Buffers{},
		seen: make(map[string]uint32),
		log:  log.NewNop(),
	}
	for _, opt := range opts {
		opt(&d)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		d.lineNo++
		if err := d.line(scanner.Text()); err != nil {
			return nil, eris.Wrapf(err, "line %d", d.lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read mesh source")
	}
	return &File{Buffers: d.out, TruncatedFaces: d.truncated}, nil
}

type decoder struct {
	positions [][3]float32
	texcoords [][2]float32
	normals   [][3]float32

	out  *geometry.Buffers
	seen map[string]uint32

	log       log.Log
	source    string
	lineNo    int
	truncated []int
}

func (d *decoder) line(text string) error {
	words := strings.Fields(text)
	if len(words) == 0 || strings.HasPrefix(words[0], "#") {
		return nil
	}

	switch words[0] {
	case "v":
		v, err := parseFloats(words[1:], 3)
		if err != nil {
			return err
		}
		d.positions = append(d.positions, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(words[1:], 2)
		if err != nil {
			return err
		}
		d.texcoords = append(d.texcoords, [2]float32{v[0], v[1]})
	case "vn":
		v, err := parseFloats(words[1:], 3)
		if err != nil {
			return err
		}
		d.normals = append(d.normals, [3]float32{v[0], v[1], v[2]})
	case "f":
		return d.face(words[1:])
	}
	return nil
}

func (d *decoder) face(keys []string) error {
	if len(keys) < 3 {
		return nil
	}
	if len(keys) > 4 {
		// n-gons are not triangulated; only the leading quad is kept
		d.log.Warn("face truncated to its leading quad",
			log.String("source", d.source),
			log.Int("line", d.lineNo),
			log.Int("keys", len(keys)),
		)
		d.truncated = append(d.truncated, d.lineNo)
		keys = keys[:4]
	}

	emitted := make([]uint32, len(keys))
	for i, key := range keys {
		idx, err := d.vertex(key)
		if err != nil {
			return err
		}
		emitted[i] = idx
	}

	d.out.Indices = append(d.out.Indices, emitted[0], emitted[1], emitted[2])
	if len(keys) == 4 {
		d.out.Indices = append(d.out.Indices, emitted[0], emitted[3], emitted[2])
	}
	return nil
}

// vertex returns the output index for key, emitting a new row the first time
// the key is seen.
func (d *decoder) vertex(key string) (uint32, error) {
	if idx, ok := d.seen[key]; ok {
		return idx, nil
	}

	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return 0, eris.Wrapf(ErrMalformedFace, "key %q needs v/t/n", key)
	}
	v, err := attributeIndex(parts[0], len(d.positions))
	if err != nil {
		return 0, eris.Wrapf(err, "key %q position", key)
	}
	t, err := attributeIndex(parts[1], len(d.texcoords))
	if err != nil {
		return 0, eris.Wrapf(err, "key %q texcoord", key)
	}
	n, err := attributeIndex(parts[2], len(d.normals))
	if err != nil {
		return 0, eris.Wrapf(err, "key %q normal", key)
	}

	d.out.Positions = append(d.out.Positions, d.positions[v][:]...)
	d.out.UVs = append(d.out.UVs, d.texcoords[t][:]...)
	d.out.Normals = append(d.out.Normals, d.normals[n][:]...)

	idx := uint32(len(d.seen))
	d.seen[key] = idx
	return idx, nil
}

// attributeIndex converts a 1-based reference into a 0-based index bounded by count.
func attributeIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformedFace
	}
	if i < 1 || i > count {
		return 0, eris.Wrapf(ErrMalformedFace, "index %d out of range 1..%d", i, count)
	}
	return i - 1, nil
}

func parseFloats(words []string, n int) ([]float32, error) {
	if len(words) < n {
		return nil, eris.Wrapf(ErrMalformedData, "want %d values, got %d", n, len(words))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(words[i], 32)
		if err != nil {
			return nil, eris.Wrapf(ErrMalformedData, "value %q", words[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
