// Package tga decodes the uncompressed truecolor subset of the Targa format.
//
// Pixels are returned in the file's native channel order, BGR for 24 bpp and
// BGRA for 32 bpp, with rows in file order (bottom-up for the usual origin).
// Consumers that need RGBA use Image.ToNRGBA.
package tga

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

const (
	signatureSize = 12
	infoSize      = 6
	// HeaderSize is the signature plus the width/height/depth record.
	HeaderSize = signatureSize + infoSize
)

// signature identifies an uncompressed truecolor image without a color map.
var signature = [signatureSize]byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0}

var (
	ErrOpen              = errors.New("image source cannot be opened")
	ErrUnsupportedFormat = errors.New("not an uncompressed truecolor image")
	ErrUnsupportedDepth  = errors.New("only 24 and 32 bits per pixel are supported")
	ErrInvalidDimensions = errors.New("image has no width or height")
	ErrShortRead         = errors.New("pixel data shorter than declared")
)

// Image is a decoded pixel buffer in native BGR(A) order.
type Image struct {
	Width        int
	Height       int
	BitsPerPixel int
	// Descriptor is the raw image descriptor byte (alpha bits and origin).
	Descriptor byte
	Pixels     []byte
}

// BytesPerPixel is 3 or 4.
func (img *Image) BytesPerPixel() int {
	return img.BitsPerPixel / 8
}

// TopLeftOrigin reports whether row 0 is the top of the picture.
func (img *Image) TopLeftOrigin() bool {
	return img.Descriptor&0x20 != 0
}

// DecodeFile opens path and decodes it.
func DecodeFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(errors.Join(ErrOpen, err), "open %s", path)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "decode %s", path)
	}
	return img, nil
}

// Decode validates the 18 byte header and reads exactly width*height*bpp/8
// bytes of pixel data. Any failure returns a nil image.
func Decode(r io.Reader) (*Image, error) {
	var sig [signatureSize]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil || !bytes.Equal(sig[:], signature[:]) {
		return nil, ErrUnsupportedFormat
	}

	var info [infoSize]byte
	if _, err := io.ReadFull(r, info[:]); err != nil {
		return nil, eris.Wrap(ErrUnsupportedFormat, "truncated image header")
	}

	img := &Image{
		Width:        int(binary.LittleEndian.Uint16(info[0:2])),
		Height:       int(binary.LittleEndian.Uint16(info[2:4])),
		BitsPerPixel: int(info[4]),
		Descriptor:   info[5],
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, eris.Wrapf(ErrInvalidDimensions, "%dx%d", img.Width, img.Height)
	}
	if img.BitsPerPixel != 24 && img.BitsPerPixel != 32 {
		return nil, eris.Wrapf(ErrUnsupportedDepth, "%d bpp", img.BitsPerPixel)
	}

	// the declared size is untrusted; the buffer grows only as data arrives
	size := img.Width * img.Height * img.BytesPerPixel()
	pixels, err := io.ReadAll(io.LimitReader(r, int64(size)))
	if err != nil {
		return nil, eris.Wrapf(ErrShortRead, "got %d of %d bytes: %v", len(pixels), size, err)
	}
	if len(pixels) != size {
		return nil, eris.Wrapf(ErrShortRead, "got %d of %d bytes", len(pixels), size)
	}
	img.Pixels = pixels
	return img, nil
}

// ToNRGBA converts to a standard top-down RGBA image. 24 bpp sources become
// fully opaque.
func (img *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	bpp := img.BytesPerPixel()
	for y := 0; y < img.Height; y++ {
		row := y
		if !img.TopLeftOrigin() {
			row = img.Height - 1 - y
		}
		for x := 0; x < img.Width; x++ {
			p := img.Pixels[(row*img.Width+x)*bpp:]
			c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
			if bpp == 4 {
				c.A = p[3]
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}
