package tga

import (
	"encoding/binary"
	"io"

	"github.com/rotisserie/eris"
)

// Encode writes img as an uncompressed truecolor file. The pixel buffer is
// written verbatim, so it must already be in BGR(A) order.
func Encode(w io.Writer, img *Image) error {
	if img.BitsPerPixel != 24 && img.BitsPerPixel != 32 {
		return eris.Wrapf(ErrUnsupportedDepth, "%d bpp", img.BitsPerPixel)
	}
	if img.Width <= 0 || img.Height <= 0 || img.Width > 0xffff || img.Height > 0xffff {
		return eris.Wrapf(ErrInvalidDimensions, "%dx%d", img.Width, img.Height)
	}
	if want := img.Width * img.Height * img.BytesPerPixel(); len(img.Pixels) != want {
		return eris.Wrapf(ErrShortRead, "pixel buffer has %d bytes, want %d", len(img.Pixels), want)
	}

	var hdr [HeaderSize]byte
	copy(hdr[:], signature[:])
	binary.LittleEndian.PutUint16(hdr[12:], uint16(img.Width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(img.Height))
	hdr[16] = byte(img.BitsPerPixel)
	hdr[17] = img.Descriptor

	if _, err := w.Write(hdr[:]); err != nil {
		return eris.Wrap(err, "write image header")
	}
	if _, err := w.Write(img.Pixels); err != nil {
		return eris.Wrap(err, "write pixels")
	}
	return nil
}
