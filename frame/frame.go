/*Package frame provides the 8-bit image container consumed by the transforms.

An Image is a contiguous, row-major byte buffer.  Planar formats store their
planes back to back, each Height rows tall.  Each row of each plane may be
followed by PaddingX bytes of padding; every image allocated by the transforms
has zero padding, but frames handed over by acquisition hardware may not.
*/
package frame

import (
	"bytes"

	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// Image is an 8-bit raster
type Image struct {
	// Width is the width in pixels
	Width uint32

	// Height is the height in pixels
	Height uint32

	// Format is the pixel format tag
	Format pixfmt.Format

	// PaddingX is the number of padding bytes at the end of each row
	PaddingX uint32

	// Buf holds the pixel data
	Buf []byte
}

// MaxBytes is the largest buffer, padding included, New will allocate
const MaxBytes = 1 << 30

// BufferLen returns the buffer length a frame of the given shape needs.  A
// shape whose length would exceed MaxBytes is an ErrInvalidDimension.
func BufferLen(f pixfmt.Format, width, height, paddingX uint32) (int, error) {
	if !pixfmt.Supported(f) {
		return 0, errors.Wrapf(ErrUnsupportedFormat, "format %v", f)
	}
	tooBig := func() error {
		return errors.Wrapf(ErrInvalidDimension, "%dx%d %v with padding %d is larger than %d bytes",
			width, height, f, paddingX, MaxBytes)
	}
	// stride fits in 35 bits; bounding it first keeps stride*height in 62
	stride := uint64(width)*uint64(pixfmt.BytesPerPixel(f)) + uint64(paddingX)
	if stride > MaxBytes {
		return 0, tooBig()
	}
	n := stride * uint64(height) * uint64(pixfmt.Planes(f))
	if n > MaxBytes {
		return 0, tooBig()
	}
	return int(n), nil
}

// New allocates a zeroed image.  Zero width or height is permitted and yields
// an empty buffer.
func New(f pixfmt.Format, width, height, paddingX uint32) (*Image, error) {
	n, err := BufferLen(f, width, height, paddingX)
	if err != nil {
		return nil, err
	}
	return &Image{Width: width, Height: height, Format: f, PaddingX: paddingX, Buf: make([]byte, n)}, nil
}

// FromBuffer wraps an existing buffer without copying it.  The shape is validated.
func FromBuffer(f pixfmt.Format, width, height, paddingX uint32, buf []byte) (*Image, error) {
	im := &Image{Width: width, Height: height, Format: f, PaddingX: paddingX, Buf: buf}
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// RowBytes is the number of meaningful bytes in one row of one plane
func (im *Image) RowBytes() int {
	return int(im.Width) * pixfmt.BytesPerPixel(im.Format)
}

// Stride is the distance in bytes between vertically adjacent pixels
func (im *Image) Stride() int {
	return im.RowBytes() + int(im.PaddingX)
}

// PlaneLen is the length in bytes of one plane, padding included
func (im *Image) PlaneLen() int {
	return im.Stride() * int(im.Height)
}

// Validate checks that the format is supported and the buffer length matches
// the declared shape.  It does not reject zero dimensions.
func (im *Image) Validate() error {
	if im == nil {
		return errors.Wrap(ErrBufferSizeMismatch, "nil image")
	}
	if !pixfmt.Supported(im.Format) {
		return errors.Wrapf(ErrUnsupportedFormat, "format %v", im.Format)
	}
	exp, err := BufferLen(im.Format, im.Width, im.Height, im.PaddingX)
	if err != nil {
		return err
	}
	if len(im.Buf) != exp {
		return errors.Wrapf(ErrBufferSizeMismatch, "%dx%d %v with padding %d needs %d bytes, have %d",
			im.Width, im.Height, im.Format, im.PaddingX, exp, len(im.Buf))
	}
	return nil
}

// Plane is a view of one plane of an image.  It shares memory with its parent.
type Plane struct {
	// Width and Height of the plane in pixels
	Width, Height uint32

	// Stride is the distance in bytes between rows
	Stride int

	// Pix is the plane's bytes, padding included
	Pix []byte
}

// Row returns the meaningful bytes of row y
func (p Plane) Row(y int, rowBytes int) []byte {
	off := y * p.Stride
	return p.Pix[off : off+rowBytes]
}

// Plane returns a view of plane i.  Single plane formats have only plane 0.
func (im *Image) Plane(i int) (Plane, error) {
	n := pixfmt.Planes(im.Format)
	if i < 0 || i >= n {
		return Plane{}, errors.Wrapf(ErrPlaneIndex, "plane %d of %v which has %d", i, im.Format, n)
	}
	l := im.PlaneLen()
	return Plane{
		Width:  im.Width,
		Height: im.Height,
		Stride: im.Stride(),
		Pix:    im.Buf[i*l : (i+1)*l : (i+1)*l],
	}, nil
}

// ChangeFormat reinterprets the buffer under a new format tag without touching
// any bytes.  The new format must have the same layout as the old one.
func (im *Image) ChangeFormat(f pixfmt.Format) error {
	if !pixfmt.Supported(f) {
		return errors.Wrapf(ErrUnsupportedFormat, "format %v", f)
	}
	if pixfmt.BytesPerPixel(f) != pixfmt.BytesPerPixel(im.Format) || pixfmt.Planes(f) != pixfmt.Planes(im.Format) {
		return errors.Wrapf(ErrUnsupportedFormat, "cannot reinterpret %v as %v", im.Format, f)
	}
	im.Format = f
	return nil
}

// Crop copies the half-open rectangle [x0,x1) x [y0,y1) into a new image with
// no padding.
func (im *Image) Crop(x0, y0, x1, y1 uint32) (*Image, error) {
	if err := im.Validate(); err != nil {
		return nil, err
	}
	if x1 <= x0 || y1 <= y0 || x1 > im.Width || y1 > im.Height {
		return nil, errors.Wrapf(ErrCropBounds, "[%d,%d)x[%d,%d) of %dx%d", x0, x1, y0, y1, im.Width, im.Height)
	}
	out, err := New(im.Format, x1-x0, y1-y0, 0)
	if err != nil {
		return nil, err
	}
	bpp := pixfmt.BytesPerPixel(im.Format)
	rowBytes := out.RowBytes()
	for p := 0; p < pixfmt.Planes(im.Format); p++ {
		src, _ := im.Plane(p)
		dst, _ := out.Plane(p)
		for y := 0; y < int(out.Height); y++ {
			off := (int(y0)+y)*src.Stride + int(x0)*bpp
			copy(dst.Row(y, rowBytes), src.Pix[off:off+rowBytes])
		}
	}
	return out, nil
}

// Compact returns a copy of the image with padding removed
func (im *Image) Compact() (*Image, error) {
	if err := im.Validate(); err != nil {
		return nil, err
	}
	if im.Width == 0 || im.Height == 0 {
		return New(im.Format, im.Width, im.Height, 0)
	}
	return im.Crop(0, 0, im.Width, im.Height)
}

// Clone returns a deep copy, padding preserved
func (im *Image) Clone() *Image {
	out := *im
	out.Buf = make([]byte, len(im.Buf))
	copy(out.Buf, im.Buf)
	return &out
}

// Equal returns true if both images have the same shape, format, and pixel
// data.  Padding bytes are not compared.
func (im *Image) Equal(o *Image) bool {
	if im == nil || o == nil {
		return false
	}
	if im.Width != o.Width || im.Height != o.Height || im.Format != o.Format {
		return false
	}
	if im.Validate() != nil || o.Validate() != nil {
		return false
	}
	rowBytes := im.RowBytes()
	for p := 0; p < pixfmt.Planes(im.Format); p++ {
		a, _ := im.Plane(p)
		b, _ := o.Plane(p)
		for y := 0; y < int(im.Height); y++ {
			if !bytes.Equal(a.Row(y, rowBytes), b.Row(y, rowBytes)) {
				return false
			}
		}
	}
	return true
}
