// Package colorconv converts 8-bit frames to three-plane RGB.
//
// It is the color converter the rescaler hands color frames to.  Packed RGB
// and BGR are deinterleaved, planar RGB is copied, mono is replicated into all
// three planes, and Bayer mosaics are demosaiced bilinearly.
package colorconv

import (
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// Converter converts frames to RGB8Planar.  The zero value is ready to use.
type Converter struct{}

// ConvertToRGB8Planar returns a new RGB8Planar frame with the content of src
func (Converter) ConvertToRGB8Planar(src *frame.Image) (*frame.Image, error) {
	return ToRGB8Planar(src)
}

// ToRGB8Planar returns a new RGB8Planar frame with the content of src
func ToRGB8Planar(src *frame.Image) (*frame.Image, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	switch {
	case src.Format == pixfmt.RGB8Planar:
		return src.Compact()
	case src.Format == pixfmt.RGB8Packed:
		return deinterleave(src, 0, 2)
	case src.Format == pixfmt.BGR8Packed:
		return deinterleave(src, 2, 0)
	case pixfmt.IsBayer(src.Format):
		return Demosaic(src)
	case pixfmt.BytesPerPixel(src.Format) == 1 && pixfmt.Planes(src.Format) == 1:
		return replicate(src)
	}
	return nil, errors.Wrapf(frame.ErrUnsupportedFormat, "no RGB8Planar conversion from %v", src.Format)
}

// deinterleave splits a packed 3-byte format into planes.  ri and bi are the
// byte offsets of red and blue within a pixel.
func deinterleave(src *frame.Image, ri, bi int) (*frame.Image, error) {
	dst, err := frame.New(pixfmt.RGB8Planar, src.Width, src.Height, 0)
	if err != nil {
		return nil, err
	}
	w, h := int(src.Width), int(src.Height)
	plane := w * h
	stride := src.Stride()
	for y := 0; y < h; y++ {
		row := src.Buf[y*stride:]
		for x := 0; x < w; x++ {
			i := y*w + x
			dst.Buf[i] = row[3*x+ri]
			dst.Buf[plane+i] = row[3*x+1]
			dst.Buf[2*plane+i] = row[3*x+bi]
		}
	}
	return dst, nil
}

func replicate(src *frame.Image) (*frame.Image, error) {
	c, err := src.Compact()
	if err != nil {
		return nil, err
	}
	dst, err := frame.New(pixfmt.RGB8Planar, src.Width, src.Height, 0)
	if err != nil {
		return nil, err
	}
	n := len(c.Buf)
	for p := 0; p < 3; p++ {
		copy(dst.Buf[p*n:(p+1)*n], c.Buf)
	}
	return dst, nil
}
