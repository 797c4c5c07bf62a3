package frame

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// ToImage adapts the frame to the standard library image interface so it can
// be handed to the jpeg, png, tiff, and bmp encoders.
//
// Single channel formats (mono and raw bayer) share memory with the frame.
// Color formats are copied into an RGBA image.
func (im *Image) ToImage() (image.Image, error) {
	if err := im.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, int(im.Width), int(im.Height))
	w, h := int(im.Width), int(im.Height)
	switch im.Format {
	case pixfmt.RGB8Planar:
		out := image.NewRGBA(rect)
		r, _ := im.Plane(0)
		g, _ := im.Plane(1)
		b, _ := im.Plane(2)
		for y := 0; y < h; y++ {
			rr, gr, br := r.Row(y, w), g.Row(y, w), b.Row(y, w)
			o := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				o[4*x] = rr[x]
				o[4*x+1] = gr[x]
				o[4*x+2] = br[x]
				o[4*x+3] = 0xff
			}
		}
		return out, nil
	case pixfmt.RGB8Packed, pixfmt.BGR8Packed:
		ri, bi := 0, 2
		if im.Format == pixfmt.BGR8Packed {
			ri, bi = 2, 0
		}
		out := image.NewRGBA(rect)
		stride := im.Stride()
		for y := 0; y < h; y++ {
			row := im.Buf[y*stride:]
			o := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				o[4*x] = row[3*x+ri]
				o[4*x+1] = row[3*x+1]
				o[4*x+2] = row[3*x+bi]
				o[4*x+3] = 0xff
			}
		}
		return out, nil
	default:
		return &image.Gray{Pix: im.Buf, Stride: im.Stride(), Rect: rect}, nil
	}
}

// FromImage converts any image to a frame.  Gray images become Mono8,
// everything else RGB8Packed.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.Wrap(ErrInvalidDimension, "empty source image")
	}
	w, h := uint32(b.Dx()), uint32(b.Dy())
	if src.ColorModel() == color.GrayModel {
		g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(g, g.Bounds(), src, b.Min, draw.Src)
		return &Image{Width: w, Height: h, Format: pixfmt.Mono8, Buf: g.Pix}, nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	out, err := New(pixfmt.RGB8Packed, w, h, 0)
	if err != nil {
		return nil, err
	}
	n := int(w) * int(h)
	for i := 0; i < n; i++ {
		out.Buf[3*i] = rgba.Pix[4*i]
		out.Buf[3*i+1] = rgba.Pix[4*i+1]
		out.Buf[3*i+2] = rgba.Pix[4*i+2]
	}
	return out, nil
}
