package rotrescale

import (
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// DecimateIndex is the source index sampled for destination pixel (x, y) when
// a frame srcWidth wide is decimated by factor
func DecimateIndex(x, y, srcWidth, factor int) int {
	return x*factor + srcWidth*y*factor
}

// decimate fills dst, dstW x dstH, from every factor-th sample of src
func decimate(dst, src []byte, srcW, dstW, dstH, factor int) {
	i := 0
	for y := 0; y < dstH; y++ {
		row := src[srcW*y*factor:]
		for x := 0; x < dstW; x++ {
			dst[i] = row[x*factor]
			i++
		}
	}
}

// Rescale returns a frame (W/factor) x (H/factor) of the normalized input where
// each pixel is the source pixel at (x*factor, y*factor).  A factor larger
// than either dimension yields an empty frame.
//
// Color frames are converted to RGB8Planar first and the result is always
// RGB8Planar.  Other frames keep their format.
func (t Transformer) Rescale(img *frame.Image, factor uint32) (*frame.Image, error) {
	if factor == 0 {
		return nil, errors.Wrap(frame.ErrInvalidDimension, "rescale factor 0")
	}
	src, err := Normalize(img)
	if err != nil {
		return nil, err
	}
	f := int(factor)
	dw, dh := src.Width/factor, src.Height/factor

	if pixfmt.IsColor(src.Format) {
		planar, err := t.converter().ConvertToRGB8Planar(src)
		if err != nil {
			return nil, errors.WithMessage(err, "color conversion before rescale")
		}
		if planar.Format != pixfmt.RGB8Planar || planar.Width != src.Width || planar.Height != src.Height || planar.PaddingX != 0 {
			return nil, errors.Wrapf(frame.ErrUnsupportedFormat, "converter returned %dx%d %v", planar.Width, planar.Height, planar.Format)
		}
		if err = planar.Validate(); err != nil {
			return nil, err
		}
		dst, err := frame.New(pixfmt.RGB8Planar, dw, dh, 0)
		if err != nil {
			return nil, err
		}
		for p := 0; p < 3; p++ {
			sp, _ := planar.Plane(p)
			dp, _ := dst.Plane(p)
			decimate(dp.Pix, sp.Pix, int(src.Width), int(dw), int(dh), f)
		}
		return dst, nil
	}

	if !isRaw(src.Format) {
		return nil, errors.Wrapf(frame.ErrUnsupportedFormat, "no rescale path for %v", src.Format)
	}
	dst, err := frame.New(src.Format, dw, dh, 0)
	if err != nil {
		return nil, err
	}
	decimate(dst.Buf, src.Buf, int(src.Width), int(dw), int(dh), f)
	return dst, nil
}
