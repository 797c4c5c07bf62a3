package colorconv

import (
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// reflect maps an out of range coordinate back into [0,n) by mirroring about
// the edge pixel, which keeps the mosaic parity of the neighbor
func reflect(i, n int) int {
	if i < 0 {
		i = -i
	} else if i >= n {
		i = 2*(n-1) - i
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Demosaic interpolates a Bayer mosaic into an RGB8Planar frame.  Missing
// colors are the mean of the nearest same-color neighbors.
func Demosaic(src *frame.Image) (*frame.Image, error) {
	rx, ry, ok := pixfmt.RedSite(src.Format)
	if !ok {
		return nil, errors.Wrapf(frame.ErrUnsupportedFormat, "%v is not a bayer mosaic", src.Format)
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	dst, err := frame.New(pixfmt.RGB8Planar, src.Width, src.Height, 0)
	if err != nil {
		return nil, err
	}
	w, h := int(src.Width), int(src.Height)
	stride := src.Stride()
	px := func(x, y int) int {
		return int(src.Buf[reflect(y, h)*stride+reflect(x, w)])
	}
	cross := func(x, y int) int {
		return (px(x-1, y) + px(x+1, y) + px(x, y-1) + px(x, y+1) + 2) / 4
	}
	diag := func(x, y int) int {
		return (px(x-1, y-1) + px(x+1, y-1) + px(x-1, y+1) + px(x+1, y+1) + 2) / 4
	}
	horz := func(x, y int) int {
		return (px(x-1, y) + px(x+1, y) + 1) / 2
	}
	vert := func(x, y int) int {
		return (px(x, y-1) + px(x, y+1) + 1) / 2
	}

	plane := w * h
	for y := 0; y < h; y++ {
		redRow := y&1 == ry
		for x := 0; x < w; x++ {
			redCol := x&1 == rx
			var r, g, b int
			switch {
			case redRow && redCol:
				r, g, b = px(x, y), cross(x, y), diag(x, y)
			case !redRow && !redCol:
				r, g, b = diag(x, y), cross(x, y), px(x, y)
			case redRow:
				r, g, b = horz(x, y), px(x, y), vert(x, y)
			default:
				r, g, b = vert(x, y), px(x, y), horz(x, y)
			}
			i := y*w + x
			dst.Buf[i] = byte(r)
			dst.Buf[plane+i] = byte(g)
			dst.Buf[2*plane+i] = byte(b)
		}
	}
	return dst, nil
}
