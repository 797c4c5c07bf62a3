package rotrescale

import (
	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// SrcIndex is the linear index of (x, y) in a row-major frame w pixels wide
func SrcIndex(x, y, w int) int {
	return y*w + x
}

// CW90Index is the destination index of source pixel (x, y) of a w x h frame
// rotated 90 degrees clockwise.  Source row y becomes destination column
// h-1-y and source column x becomes destination row x.
func CW90Index(x, y, w, h int) int {
	return x*h + (h - 1 - y)
}

// CCW270Index is the destination index of source pixel (x, y) of a w x h frame
// rotated 90 degrees counter-clockwise.  It is the inverse of CW90Index.
func CCW270Index(x, y, w, h int) int {
	return (w*h - h) - x*h + y
}

func rotate(img *frame.Image, cw bool) (*frame.Image, error) {
	src, err := Normalize(img)
	if err != nil {
		return nil, err
	}
	dst, err := frame.New(src.Format, src.Height, src.Width, 0)
	if err != nil {
		return nil, err
	}
	w, h := int(src.Width), int(src.Height)
	bpp := pixfmt.BytesPerPixel(src.Format)
	for p := 0; p < pixfmt.Planes(src.Format); p++ {
		sp, _ := src.Plane(p)
		dp, _ := dst.Plane(p)
		switch {
		case bpp > 1 && cw:
			permute(dp.Pix, sp.Pix, w, h, bpp, CW90Index)
		case bpp > 1:
			permute(dp.Pix, sp.Pix, w, h, bpp, CCW270Index)
		case cw:
			rotateCW90(dp.Pix, sp.Pix, w, h)
		default:
			rotateCCW270(dp.Pix, sp.Pix, w, h)
		}
	}

	next := pixfmt.RotatedCCW270(src.Format)
	if cw {
		next = pixfmt.RotatedCW90(src.Format)
	}
	if err = dst.ChangeFormat(next); err != nil {
		return nil, err
	}
	return dst, nil
}

func rotateCW90(dst, src []byte, w, h int) {
	for y, col := 0, h-1; y < h; y, col = y+1, col-1 {
		row := src[y*w : (y+1)*w]
		for x, v := range row {
			dst[x*h+col] = v
		}
	}
}

func rotateCCW270(dst, src []byte, w, h int) {
	last := w*h - h
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		for x, v := range row {
			dst[last-x*h+y] = v
		}
	}
}

// permute moves whole bpp-byte pixels to the destination index given by idx
func permute(dst, src []byte, w, h, bpp int, idx func(x, y, w, h int) int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := SrcIndex(x, y, w) * bpp
			d := idx(x, y, w, h) * bpp
			copy(dst[d:d+bpp], src[s:s+bpp])
		}
	}
}
