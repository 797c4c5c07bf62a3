package camera

import (
	"io"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// Card is a FITS header card
type Card = fitsio.Card

// WriteFits streams a fits file to w.  Frames are written as 8-bit data; a
// planar frame adds a third axis of length 3, and more than one frame adds a
// final axis of length len(imgs).  All frames must share shape and format.
func WriteFits(w io.Writer, metadata []Card, imgs []*frame.Image) error {
	if len(imgs) == 0 {
		return errors.New("no frames to write")
	}
	first := imgs[0]
	dims := []int{int(first.Width), int(first.Height)}
	if planes := pixfmt.Planes(first.Format); planes > 1 {
		dims = append(dims, planes)
	} else if bpp := pixfmt.BytesPerPixel(first.Format); bpp > 1 {
		// packed pixels are interleaved along the fastest axis
		dims[0] *= bpp
	}
	if len(imgs) > 1 {
		dims = append(dims, len(imgs))
	}

	size := 0
	compact := make([]*frame.Image, len(imgs))
	for i, img := range imgs {
		if img.Width != first.Width || img.Height != first.Height || img.Format != first.Format {
			return errors.Errorf("frame %d is %dx%d %v, frame 0 is %dx%d %v",
				i, img.Width, img.Height, img.Format, first.Width, first.Height, first.Format)
		}
		c, err := img.Compact()
		if err != nil {
			return err
		}
		compact[i] = c
		size += len(c.Buf)
	}

	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(8, dims)
	defer im.Close()
	metadata = append(metadata, Card{Name: "PIXFMT", Value: first.Format.String(), Comment: "pixel format"})
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, size)
	for _, c := range compact {
		buf = append(buf, c.Buf...)
	}
	err = im.Write(buf)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
