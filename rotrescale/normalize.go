package rotrescale

import (
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
)

// Normalize returns a copy of img with even dimensions.  An odd width loses
// its last column and an odd height its last row; the crop is anchored at the
// top left.  An even frame comes back byte for byte identical, minus any row
// padding.
func Normalize(img *frame.Image) (*frame.Image, error) {
	if err := validate(img); err != nil {
		return nil, err
	}
	w := img.Width - img.Width%2
	h := img.Height - img.Height%2
	if w == 0 || h == 0 {
		return nil, errors.Wrapf(frame.ErrInvalidDimension, "%dx%d normalizes to %dx%d", img.Width, img.Height, w, h)
	}
	return img.Crop(0, 0, w, h)
}

// NormalizeInPlace replaces *img with its normalized copy.  On error img is
// left untouched.
func NormalizeInPlace(img *frame.Image) error {
	n, err := Normalize(img)
	if err != nil {
		return err
	}
	*img = *n
	return nil
}
