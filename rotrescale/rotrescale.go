/*Package rotrescale rotates frames by 90 degrees and downscales them by integer
factors, keeping the pixel format consistent with the transformed data.

Every operation normalizes its input first: a frame with an odd width or
height loses its last column or row so that both dimensions are even.  The
input is never modified; each operation returns a new frame with no padding.

Rescaling is nearest neighbor decimation.  Color frames are converted to
three planes and each plane is decimated on its own; mono and Bayer frames
are decimated as raw single channel data, so a decimated Bayer frame keeps
its tag even though its mosaic is no longer valid.

Rotation permutes pixels with a single pass over the source and remaps the
Bayer phase so the tag still names the color at the new origin.
*/
package rotrescale

import (
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/colorconv"
	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// Converter produces a three plane RGB copy of a color frame
type Converter interface {
	ConvertToRGB8Planar(*frame.Image) (*frame.Image, error)
}

// Transformer holds the collaborators the transforms need
type Transformer struct {
	// Converter is used by the color path of Rescale.  If nil,
	// colorconv.Converter is used.
	Converter Converter
}

// Default is the Transformer used by the package level functions
var Default = Transformer{Converter: colorconv.Converter{}}

func (t Transformer) converter() Converter {
	if t.Converter == nil {
		return colorconv.Converter{}
	}
	return t.Converter
}

// validate rejects frames the transforms cannot accept before anything reads
// their buffers
func validate(img *frame.Image) error {
	if img == nil {
		return errors.Wrap(frame.ErrInvalidDimension, "nil frame")
	}
	if img.Width == 0 || img.Height == 0 {
		return errors.Wrapf(frame.ErrInvalidDimension, "%dx%d frame", img.Width, img.Height)
	}
	return img.Validate()
}

// Rescale decimates img by factor using Default
func Rescale(img *frame.Image, factor uint32) (*frame.Image, error) {
	return Default.Rescale(img, factor)
}

// RotateCW90 rotates img 90 degrees clockwise
func RotateCW90(img *frame.Image) (*frame.Image, error) {
	return rotate(img, true)
}

// RotateCCW270 rotates img 90 degrees counter-clockwise
func RotateCCW270(img *frame.Image) (*frame.Image, error) {
	return rotate(img, false)
}

// isRaw is true for the single plane, one byte per pixel formats
func isRaw(f pixfmt.Format) bool {
	return pixfmt.Planes(f) == 1 && pixfmt.BytesPerPixel(f) == 1
}
