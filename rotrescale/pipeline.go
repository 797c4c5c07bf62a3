package rotrescale

import (
	"fmt"
	"strings"

	"github.jpl.nasa.gov/bdube/framexform/frame"
)

// Orientation is a rotation applied by a Pipeline
type Orientation int

const (
	// None leaves the frame unrotated
	None Orientation = iota

	// CW90 rotates 90 degrees clockwise
	CW90

	// CCW270 rotates 90 degrees counter-clockwise
	CCW270
)

var orientationNames = map[Orientation]string{
	None:   "none",
	CW90:   "cw90",
	CCW270: "ccw270",
}

func (o Orientation) String() string {
	if s, ok := orientationNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// ParseOrientation parses "none", "cw90", or "ccw270".  The empty string is
// None and the aliases "90" and "270" are accepted.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return None, nil
	case "cw90", "90":
		return CW90, nil
	case "ccw270", "270":
		return CCW270, nil
	}
	return None, fmt.Errorf("unknown orientation %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Orientation) UnmarshalText(b []byte) error {
	p, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = p
	return nil
}

// Pipeline is a rescale followed by a rotation
type Pipeline struct {
	// Rotate is the rotation applied after rescaling
	Rotate Orientation `json:"rotate" yaml:"Rotate" koanf:"Rotate"`

	// Rescale is the decimation factor.  0 and 1 both mean no rescale.
	Rescale uint32 `json:"rescale" yaml:"Rescale" koanf:"Rescale"`
}

// Apply runs the pipeline on img.  The result is always normalized, even if
// the pipeline does nothing else.
func (p Pipeline) Apply(t Transformer, img *frame.Image) (*frame.Image, error) {
	var (
		out *frame.Image
		err error
	)
	if p.Rescale > 1 {
		out, err = t.Rescale(img, p.Rescale)
	} else {
		out, err = Normalize(img)
	}
	if err != nil {
		return nil, err
	}
	switch p.Rotate {
	case CW90:
		return RotateCW90(out)
	case CCW270:
		return RotateCCW270(out)
	}
	return out, nil
}
