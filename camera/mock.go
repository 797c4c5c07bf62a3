package camera

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// nominalExposure is the exposure at which the mock scene is rendered at full
// brightness
const nominalExposure = 10 * time.Millisecond

// Mock is a camera which renders a synthetic scene.  The scene is a diagonal
// ramp; its red, green, and blue components differ so that color handling
// errors are visible.  Brightness scales with exposure time and saturates.
type Mock struct {
	mu sync.Mutex

	width, height uint32
	format        pixfmt.Format
	exposure      time.Duration
	frames        int

	// FailEvery makes every n-th call to GetFrame return ErrTimeout.  Zero disables.
	FailEvery int
}

// NewMock returns a mock camera producing width x height frames of format f
func NewMock(width, height uint32, f pixfmt.Format) (*Mock, error) {
	if !pixfmt.Supported(f) {
		return nil, errors.Wrapf(frame.ErrUnsupportedFormat, "format %v", f)
	}
	if width == 0 || height == 0 {
		return nil, errors.Wrapf(frame.ErrInvalidDimension, "%dx%d sensor", width, height)
	}
	return &Mock{width: width, height: height, format: f, exposure: nominalExposure}, nil
}

// GetRes returns the sensor width and height
func (m *Mock) GetRes() (uint32, uint32) {
	return m.width, m.height
}

// SetExposureTime sets the exposure time
func (m *Mock) SetExposureTime(d time.Duration) error {
	if d <= 0 {
		return errors.Errorf("exposure time must be positive, got %v", d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exposure = d
	return nil
}

// GetExposureTime gets the exposure time
func (m *Mock) GetExposureTime() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exposure, nil
}

// GetFormat gets the output pixel format
func (m *Mock) GetFormat() (pixfmt.Format, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.format, nil
}

// SetFormat sets the output pixel format
func (m *Mock) SetFormat(f pixfmt.Format) error {
	if !pixfmt.Supported(f) {
		return errors.Wrapf(frame.ErrUnsupportedFormat, "format %v", f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format = f
	return nil
}

// scene returns the r, g, b value of the synthetic scene at (x, y)
func (m *Mock) scene(x, y uint32, gain float64) (byte, byte, byte) {
	sat := func(v float64) byte {
		v *= gain
		if v > 255 {
			return 255
		}
		return byte(v)
	}
	fx := float64(x) / float64(m.width)
	fy := float64(y) / float64(m.height)
	return sat(255 * fx), sat(255 * (fx + fy) / 2), sat(255 * fy)
}

// GetFrame renders a frame of the synthetic scene
func (m *Mock) GetFrame() (*frame.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames++
	if m.FailEvery > 0 && m.frames%m.FailEvery == 0 {
		return nil, ErrTimeout
	}
	img, err := frame.New(m.format, m.width, m.height, 0)
	if err != nil {
		return nil, err
	}
	gain := float64(m.exposure) / float64(nominalExposure)
	w, h := m.width, m.height
	plane := int(w) * int(h)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			r, g, b := m.scene(x, y, gain)
			i := int(y)*int(w) + int(x)
			switch m.format {
			case pixfmt.RGB8Planar:
				img.Buf[i], img.Buf[plane+i], img.Buf[2*plane+i] = r, g, b
			case pixfmt.RGB8Packed:
				img.Buf[3*i], img.Buf[3*i+1], img.Buf[3*i+2] = r, g, b
			case pixfmt.BGR8Packed:
				img.Buf[3*i], img.Buf[3*i+1], img.Buf[3*i+2] = b, g, r
			default:
				img.Buf[i] = mosaicSample(m.format, x, y, r, g, b)
			}
		}
	}
	return img, nil
}

// mosaicSample picks the component of (r, g, b) a Bayer sensor of format f
// records at (x, y).  Non-Bayer single channel formats record luminance.
func mosaicSample(f pixfmt.Format, x, y uint32, r, g, b byte) byte {
	rx, ry, ok := pixfmt.RedSite(f)
	if !ok {
		return byte((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
	}
	redRow, redCol := int(y&1) == ry, int(x&1) == rx
	switch {
	case redRow && redCol:
		return r
	case !redRow && !redCol:
		return b
	}
	return g
}
