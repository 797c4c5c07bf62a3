/*Package camera describes a standard set of interfaces for 8-bit frame sources

Camera contains the basics needed to grab a frame; a Mock camera renders a
synthetic scene in any supported pixel format for bench testing of the
transforms without hardware attached.
*/
package camera

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// ErrTimeout is returned by a camera when a frame did not arrive in time.
// It is the only error GrabWithRetry retries.
var ErrTimeout = errors.New("timed out waiting for frame")

// Camera describes a minimal camera interface with only the basics.
type Camera interface {
	// GetFrame triggers capture of a frame and returns it
	GetFrame() (*frame.Image, error)

	// SetExposureTime sets the exposure time
	SetExposureTime(time.Duration) error

	// GetExposureTime gets the exposure time
	GetExposureTime() (time.Duration, error)
}

// Formatter is a camera whose output pixel format can be queried and changed
type Formatter interface {
	// GetFormat gets the pixel format of frames returned by GetFrame
	GetFormat() (pixfmt.Format, error)

	// SetFormat sets the pixel format of frames returned by GetFrame
	SetFormat(pixfmt.Format) error
}

// GrabWithRetry calls GetFrame until it succeeds, retrying up to retries
// times with a fixed wait between attempts when the camera times out.
// Any other error is returned immediately.
func GrabWithRetry(c Camera, retries uint64, wait time.Duration) (*frame.Image, error) {
	var img *frame.Image
	op := func() error {
		var err error
		img, err = c.GetFrame()
		if err != nil && !errors.Is(err, ErrTimeout) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(wait), retries)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return img, nil
}
