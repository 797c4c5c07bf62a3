package frame

import "github.com/pkg/errors"

var (
	// ErrInvalidDimension is returned when a width, height, or scale factor is zero
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrUnsupportedFormat is returned for pixel formats that are not 8 bits per
	// component or are not in the format table
	ErrUnsupportedFormat = errors.New("unsupported pixel format")

	// ErrBufferSizeMismatch is returned when a buffer's length disagrees with the
	// shape declared by its width, height, format, and padding
	ErrBufferSizeMismatch = errors.New("buffer size does not match declared shape")

	// ErrPlaneIndex is returned when a plane that does not exist is requested
	ErrPlaneIndex = errors.New("plane index out of range")

	// ErrCropBounds is returned when a crop rectangle is empty or leaves the image
	ErrCropBounds = errors.New("crop rectangle out of bounds")
)
