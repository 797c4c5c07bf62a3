// this file contains the encoders and request parsing shared by the frame routes
package camera

import (
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.jpl.nasa.gov/bdube/framexform/colorconv"
	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
	"github.jpl.nasa.gov/bdube/framexform/rawframe"
	"github.jpl.nasa.gov/bdube/framexform/rotrescale"
)

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"tiff": "image/tiff",
	"bmp":  "image/bmp",
	"fits": "image/fits",
	"raw":  "application/octet-stream",
}

// errBadQuery marks request parameters that could not be parsed
var errBadQuery = errors.New("bad query parameter")

// statusFor maps an error to the HTTP status it should be reported with.
// Input validation failures are the client's fault, everything else is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, frame.ErrInvalidDimension),
		errors.Is(err, frame.ErrUnsupportedFormat),
		errors.Is(err, frame.ErrBufferSizeMismatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// normalizeFormat lowercases a fmt query parameter and defaults it to jpg
func normalizeFormat(s string) (string, error) {
	s = strings.ToLower(s)
	switch s {
	case "":
		return "jpg", nil
	case "jpeg":
		return "jpg", nil
	case "tif":
		return "tiff", nil
	}
	if _, ok := contentTypes[s]; !ok {
		return "", errors.Wrapf(errBadQuery, "unknown image format %q", s)
	}
	return s, nil
}

// pipelineFromQuery overrides fields of p with the rotate and rescale query
// parameters, if present
func pipelineFromQuery(p rotrescale.Pipeline, q url.Values) (rotrescale.Pipeline, error) {
	if s := q.Get("rotate"); s != "" {
		o, err := rotrescale.ParseOrientation(s)
		if err != nil {
			return p, errors.Wrap(errBadQuery, err.Error())
		}
		p.Rotate = o
	}
	if s := q.Get("rescale"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return p, errors.Wrapf(errBadQuery, "rescale %q", s)
		}
		if n == 0 {
			return p, errors.Wrap(frame.ErrInvalidDimension, "rescale factor 0")
		}
		p.Rescale = uint32(n)
	}
	return p, nil
}

// encodeImage writes img to w in one of the raster formats jpg, png, tiff, or
// bmp.  Bayer frames are demosaiced first when debayer is true, otherwise
// the mosaic is encoded as gray.
func encodeImage(w io.Writer, img *frame.Image, format string, debayer bool) error {
	if debayer && pixfmt.IsBayer(img.Format) {
		var err error
		img, err = colorconv.Demosaic(img)
		if err != nil {
			return err
		}
	}
	im, err := img.ToImage()
	if err != nil {
		return err
	}
	switch format {
	case "jpg":
		return jpeg.Encode(w, im, &jpeg.Options{Quality: 90})
	case "png":
		return png.Encode(w, im)
	case "tiff":
		return tiff.Encode(w, im, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case "bmp":
		return bmp.Encode(w, im)
	}
	return errors.Wrapf(errBadQuery, "%s is not a raster format", format)
}

// Encode writes img to w as a jpg, png, tiff, or bmp.  format is matched the
// same way as the fmt query parameter of GET /image.
func Encode(w io.Writer, img *frame.Image, format string, debayer bool) error {
	format, err := normalizeFormat(format)
	if err != nil {
		return err
	}
	return encodeImage(w, img, format, debayer)
}

// writeFrame streams img to w in the requested format, setting headers first
func writeFrame(w http.ResponseWriter, img *frame.Image, format string, q url.Values, cards []Card) error {
	hdr := w.Header()
	hdr.Set("Content-Type", contentTypes[format])
	hdr.Set("X-Pixel-Format", img.Format.String())
	hdr.Set("X-Width", strconv.Itoa(int(img.Width)))
	hdr.Set("X-Height", strconv.Itoa(int(img.Height)))
	switch format {
	case "fits":
		hdr.Set("Content-Disposition", "attachment; filename=image.fits")
		return WriteFits(w, cards, []*frame.Image{img})
	case "raw":
		hdr.Set("Content-Disposition", "attachment; filename=image.glrf")
		return rawframe.Write(w, img, q.Get("zstd") == "true")
	}
	return encodeImage(w, img, format, q.Get("debayer") == "true")
}
