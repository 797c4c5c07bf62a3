// Package camera provides a generic HTTP interface to an 8-bit camera whose
// frames pass through a rescale and rotate pipeline before being served
package camera

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.jpl.nasa.gov/bdube/framexform/camera"
	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/generichttp"
	"github.jpl.nasa.gov/bdube/framexform/imgrec"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
	"github.jpl.nasa.gov/bdube/framexform/rotrescale"
	"github.jpl.nasa.gov/bdube/framexform/util"
)

const (
	// headerVersion is written into every FITS file this package produces
	headerVersion = "3"

	// MaxBurstFrames bounds the size of a single burst request
	MaxBurstFrames = 1000
)

// MetadataMaker can produce an array of FITS cards
type MetadataMaker interface {
	// CollectHeaderMetadata produces an array of FITS cards
	CollectHeaderMetadata() []Card
}

// BurstRequest is the JSON body of a burst
type BurstRequest struct {
	// Frames is the number of frames to capture
	Frames int `json:"frames"`

	// FPS is the maximum frame rate
	FPS float64 `json:"fps"`
}

// HTTPCamera wraps a camera in an HTTP interface.  Frame access is
// serialized; the camera is never asked for two frames at once.
type HTTPCamera struct {
	// Camera is the underlying camera
	Camera camera.Camera

	// Transformer performs the rescale and rotation
	Transformer rotrescale.Transformer

	// Retries is the number of times a timed out frame grab is retried
	Retries uint64

	// RetryWait is the time between retries
	RetryWait time.Duration

	rec *imgrec.Recorder

	mu       sync.Mutex
	pipeline rotrescale.Pipeline

	RouteTable generichttp.RouteTable
}

// NewHTTPCamera returns a new HTTP wrapper around a camera.  If rec is not
// nil, the autowrite routes are added and FITS frames are also written to it
// when it is enabled.
func NewHTTPCamera(c camera.Camera, rec *imgrec.Recorder) *HTTPCamera {
	h := &HTTPCamera{
		Camera:      c,
		Transformer: rotrescale.Default,
		Retries:     3,
		RetryWait:   50 * time.Millisecond,
		rec:         rec,
		pipeline:    rotrescale.Pipeline{Rescale: 1},
	}
	rt := generichttp.RouteTable{
		{Method: http.MethodGet, Path: "/image"}:          h.GetFrame,
		{Method: http.MethodPost, Path: "/burst"}:         h.Burst,
		{Method: http.MethodGet, Path: "/exposure-time"}:  generichttp.GetFloat(h.exposureSeconds),
		{Method: http.MethodPost, Path: "/exposure-time"}: h.SetExposureTime,
		{Method: http.MethodGet, Path: "/pipeline"}:       h.GetPipeline,
		{Method: http.MethodPost, Path: "/pipeline"}:      h.SetPipeline,
		{Method: http.MethodGet, Path: "/pixel-formats"}:  h.GetPixelFormats,
	}
	if f, ok := c.(camera.Formatter); ok {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/format"}] = generichttp.GetString(func() (string, error) {
			pf, err := f.GetFormat()
			return pf.String(), err
		})
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/format"}] = generichttp.SetString(func(s string) error {
			pf, err := pixfmt.Parse(s)
			if err != nil {
				return err
			}
			h.mu.Lock()
			defer h.mu.Unlock()
			return f.SetFormat(pf)
		})
	}
	h.RouteTable = rt
	if rec != nil {
		imgrec.NewHTTPWrapper(rec).Inject(h)
	}
	return h
}

// RT satisfies generichttp.HTTPer
func (h *HTTPCamera) RT() generichttp.RouteTable {
	return h.RouteTable
}

// Pipeline returns the pipeline applied to every frame
func (h *HTTPCamera) Pipeline() rotrescale.Pipeline {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pipeline
}

// UsePipeline replaces the pipeline applied to every frame.  A rescale of 0
// is treated as 1.
func (h *HTTPCamera) UsePipeline(p rotrescale.Pipeline) {
	if p.Rescale == 0 {
		p.Rescale = 1
	}
	h.mu.Lock()
	h.pipeline = p
	h.mu.Unlock()
}

func (h *HTTPCamera) exposureSeconds() (float64, error) {
	d, err := h.Camera.GetExposureTime()
	return d.Seconds(), err
}

// grab takes one frame and runs it through p.  h.mu must be held.
func (h *HTTPCamera) grab(p rotrescale.Pipeline) (*frame.Image, error) {
	img, err := camera.GrabWithRetry(h.Camera, h.Retries, h.RetryWait)
	if err != nil {
		return nil, err
	}
	out, err := p.Apply(h.Transformer, img)
	if err != nil {
		return nil, err
	}
	if out.Width == 0 || out.Height == 0 {
		return nil, errors.Wrapf(frame.ErrInvalidDimension, "%dx%d frame rescaled by %d is empty", img.Width, img.Height, p.Rescale)
	}
	return out, nil
}

// collectHeaderMetadata gathers the FITS cards describing a frame from p
func (h *HTTPCamera) collectHeaderMetadata(p rotrescale.Pipeline) []Card {
	cards := []Card{
		{Name: "HDRVER", Value: headerVersion, Comment: "header version"},
		{Name: "DATE", Value: time.Now().UTC().Format(time.RFC3339), Comment: "image taken time"},
		{Name: "ROTATE", Value: p.Rotate.String(), Comment: "rotation applied after readout"},
		{Name: "RESCALE", Value: int(p.Rescale), Comment: "decimation factor"},
	}
	if d, err := h.Camera.GetExposureTime(); err == nil {
		cards = append(cards, Card{Name: "EXPTIME", Value: d.Seconds(), Comment: "exposure time, seconds"})
	}
	if m, ok := h.Camera.(MetadataMaker); ok {
		cards = append(cards, m.CollectHeaderMetadata()...)
	}
	return cards
}

// GetFrame takes a picture and returns it on a GET request.
//
// the image format may be specified with the fmt query parameter, one of
// jpg, png, tiff, bmp, fits, or raw; it defaults to jpg.
//
// the exposure time may be specified as a query parameter in any
// time-looking format, such as "25ms" or "10us".  If no unit is given,
// seconds are assumed.
//
// rotate (none, cw90, ccw270) and rescale (an integer) override the
// configured pipeline for this request only.
func (h *HTTPCamera) GetFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := normalizeFormat(q.Get("fmt"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := pipelineFromQuery(h.pipeline, q)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if texp := q.Get("exposureTime"); texp != "" {
		d, err := util.ParseExposure(texp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = h.Camera.SetExposureTime(d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	img, err := h.grab(p)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	var out io.Writer = w
	if format == "fits" && h.rec != nil && h.rec.Active() {
		out = io.MultiWriter(w, h.rec)
		defer h.rec.Incr()
	}
	err = writeFrame(responseWriter{w, out}, img, format, q, h.collectHeaderMetadata(p))
	if err != nil {
		// headers and likely some of the body are already gone; log it
		log.Printf("serving %s frame: %v\n", format, err)
	}
}

// responseWriter lets a frame be teed to a recorder while its headers are
// still set on the real response
type responseWriter struct {
	http.ResponseWriter
	w io.Writer
}

func (rw responseWriter) Write(b []byte) (int, error) {
	return rw.w.Write(b)
}

// Burst takes a burst of N frames at up to M fps and returns it as a fits
// image cube
func (h *HTTPCamera) Burst(w http.ResponseWriter, r *http.Request) {
	req := BurstRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Frames < 1 || req.Frames > MaxBurstFrames {
		http.Error(w, fmt.Sprintf("frames must be between 1 and %d, got %d", MaxBurstFrames, req.Frames), http.StatusBadRequest)
		return
	}
	if req.FPS <= 0 {
		http.Error(w, fmt.Sprintf("fps must be positive, got %g", req.FPS), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pipeline
	lim := rate.NewLimiter(rate.Limit(req.FPS), 1)
	frames := make([]*frame.Image, 0, req.Frames)
	for i := 0; i < req.Frames; i++ {
		err = lim.Wait(r.Context())
		if err != nil {
			http.Error(w, errors.Wrapf(err, "burst frame %d", i).Error(), http.StatusServiceUnavailable)
			return
		}
		img, err := h.grab(p)
		if err != nil {
			http.Error(w, errors.Wrapf(err, "burst frame %d", i).Error(), statusFor(err))
			return
		}
		frames = append(frames, img)
	}

	cards := h.collectHeaderMetadata(p)
	cards[0].Value = headerVersion + "+burst"
	cards = append(cards, Card{Name: "FPS", Value: req.FPS, Comment: "frame rate"})
	hdr := w.Header()
	hdr.Set("Content-Type", "image/fits")
	hdr.Set("Content-Disposition", "attachment; filename=burst.fits")
	err = WriteFits(w, cards, frames)
	if err != nil {
		log.Printf("serving burst: %v\n", err)
	}
}

// SetExposureTime sets the exposure time on a POST request.
// it can be provided either as a query parameter exposureTime, formatted in
// a way that is parseable by util.ParseExposure, or a json payload with key
// f64, holding the exposure time in seconds.
func (h *HTTPCamera) SetExposureTime(w http.ResponseWriter, r *http.Request) {
	texp := r.URL.Query().Get("exposureTime")
	if texp == "" {
		generichttp.SetFloat(func(secs float64) error {
			return h.setExposure(util.SecsToDuration(secs))
		})(w, r)
		return
	}
	d, err := util.ParseExposure(texp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.setExposure(d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPCamera) setExposure(d time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Camera.SetExposureTime(d)
}

// GetPipeline returns the pipeline as JSON
func (h *HTTPCamera) GetPipeline(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(h.Pipeline())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetPipeline replaces the pipeline from a JSON body such as
// {"rotate": "cw90", "rescale": 2}
func (h *HTTPCamera) SetPipeline(w http.ResponseWriter, r *http.Request) {
	p := rotrescale.Pipeline{}
	err := json.NewDecoder(r.Body).Decode(&p)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.UsePipeline(p)
	w.WriteHeader(http.StatusOK)
}

// GetPixelFormats lists the names of the supported pixel formats
func (h *HTTPCamera) GetPixelFormats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(pixfmt.Names())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
