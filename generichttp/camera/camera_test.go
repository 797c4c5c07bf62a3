package camera_test

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.jpl.nasa.gov/bdube/framexform/camera"
	httpcam "github.jpl.nasa.gov/bdube/framexform/generichttp/camera"
	"github.jpl.nasa.gov/bdube/framexform/imgrec"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
	"github.jpl.nasa.gov/bdube/framexform/rawframe"
)

func newServer(t *testing.T, f pixfmt.Format, rec *imgrec.Recorder) (*httpcam.HTTPCamera, http.Handler) {
	t.Helper()
	m, err := camera.NewMock(16, 8, f)
	require.NoError(t, err)
	h := httpcam.NewHTTPCamera(m, rec)
	mux := chi.NewRouter()
	h.RT().Bind(mux)
	return h, mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestGetFrameRaw(t *testing.T) {
	_, mux := newServer(t, pixfmt.BayerBG8, nil)
	resp := do(mux, http.MethodGet, "/image?fmt=raw&rotate=cw90", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "BayerGB8", resp.Header().Get("X-Pixel-Format"))

	img, err := rawframe.Read(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), img.Width)
	assert.Equal(t, uint32(16), img.Height)
	assert.Equal(t, pixfmt.BayerGB8, img.Format)
}

func TestPipelineRoutes(t *testing.T) {
	h, mux := newServer(t, pixfmt.Mono8, nil)
	resp := do(mux, http.MethodPost, "/pipeline", `{"rotate":"ccw270","rescale":2}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"rotate":"ccw270","rescale":2}`, do(mux, http.MethodGet, "/pipeline", "").Body.String())
	assert.Equal(t, uint32(2), h.Pipeline().Rescale)

	resp = do(mux, http.MethodGet, "/image?fmt=png", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	im, err := png.Decode(resp.Body)
	require.NoError(t, err)
	// 16x8 decimated by 2 is 8x4, rotated is 4x8
	assert.Equal(t, 4, im.Bounds().Dx())
	assert.Equal(t, 8, im.Bounds().Dy())

	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/pipeline", `{"rotate":"sideways"}`).Code)
}

func TestGetFrameBadQuery(t *testing.T) {
	_, mux := newServer(t, pixfmt.Mono8, nil)
	for _, path := range []string{
		"/image?fmt=gif",
		"/image?rescale=0",
		"/image?rescale=two",
		"/image?rotate=45",
		"/image?exposureTime=soon",
		"/image?rescale=32", // 16x8 / 32 has no pixels left
	} {
		assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodGet, path, "").Code, path)
	}
}

func TestGetFrameEncoders(t *testing.T) {
	_, mux := newServer(t, pixfmt.BayerRG8, nil)
	types := map[string]string{
		"jpg":  "image/jpeg",
		"png":  "image/png",
		"tiff": "image/tiff",
		"bmp":  "image/bmp",
	}
	for f, ct := range types {
		resp := do(mux, http.MethodGet, "/image?debayer=true&fmt="+f, "")
		assert.Equal(t, http.StatusOK, resp.Code, f)
		assert.Equal(t, ct, resp.Header().Get("Content-Type"), f)
		assert.NotZero(t, resp.Body.Len(), f)
	}
}

func TestGetFrameFits(t *testing.T) {
	_, mux := newServer(t, pixfmt.RGB8Planar, nil)
	resp := do(mux, http.MethodGet, "/image?fmt=fits&exposureTime=0.005", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	f, err := fitsio.Open(bytes.NewReader(resp.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	hdr := f.HDU(0).Header()
	assert.Equal(t, 8, hdr.Bitpix())
	assert.Equal(t, []int{16, 8, 3}, hdr.Axes())
	assert.Equal(t, "RGB8Planar", hdr.Get("PIXFMT").Value)
	assert.InDelta(t, 0.005, hdr.Get("EXPTIME").Value, 1e-9)
}

func TestBurst(t *testing.T) {
	_, mux := newServer(t, pixfmt.Mono8, nil)
	resp := do(mux, http.MethodPost, "/burst", `{"frames":3,"fps":1000}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	f, err := fitsio.Open(bytes.NewReader(resp.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []int{16, 8, 3}, f.HDU(0).Header().Axes())

	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/burst", `{"frames":0,"fps":10}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/burst", `{"frames":2,"fps":0}`).Code)
}

func TestExposureAndFormatRoutes(t *testing.T) {
	_, mux := newServer(t, pixfmt.Mono8, nil)
	require.Equal(t, http.StatusOK, do(mux, http.MethodPost, "/exposure-time", `{"f64":0.02}`).Code)
	assert.JSONEq(t, `{"f64":0.02}`, do(mux, http.MethodGet, "/exposure-time", "").Body.String())
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/exposure-time?exposureTime=-1ms", "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(mux, http.MethodPost, "/exposure-time", `{"f64":-0.5}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/exposure-time", `{"f64":`).Code)
	assert.JSONEq(t, `{"f64":0.02}`, do(mux, http.MethodGet, "/exposure-time", "").Body.String())

	require.Equal(t, http.StatusOK, do(mux, http.MethodPost, "/format", `{"str":"bayerGR8"}`).Code)
	assert.JSONEq(t, `{"str":"BayerGR8"}`, do(mux, http.MethodGet, "/format", "").Body.String())
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/format", `{"str":"YUV422"}`).Code)
}

func TestFitsAutowrite(t *testing.T) {
	root := t.TempDir()
	rec := &imgrec.Recorder{Root: root, Prefix: "mock", Enabled: true}
	_, mux := newServer(t, pixfmt.Mono8, rec)
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, do(mux, http.MethodGet, "/image?fmt=fits", "").Code)
	}
	matches, err := filepath.Glob(filepath.Join(root, "*", "mock*.fits"))
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		st, err := os.Stat(m)
		require.NoError(t, err)
		assert.NotZero(t, st.Size())
	}
	// jpgs are never recorded
	do(mux, http.MethodGet, "/image", "")
	matches, _ = filepath.Glob(filepath.Join(root, "*", "mock*.fits"))
	assert.Len(t, matches, 2)
}
