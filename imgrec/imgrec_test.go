package imgrec

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.jpl.nasa.gov/bdube/framexform/generichttp"
)

func fixedDay() time.Time {
	return time.Date(2021, 3, 4, 12, 0, 0, 0, time.UTC)
}

func TestRecorderSequence(t *testing.T) {
	root := t.TempDir()
	r := &Recorder{Root: root, Prefix: "cam", now: fixedDay}

	_, err := r.Write([]byte("ab"))
	require.NoError(t, err)
	_, err = r.Write([]byte("cd"))
	require.NoError(t, err)
	r.Incr()
	_, err = r.Write([]byte("ef"))
	require.NoError(t, err)

	day := filepath.Join(root, "2021-03-04")
	b, err := os.ReadFile(filepath.Join(day, "cam000000.fits"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(b))
	b, err = os.ReadFile(filepath.Join(day, "cam000001.fits"))
	require.NoError(t, err)
	assert.Equal(t, "ef", string(b))
}

func TestIncrSkipsForeignFiles(t *testing.T) {
	root := t.TempDir()
	day := filepath.Join(root, "2021-03-04")
	require.NoError(t, os.MkdirAll(day, 0777))
	for _, fn := range []string{"cam000004.fits", "cam_notes.fits", "cam000009.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(day, fn), nil, 0666))
	}
	r := &Recorder{Root: root, Prefix: "cam", now: fixedDay}
	r.Incr()
	assert.Equal(t, filepath.Join(day, "cam000005.fits"), r.Filename())
}

type table struct {
	rt generichttp.RouteTable
}

func (t table) RT() generichttp.RouteTable { return t.rt }

func TestInjectedRoutes(t *testing.T) {
	rec := &Recorder{now: fixedDay}
	tbl := table{generichttp.RouteTable{}}
	NewHTTPWrapper(rec).Inject(tbl)
	mux := chi.NewRouter()
	tbl.rt.Bind(mux)

	root := t.TempDir()
	do := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
		return w
	}
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/autowrite/root", `{"str":"`+filepath.ToSlash(root)+`"}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/autowrite/enabled", `{"bool":true}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/autowrite/prefix", `{"str":"a/b"}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/autowrite/prefix", `{"str":"psf"}`).Code)
	assert.JSONEq(t, `{"str":"psf"}`, do(http.MethodGet, "/autowrite/prefix", "").Body.String())
	assert.True(t, rec.Active())
	_, err := os.Stat(filepath.Join(root, "2021-03-04"))
	assert.NoError(t, err)
}
