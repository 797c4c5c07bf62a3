package generichttp

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
)

func TestSubMuxSanitize(t *testing.T) {
	cases := map[string]string{
		"":          "/",
		"/":         "/",
		"omc/cam":   "/omc/cam",
		"/omc/cam/": "/omc/cam",
		"/cam/*":    "/cam",
	}
	for in, want := range cases {
		if got := SubMuxSanitize(in); got != want {
			t.Errorf("SubMuxSanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRouteTableBindAndEndpoints(t *testing.T) {
	var stored string
	rt := RouteTable{
		MethodPath{http.MethodGet, "/name"}:  GetString(func() (string, error) { return "cam0", nil }),
		MethodPath{http.MethodPost, "/name"}: SetString(func(s string) error { stored = s; return nil }),
	}
	r := chi.NewRouter()
	rt.Bind(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/name", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"str":"cam0"}` {
		t.Errorf("GET /name: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/name", strings.NewReader(`{"str":"cam1"}`)))
	if rec.Code != http.StatusOK || stored != "cam1" {
		t.Errorf("POST /name: %d, stored %q", rec.Code, stored)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	want := `["GET /name","POST /name"]`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("endpoints = %s, want %s", rec.Body.String(), want)
	}
}

func TestSetBoolBadBody(t *testing.T) {
	h := SetBool(func(bool) error { return nil })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("nope")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestGetFloatError(t *testing.T) {
	h := GetFloat(func() (float64, error) { return 0, errors.New("boom") })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
