// Package imgrec contains an image recorder used to automatically save frames to disk.
package imgrec

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/generichttp"
)

// Ext is the extension given to recorded files
const Ext = ".fits"

// Recorder records frame sequences with incrementing filenames in
// yyyy-mm-dd subfolders.  Every call to Write between two calls to Incr
// appends to the same file.
type Recorder struct {
	mu sync.Mutex

	// counter is the internally incrementing counter
	counter int

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// Enabled is a flag unused by this struct that allows consumers to disable its use in their code
	Enabled bool

	// now is swapped out in tests
	now func() time.Time
}

// Active returns true if the recorder is enabled and has somewhere to write
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Enabled && r.Root != ""
}

// dayFolder returns the yyyy-mm-dd folder for today under Root
func (r *Recorder) dayFolder() string {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return filepath.Join(r.Root, now().Format("2006-01-02"))
}

// Filename returns the path the next Write will go to
func (r *Recorder) Filename() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filename()
}

func (r *Recorder) filename() string {
	return filepath.Join(r.dayFolder(), fmt.Sprintf("%s%06d%s", r.Prefix, r.counter, Ext))
}

// Write implements io.Writer and appends p to the current file
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := os.MkdirAll(r.dayFolder(), 0777)
	if err != nil {
		return 0, err
	}
	fid, err := os.OpenFile(r.filename(), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0666)
	if err != nil {
		return 0, err
	}
	defer fid.Close()
	return fid.Write(p)
}

// Incr moves the counter past the highest numbered file with this prefix in
// today's folder.  If the folder cannot be read, the counter is unchanged.
func (r *Recorder) Incr() {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := os.ReadDir(r.dayFolder())
	if err != nil {
		return
	}
	count := -1
	for _, e := range entries {
		fn := e.Name()
		if e.IsDir() || !strings.HasSuffix(fn, Ext) || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fn, r.Prefix), Ext))
		if err != nil {
			// some other sequence that shares our prefix
			continue
		}
		if n > count {
			count = n
		}
	}
	r.counter = count + 1
}

// HTTPWrapper is an HTTP wrapper around an image recorder that allows the folder and prefix to be changed on the fly
//
// it does not implement generichttp.HTTPer, offering an Inject method allowing it to be injected
// into another HTTPer
type HTTPWrapper struct {
	*Recorder
}

// NewHTTPWrapper returns an HTTP wrapper around a recorder
func NewHTTPWrapper(r *Recorder) HTTPWrapper {
	return HTTPWrapper{r}
}

func (h HTTPWrapper) setRoot(s string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Root = s
	err := os.MkdirAll(h.dayFolder(), 0777)
	return errors.Wrap(err, "creating autowrite folder")
}

func (h HTTPWrapper) getRoot() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Root, nil
}

func (h HTTPWrapper) setPrefix(s string) error {
	if strings.ContainsAny(s, `/\`) {
		return errors.Errorf("prefix %q contains a path separator", s)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Prefix = s
	h.counter = 0
	return nil
}

func (h HTTPWrapper) getPrefix() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Prefix, nil
}

func (h HTTPWrapper) setEnabled(b bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Enabled = b
	return nil
}

func (h HTTPWrapper) getEnabled() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Enabled, nil
}

// Inject adds GET and POST routes for /autowrite/root, /autowrite/prefix,
// and /autowrite/enabled to the HTTPer which manipulate this wrapper's recorder
func (h HTTPWrapper) Inject(other generichttp.HTTPer) {
	rt := other.RT()
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/root"}] = generichttp.SetString(h.setRoot)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/root"}] = generichttp.GetString(h.getRoot)
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/prefix"}] = generichttp.SetString(h.setPrefix)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/prefix"}] = generichttp.GetString(h.getPrefix)
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/enabled"}] = generichttp.SetBool(h.setEnabled)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/enabled"}] = generichttp.GetBool(h.getEnabled)
}
