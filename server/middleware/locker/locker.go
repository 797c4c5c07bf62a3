// Package locker provides an HTTP middleware which allows an HTTPHandler to be locked, returning 423 (locked)
package locker

import (
	"net/http"
	"strings"
	"sync"

	"github.jpl.nasa.gov/bdube/framexform/generichttp"
)

// Inject adds a lock route to a generichttp.HTTPer which is used to manipulate the locker
func Inject(other generichttp.HTTPer, l *Locker) {
	rt := other.RT()
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/lock"}] = generichttp.GetBool(l.get)
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/lock"}] = generichttp.SetBool(l.set)
}

// Locker is a type which behaves like a sync.Mutex without the blocking.
// Only requests with a method in Protect are refused while locked, and
// never those whose path ends in one of DoNotProtect.
type Locker struct {
	mu       sync.Mutex
	isLocked bool

	// Protect is the set of methods which are refused while locked
	Protect []string

	// DoNotProtect is a list of path suffixes not to apply the lock to
	DoNotProtect []string
}

// New returns a new Locker that refuses POST requests other than to /lock
func New() *Locker {
	return &Locker{
		Protect:      []string{http.MethodPost},
		DoNotProtect: []string{"/lock"},
	}
}

// Lock the locker
func (l *Locker) Lock() {
	l.mu.Lock()
	l.isLocked = true
	l.mu.Unlock()
}

// Unlock the locker
func (l *Locker) Unlock() {
	l.mu.Lock()
	l.isLocked = false
	l.mu.Unlock()
}

// Locked returns true if the locker is locked
func (l *Locker) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isLocked
}

func (l *Locker) get() (bool, error) {
	return l.Locked(), nil
}

func (l *Locker) set(b bool) error {
	if b {
		l.Lock()
	} else {
		l.Unlock()
	}
	return nil
}

func (l *Locker) protects(r *http.Request) bool {
	method := false
	for _, m := range l.Protect {
		if r.Method == m {
			method = true
			break
		}
	}
	if !method {
		return false
	}
	for _, str := range l.DoNotProtect {
		if strings.HasSuffix(r.URL.Path, str) {
			return false
		}
	}
	return true
}

// Check is an HTTP middleware that returns http.StatusLocked if Locked() is true, otherwise passes down the line
func (l *Locker) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Locked() && l.protects(r) {
			http.Error(w, "locked", http.StatusLocked)
			return
		}
		next.ServeHTTP(w, r)
	})
}
