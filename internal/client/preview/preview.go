// Package preview issues local preview URLs for staged image files.
//
// A URL stays resolvable while at least one Handle for it is live. Handles
// are released explicitly and exactly once: a second Release reports
// ErrReleased instead of dropping somebody else's reference.
package preview

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const scheme = "blob:gophchat/"

var (
	ErrReleased   = errors.New("preview handle already released")
	ErrUnknownURL = errors.New("preview url not registered")
)

type entry struct {
	path string
	refs int
}

// Registry maps preview URLs to local file paths. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Handle is one owned reference to a preview URL.
type Handle struct {
	url      string
	reg      *Registry
	released atomic.Bool
}

// Create registers a new URL for path and returns the first handle to it.
func (r *Registry) Create(path string) *Handle {
	url := scheme + uuid.NewString()

	r.mu.Lock()
	r.entries[url] = &entry{path: path, refs: 1}
	r.mu.Unlock()

	return &Handle{url: url, reg: r}
}

// Resolve returns the local path behind url while it is live.
func (r *Registry) Resolve(url string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[url]
	if !ok {
		return "", false
	}
	return e.path, true
}

// Live reports how many URLs are currently registered.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) retain(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[url]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownURL, url)
	}
	e.refs++
	return nil
}

func (r *Registry) release(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[url]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.entries, url)
	}
}

// URL returns the preview URL; it stays the same after Release.
func (h *Handle) URL() string {
	return h.url
}

// Released reports whether Release has been called on this handle.
func (h *Handle) Released() bool {
	return h.released.Load()
}

// Retain returns an independent handle to the same URL. The original handle
// must still be live.
func (h *Handle) Retain() (*Handle, error) {
	if h.released.Load() {
		return nil, ErrReleased
	}
	if err := h.reg.retain(h.url); err != nil {
		return nil, err
	}
	return &Handle{url: h.url, reg: h.reg}, nil
}

// Release drops this handle's reference. The URL is revoked once every
// handle to it is released.
func (h *Handle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	h.reg.release(h.url)
	return nil
}
