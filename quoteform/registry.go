package quoteform

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the live forms of this process, keyed by form id.
type Registry struct {
	opts Options

	mu    sync.Mutex
	forms map[string]*Controller
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:  opts.withDefaults(),
		forms: make(map[string]*Controller),
	}
}

// Create mounts a new empty form.
func (r *Registry) Create() *Controller {
	c := NewController(uuid.NewString(), r.opts)

	r.mu.Lock()
	r.forms[c.ID()] = c
	n := len(r.forms)
	r.mu.Unlock()

	r.opts.Metrics.SetLiveForms(n)
	return c
}

func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.forms[id]
	return c, ok
}

// Remove tears the form down and forgets it.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	c, ok := r.forms[id]
	delete(r.forms, id)
	n := len(r.forms)
	r.mu.Unlock()

	if !ok {
		return false
	}
	c.Close()
	r.opts.Metrics.SetLiveForms(n)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Sweep closes and drops every form untouched for longer than maxIdle.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.opts.Now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*Controller
	for id, c := range r.forms {
		if c.idleSince().Before(cutoff) {
			stale = append(stale, c)
			delete(r.forms, id)
		}
	}
	n := len(r.forms)
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	r.opts.Metrics.SetLiveForms(n)
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.opts.Logger.Info(r.opts.Logger.WithField(ctx, "evicted", n), "quoteform.sweep")
			}
		}
	}
}
