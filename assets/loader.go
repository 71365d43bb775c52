// Package assets loads game assets concurrently and hands the results to
// the frame thread.
//
// Loads run on errgroup goroutines. Their results are queued and published
// by Poll, which the engine calls once per frame, so OnLoad and OnError
// continuations always run synchronously on a frame tick. While a loader
// set on the engine reports !Loaded, the engine runs its loading branch
// instead of the update phases.
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// LoadFunc produces an asset. It runs off the frame thread.
type LoadFunc func(ctx context.Context) (any, error)

// Handle is a pending or finished load.
type Handle struct {
	Name string

	l       *Loader
	value   any
	err     error
	done    bool
	onLoad  []func(v any)
	onError []func(err error)
}

// Done reports whether the result has been published by Poll.
func (h *Handle) Done() bool { return h.done }

// Value returns the loaded asset, or nil.
func (h *Handle) Value() any { return h.value }

// Err returns the load error, if any.
func (h *Handle) Err() error { return h.err }

// OnLoad registers fn to run on the frame thread once the asset is loaded.
// It runs on the next Poll when the handle is already done.
func (h *Handle) OnLoad(fn func(v any)) *Handle {
	h.onLoad = append(h.onLoad, fn)
	h.reschedule()
	return h
}

// OnError registers fn to run on the frame thread if the load fails.
// It runs on the next Poll when the handle already failed.
func (h *Handle) OnError(fn func(err error)) *Handle {
	h.onError = append(h.onError, fn)
	h.reschedule()
	return h
}

func (h *Handle) reschedule() {
	if h.done && !slices.Contains(h.l.pending, h) {
		h.l.pending = append(h.l.pending, h)
	}
}

type result struct {
	h     *Handle
	value any
	err   error
	took  time.Duration
}

// Loader runs asset loads concurrently. It implements grove.AssetLoader
// and grove.AssetPoller.
type Loader struct {
	ctx context.Context
	log *zap.Logger
	g   errgroup.Group

	mu      sync.Mutex
	queued  []result
	pending []*Handle

	total  int
	done   int
	assets map[string]any
	errs   []error
}

// NewLoader returns a loader whose loads see ctx.
func NewLoader(ctx context.Context, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{ctx: ctx, log: log.Named("assets"), assets: make(map[string]any)}
}

// Load starts loading an asset under name.
func (l *Loader) Load(name string, fn LoadFunc) *Handle {
	h := &Handle{Name: name, l: l}
	l.mu.Lock()
	l.total++
	l.mu.Unlock()
	l.g.Go(func() error {
		start := time.Now()
		v, err := fn(l.ctx)
		if err != nil {
			err = fmt.Errorf("load %s: %w", name, err)
		}
		l.mu.Lock()
		l.queued = append(l.queued, result{h: h, value: v, err: err, took: time.Since(start)})
		l.mu.Unlock()
		return err
	})
	return h
}

// LoadFile loads the raw bytes of a file.
func (l *Loader) LoadFile(name, path string) *Handle {
	return l.Load(name, func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	})
}

// LoadYAML loads a YAML file into a new T.
func LoadYAML[T any](l *Loader, name, path string) *Handle {
	return l.Load(name, func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		v := new(T)
		if err := yaml.Unmarshal(data, v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// Poll publishes finished loads and runs their continuations. Call it
// from the frame thread.
func (l *Loader) Poll() {
	l.mu.Lock()
	queued := l.queued
	l.queued = nil
	l.mu.Unlock()

	for _, r := range queued {
		h := r.h
		h.value, h.err, h.done = r.value, r.err, true
		l.done++
		if r.err != nil {
			l.errs = append(l.errs, r.err)
			l.log.Warn("asset failed", zap.String("asset", h.Name), zap.Duration("duration", r.took), zap.Error(r.err))
		} else {
			l.assets[h.Name] = r.value
			l.log.Debug("asset loaded", zap.String("asset", h.Name), zap.Duration("duration", r.took))
		}
		l.pending = append(l.pending, h)
	}

	pending := l.pending
	l.pending = nil
	for _, h := range pending {
		if h.err != nil {
			fns := h.onError
			h.onError = nil
			for _, fn := range fns {
				fn(h.err)
			}
		} else {
			fns := h.onLoad
			h.onLoad = nil
			for _, fn := range fns {
				fn(h.value)
			}
		}
	}
}

// Loaded implements grove.AssetLoader: every requested load has been
// published.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done == l.total
}

// Progress implements grove.AssetLoader.
func (l *Loader) Progress() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.total == 0 {
		return 1
	}
	return float64(l.done) / float64(l.total)
}

// Get returns a loaded asset.
func (l *Loader) Get(name string) (any, bool) {
	v, ok := l.assets[name]
	return v, ok
}

// Wait blocks until every started load has finished and returns the first
// error. Results still need a Poll to be published.
func (l *Loader) Wait() error { return l.g.Wait() }

// Err returns every load error published so far.
func (l *Loader) Err() error { return errors.Join(l.errs...) }
