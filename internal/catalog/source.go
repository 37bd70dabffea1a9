package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/watcher"
)

// Source hands out the current catalog and swaps in a new one when the backing file changes.
// Readers always see a complete catalog; a bad file leaves the previous one in place.
type Source struct {
	logger  *logger.Logger
	path    string
	current atomic.Pointer[Catalog]

	mu        sync.Mutex
	listeners []func(*Catalog)
	failures  []func(error)
	watcher   *watcher.Watcher
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSource loads the catalog at path, or the embedded one when path is empty.
func NewSource(log *logger.Logger, path string) (*Source, error) {
	s := &Source{logger: log, path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Static wraps an already built catalog. It never reloads.
func Static(c *Catalog) *Source {
	s := &Source{logger: logger.Discard()}
	s.current.Store(c)
	return s
}

// Current returns the catalog in effect right now.
func (s *Source) Current() *Catalog {
	return s.current.Load()
}

// OnReload registers fn to run after every successful reload.
func (s *Source) OnReload(fn func(*Catalog)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnReloadError registers fn to run when a watched reload fails.
func (s *Source) OnReloadError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, fn)
}

// Reload reads the catalog again and swaps it in.
func (s *Source) Reload() error {
	var (
		c   *Catalog
		err error
	)
	if s.path == "" {
		c, err = Default()
	} else {
		c, err = LoadFile(s.path)
	}
	if err != nil {
		return err
	}

	s.current.Store(c)

	s.mu.Lock()
	listeners := append([]func(*Catalog){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(c)
	}

	s.logger.Info("catalog loaded",
		"path", s.path,
		"events", len(c.data.Events),
		"artists", len(c.data.Artists),
	)
	return nil
}

// Watch reloads the catalog whenever its file changes, until Close is called.
// It does nothing for the embedded catalog.
func (s *Source) Watch(settle time.Duration) error {
	if s.path == "" {
		return nil
	}

	w, err := watcher.New(s.logger.Logger, watcher.Options{SettleDelay: settle})
	if err != nil {
		return err
	}
	if err := w.Watch(s.path); err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch catalog: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.watcher, s.cancel, s.done = w, cancel, done
	s.mu.Unlock()

	go func() {
		_ = w.Start(ctx)
	}()
	go s.loop(ctx, w, done)

	return nil
}

func (s *Source) loop(ctx context.Context, w *watcher.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.Events():
			if event.Type == watcher.EventRemoved {
				s.logger.Warn("catalog file removed, keeping last good catalog", "path", event.Path)
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.WithError(err).Error("catalog reload failed, keeping last good catalog", "path", event.Path)
				s.reloadFailed(err)
			}
		case err := <-w.Errors():
			s.logger.WithError(err).Warn("catalog watcher error")
		}
	}
}

// Close stops watching. Safe to call when Watch was never started.
func (s *Source) Close() error {
	s.mu.Lock()
	w, cancel, done := s.watcher, s.cancel, s.done
	s.watcher, s.cancel, s.done = nil, nil, nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	cancel()
	<-done
	return w.Stop()
}

func (s *Source) reloadFailed(err error) {
	s.mu.Lock()
	failures := append([]func(error){}, s.failures...)
	s.mu.Unlock()
	for _, fn := range failures {
		fn(err)
	}
}
