package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/secretshows/secretshows-server/internal/catalog"
)

// SearchIndex wraps an in-memory Bleve index over the catalog.
//
// Thread safety: All public methods are safe for concurrent use.
// Rebuild swaps in a freshly built index; searches in flight finish on the old one.
type SearchIndex struct {
	logger *slog.Logger

	mu    sync.RWMutex
	index bleve.Index
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger // Logger for operations (uses discard if nil)
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SearchIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

func indexBatch(index bleve.Index, docs []*Document) error {
	batch := index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with every event and artist in c.
// The new index is built off to the side and swapped in once complete.
func (s *SearchIndex) Rebuild(c *catalog.Catalog) error {
	events, artists := c.Events(), c.Artists()

	docs := make([]*Document, 0, len(events)+len(artists))
	for _, e := range events {
		docs = append(docs, FromEvent(e))
	}
	for _, a := range artists {
		docs = append(docs, FromArtist(a))
	}

	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexBatch(fresh, docs); err != nil {
		_ = fresh.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}

	s.logger.Info("rebuilt search index", "events", len(events), "artists", len(artists))
	return nil
}

// Follow rebuilds the index now and after every reload of src.
func (s *SearchIndex) Follow(src *catalog.Source) error {
	src.OnReload(func(c *catalog.Catalog) {
		if err := s.Rebuild(c); err != nil {
			s.logger.Error("search index rebuild failed", "error", err)
		}
	})
	return s.Rebuild(src.Current())
}
