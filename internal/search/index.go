package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// Index wraps an in-memory Bleve index of override documents.
//
// Thread safety: All public methods are safe for concurrent use.
type Index struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex // Protects index swaps during Replace
}

// NewIndex creates an empty in-memory index.
func NewIndex(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument indexes a single document.
func (s *Index) IndexDocument(doc *Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// DeleteDocument removes a document from the index.
func (s *Index) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// Replace swaps the index contents for docs in one batch.
func (s *Index) Replace(docs []*Document) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := fresh.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			fresh.Close()
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close replaced index", "error", err)
	}
	s.logger.Debug("search index replaced", "documents", len(docs))
	return nil
}

// DocumentCount returns the total number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
