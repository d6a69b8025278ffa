package search

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

const (
	indexDirName    = "chapters.bleve"
	versionFileName = "chapters.version"

	// batchSize bounds documents per Bleve batch during bulk indexing.
	batchSize = 500
)

// mappingVersion is bumped whenever buildIndexMapping changes.
// A stored index with a different version is dropped and recreated on open.
const mappingVersion = "1"

// SearchIndex wraps a Bleve index of saved chapter sets.
// All methods are safe for concurrent use; Rebuild takes an exclusive lock.
type SearchIndex struct {
	index       bleve.Index
	path        string
	versionPath string
	logger      *slog.Logger
	mu          sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (discarded if nil)
}

// NewSearchIndex opens the index under opts.DataPath, creating it when missing.
// An index that fails to open or was built with another mapping version is recreated empty;
// callers repopulate it with ReindexAll.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &SearchIndex{
		path:        filepath.Join(opts.DataPath, indexDirName),
		versionPath: filepath.Join(opts.DataPath, versionFileName),
		logger:      logger,
	}

	if s.storedVersionMatches() {
		index, err := bleve.Open(s.path)
		if err == nil {
			s.index = index
			logger.Info("opened existing search index", "path", s.path)
			return s, nil
		}
		logger.Warn("failed to open existing index, will recreate", "path", s.path, "error", err)
	}

	if err := s.create(); err != nil {
		return nil, err
	}
	return s, nil
}

// storedVersionMatches reports whether an index exists on disk with the current mapping version.
func (s *SearchIndex) storedVersionMatches() bool {
	if _, err := os.Stat(s.path); err != nil {
		return false
	}

	stored, err := os.ReadFile(s.versionPath)
	if err != nil {
		s.logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
		return false
	}
	if string(stored) != mappingVersion {
		s.logger.Info("search index mapping version changed, will rebuild",
			"old_version", string(stored),
			"new_version", mappingVersion,
		)
		return false
	}
	return true
}

// create removes anything at the index path and creates a fresh index. Caller holds the write lock or owns s.
func (s *SearchIndex) create() error {
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove old index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	if err := os.WriteFile(s.versionPath, []byte(mappingVersion), 0o644); err != nil {
		s.logger.Warn("failed to write search version file", "error", err)
	}
	s.logger.Info("created new search index", "path", s.path, "mapping_version", mappingVersion)
	return nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument indexes or replaces a single document.
func (s *SearchIndex) IndexDocument(doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments indexes documents in batches of batchSize.
func (s *SearchIndex) IndexDocuments(docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[start:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}

	return nil
}

// DeleteDocument removes a document from the index. Unknown IDs are ignored.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by recreating the index.
// It blocks all other operations until done.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	closeErr := s.index.Close()
	if err := s.create(); err != nil {
		return errors.Join(closeErr, err)
	}
	if closeErr != nil {
		s.logger.Warn("error closing index before rebuild", "error", closeErr)
	}

	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
