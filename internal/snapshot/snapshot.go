// Package snapshot serves keyword search over the on-disk knowledge
// snapshot (markdown, text, and export JSON files). It is the fallback
// retrieval capability used when the primary similarity search is down.
package snapshot

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"go.uber.org/zap"

	"github.com/kektech/cardbot/internal/models"
)

// snapshotDoc is the shape indexed into bleve.
type snapshotDoc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Store indexes snapshot files in an in-memory bleve index. Content is kept
// alongside so search hits can return full passage text.
type Store struct {
	index  bleve.Index
	logger *zap.Logger

	mu   sync.RWMutex
	docs map[string]string // path -> content
}

// NewStore creates an empty in-memory snapshot store.
func NewStore(logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so card names
	// match exactly.
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textField)
	docMapping.AddFieldMappingsAt("title", textField)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create snapshot index: %w", err)
	}
	return &Store{index: index, logger: logger, docs: make(map[string]string)}, nil
}

// LoadDir walks dir and indexes every file whose extension is listed.
// Unreadable files are logged and skipped; a missing directory is not an
// error, the store just stays empty.
func (s *Store) LoadDir(dir string, extensions []string) error {
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(e)] = true
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !extSet[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if err := s.IndexFile(path); err != nil {
			s.logger.Warn("snapshot file skipped", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		s.logger.Warn("snapshot directory missing", zap.String("dir", dir))
		return nil
	}
	return err
}

// IndexFile reads and (re)indexes a single file.
func (s *Store) IndexFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot file: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil
	}
	doc := snapshotDoc{Title: filepath.Base(path), Content: content}
	if err := s.index.Index(path, doc); err != nil {
		return fmt.Errorf("index snapshot file: %w", err)
	}
	s.mu.Lock()
	s.docs[path] = content
	s.mu.Unlock()
	return nil
}

// Remove drops a file from the index.
func (s *Store) Remove(path string) error {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
	return s.index.Delete(path)
}

// Len reports the number of indexed files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// SearchByKeyword implements the fallback retrieval capability. Scores are
// normalized to (0,1] by the best hit so the retriever's thresholds apply
// uniformly.
func (s *Store) SearchByKeyword(ctx context.Context, query string, _ models.SearchScope, count int, minScore float64) ([]models.RawHit, error) {
	if count <= 0 {
		count = 10
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = count
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("snapshot search: %w", err)
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}

	maxScore := res.Hits[0].Score
	for _, hit := range res.Hits {
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var hits []models.RawHit
	for _, hit := range res.Hits {
		content, ok := s.docs[hit.ID]
		if !ok {
			continue
		}
		score := 0.0
		if maxScore > 0 {
			score = hit.Score / maxScore
		}
		if score < minScore {
			continue
		}
		hits = append(hits, models.RawHit{
			Text:  content,
			Score: score,
			Meta:  &models.HitMeta{Source: string(models.SourceDocs), Ref: hit.ID},
		})
	}
	return hits, nil
}

// Close releases the index.
func (s *Store) Close() error {
	return s.index.Close()
}
