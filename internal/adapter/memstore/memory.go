package memstore

import (
	"sort"
	"sync"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// MemoryStore is a process-local document cache used when the persistent
// cache is disabled. It only deduplicates fetches within a single run.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

var _ port.DocumentCache = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]domain.Document),
	}
}

func (s *MemoryStore) PutDoc(doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) GetDoc(id string) (domain.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok, nil
}

func (s *MemoryStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// ListDocs returns all cached documents ordered by id.
func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemoryStore) Stats() (domain.CacheStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.CacheStats{Documents: len(s.docs)}
	for _, doc := range s.docs {
		stats.Bytes += int64(len(doc.Text))
	}
	return stats, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]domain.Document)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
