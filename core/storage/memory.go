package storage

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

// Put inserts or replaces a document.
func (s *MemoryStore) Put(_ context.Context, collection string, doc Document) (string, error) {
	doc, id, err := prepare(collection, doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]Document)
		s.collections[collection] = docs
	}
	docs[id] = doc
	return id, nil
}

// Get retrieves a document by id.
func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	if err := checkKey(collection, id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, notFound(collection, id)
	}
	return maps.Clone(doc), nil
}

// List retrieves all documents of a collection, ordered by id.
func (s *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	ids := slices.Sorted(maps.Keys(docs))
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, maps.Clone(docs[id]))
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
