package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore holds documents in process-local slices. Data does not survive
// a restart; it is the lowest-priority fallback and the default store in
// tests.
type memoryStore struct {
	notes *memoryCollection
	users *memoryCollection
}

// NewMemoryStore constructs the ephemeral in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		notes: &memoryCollection{},
		users: &memoryCollection{},
	}
}

func (s *memoryStore) Notes() Collection { return s.notes }

func (s *memoryStore) Users() Collection { return s.users }

func (s *memoryStore) Ping(ctx context.Context) error { return nil }

func (s *memoryStore) Close(ctx context.Context) error { return nil }

func (s *memoryStore) Name() string { return "memory" }

// memoryCollection guards its slice with a single mutex held for the whole
// duration of every operation.
type memoryCollection struct {
	mu   sync.Mutex
	docs []Document
}

func (c *memoryCollection) FindMany(ctx context.Context, filter Filter, opts *FindOptions) (Cursor, error) {
	if err := validateIDFilter(filter); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []Document
	for _, doc := range c.docs {
		if matchFilter(doc, filter) {
			matched = append(matched, doc.Clone())
		}
	}

	if opts != nil {
		sortDocuments(matched, opts.sort)
		if opts.limit > 0 && int64(len(matched)) > opts.limit {
			matched = matched[:opts.limit]
		}
	}
	return newSliceCursor(matched), nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	if err := validateIDFilter(filter); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range c.docs {
		if matchFilter(doc, filter) {
			return doc.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := doc.Clone()
	id := uuid.NewString()
	stored["id"] = id
	fillTimestamps(stored, time.Now().UTC())

	c.docs = append(c.docs, stored)
	return id, nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter Filter, updates []FieldUpdate) (Document, error) {
	if err := validateIDFilter(filter); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matchFilter(doc, filter) {
			applyUpdates(c.docs[i], updates)
			return c.docs[i].Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	if err := validateIDFilter(filter); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matchFilter(doc, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// validateIDFilter rejects malformed identifiers before any list access.
// The memory and sqlite backends both use UUID strings as their native
// identifier type.
func validateIDFilter(filter Filter) error {
	raw, ok := filter["id"]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%w: id filter must be a string", ErrInvalidID)
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return nil
}
