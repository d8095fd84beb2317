package storage

import (
	"context"
	"fmt"

	"notetaker/config"
)

// Document is the canonical record shape exchanged with callers. Every
// persisted document carries a string "id" field; timestamps are time.Time
// values; the notes "translations" field is a map[string]string.
type Document map[string]any

// Filter is a set of field-equality constraints. An empty filter matches
// every document. The "id" key takes the string-encoded identifier; each
// backend converts it to its native identifier type and rejects strings
// that do not decode with ErrInvalidID.
type Filter map[string]any

// FieldUpdate sets the value at a field path. A path with more than one
// segment addresses a key inside a nested map (e.g. ["translations","French"]),
// creating intermediate maps as needed and merging rather than replacing.
type FieldUpdate struct {
	Path  []string
	Value any
}

// SetField is shorthand for a single-segment update.
func SetField(field string, value any) FieldUpdate {
	return FieldUpdate{Path: []string{field}, Value: value}
}

type Sort struct {
	Field string
	Desc  bool
}

// FindOptions mirrors the mongo driver's options builder. Sort is applied
// before Limit.
type FindOptions struct {
	sort  *Sort
	limit int64
}

func Find() *FindOptions {
	return &FindOptions{}
}

func (o *FindOptions) SetSort(field string, desc bool) *FindOptions {
	o.sort = &Sort{Field: field, Desc: desc}
	return o
}

func (o *FindOptions) SetLimit(n int64) *FindOptions {
	o.limit = n
	return o
}

// Cursor is a lazy, finite, non-restartable sequence of documents.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(out *Document) error
	Err() error
	Close(ctx context.Context) error
}

// Collection is the uniform contract every backend implements for one
// document collection.
type Collection interface {
	// FindMany returns documents matching the filter. opts may be nil.
	FindMany(ctx context.Context, filter Filter, opts *FindOptions) (Cursor, error)

	// FindOne returns the first matching document or ErrNotFound.
	FindOne(ctx context.Context, filter Filter) (Document, error)

	// InsertOne assigns a fresh identifier, fills created_at/updated_at with
	// the current time when absent, persists the document and returns the
	// string-encoded identifier.
	InsertOne(ctx context.Context, doc Document) (string, error)

	// UpdateOne applies the field updates to at most one matching document
	// and returns the post-update document, or ErrNotFound when nothing
	// matched.
	UpdateOne(ctx context.Context, filter Filter, updates []FieldUpdate) (Document, error)

	// DeleteOne removes at most one matching document and returns the number
	// of documents removed (0 or 1).
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
}

// Store is a handle over one backing store. A single Store is constructed at
// process start and injected into the services; it is safe for concurrent
// use from multiple request handlers.
type Store interface {
	Notes() Collection
	Users() Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Name() string
}

// Open selects and constructs the backing store. A configured Mongo URI
// always wins; connectivity is probed with a bounded timeout and a failed
// probe fails construction rather than degrading to a fallback store. With
// no URI the configured fallback backend is used.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	store, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return instrument(store), nil
}

func open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	if cfg.MongoURI != "" {
		return openMongo(ctx, cfg)
	}

	switch cfg.Backend {
	case config.BackendSQLite, "":
		return openSQLite(cfg.SQLitePath)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
