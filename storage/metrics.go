package storage

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OperationsTotal counts storage operations per backend and operation name.
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storage_operations_total",
		Help: "Total number of storage operations",
	},
	[]string{"backend", "operation"},
)

// instrumentedStore wraps a Store so every collection operation increments
// OperationsTotal. Open applies it to every backend it constructs.
type instrumentedStore struct {
	Store
}

func instrument(s Store) Store {
	return &instrumentedStore{Store: s}
}

func (s *instrumentedStore) Notes() Collection {
	return &instrumentedCollection{inner: s.Store.Notes(), backend: s.Name()}
}

func (s *instrumentedStore) Users() Collection {
	return &instrumentedCollection{inner: s.Store.Users(), backend: s.Name()}
}

type instrumentedCollection struct {
	inner   Collection
	backend string
}

func (c *instrumentedCollection) FindMany(ctx context.Context, filter Filter, opts *FindOptions) (Cursor, error) {
	OperationsTotal.WithLabelValues(c.backend, "find_many").Inc()
	return c.inner.FindMany(ctx, filter, opts)
}

func (c *instrumentedCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	OperationsTotal.WithLabelValues(c.backend, "find_one").Inc()
	return c.inner.FindOne(ctx, filter)
}

func (c *instrumentedCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	OperationsTotal.WithLabelValues(c.backend, "insert_one").Inc()
	return c.inner.InsertOne(ctx, doc)
}

func (c *instrumentedCollection) UpdateOne(ctx context.Context, filter Filter, updates []FieldUpdate) (Document, error) {
	OperationsTotal.WithLabelValues(c.backend, "update_one").Inc()
	return c.inner.UpdateOne(ctx, filter, updates)
}

func (c *instrumentedCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	OperationsTotal.WithLabelValues(c.backend, "delete_one").Inc()
	return c.inner.DeleteOne(ctx, filter)
}
