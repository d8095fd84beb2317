package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Clone deep-copies a document so callers never alias store-internal state.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch m := v.(type) {
	case Document:
		return m.Clone()
	case map[string]any:
		out := make(map[string]any, len(m))
		for k, nv := range m {
			out[k] = cloneValue(nv)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, nv := range m {
			out[k] = nv
		}
		return out
	default:
		return v
	}
}

// applyUpdates walks each update path into the document, creating
// intermediate maps as needed, and sets the leaf value. Nested maps are
// merged, never replaced.
func applyUpdates(doc Document, updates []FieldUpdate) {
	for _, u := range updates {
		if len(u.Path) == 0 {
			continue
		}
		node := map[string]any(doc)
		for _, seg := range u.Path[:len(u.Path)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				if sm, isString := node[seg].(map[string]string); isString {
					child = make(map[string]any, len(sm))
					for k, v := range sm {
						child[k] = v
					}
				} else {
					child = make(map[string]any)
				}
				node[seg] = child
			}
			node = child
		}
		node[u.Path[len(u.Path)-1]] = u.Value
	}
}

// matchFilter reports whether every filter constraint holds on the document.
func matchFilter(doc Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// sortDocuments orders docs in place by the sort field. Times compare
// chronologically, everything else by string representation.
func sortDocuments(docs []Document, s *Sort) {
	if s == nil {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if s.Desc {
			return lessValue(docs[j][s.Field], docs[i][s.Field])
		}
		return lessValue(docs[i][s.Field], docs[j][s.Field])
	})
}

func lessValue(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Before(bt)
		}
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

// toStringMap normalizes a nested mapping value (translations) to its
// canonical map[string]string form.
func toStringMap(v any) map[string]string {
	out := make(map[string]string)
	switch m := v.(type) {
	case map[string]string:
		for k, nv := range m {
			out[k] = nv
		}
	case map[string]any:
		for k, nv := range m {
			out[k] = fmt.Sprintf("%v", nv)
		}
	}
	return out
}

// fillTimestamps sets created_at/updated_at when absent.
func fillTimestamps(doc Document, now time.Time) {
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = now
	}
	if _, ok := doc["updated_at"]; !ok {
		doc["updated_at"] = now
	}
}

// sliceCursor is a cursor over an in-memory snapshot, shared by the memory
// backend and tests.
type sliceCursor struct {
	docs   []Document
	pos    int
	closed bool
}

func newSliceCursor(docs []Document) *sliceCursor {
	return &sliceCursor{docs: docs, pos: -1}
}

func (c *sliceCursor) Next(ctx context.Context) bool {
	if c.closed || ctx.Err() != nil {
		return false
	}
	if c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Decode(out *Document) error {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return fmt.Errorf("cursor is not positioned on a document")
	}
	*out = c.docs[c.pos]
	return nil
}

func (c *sliceCursor) Err() error { return nil }

func (c *sliceCursor) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

// dottedPath joins update path segments for backends that address nested
// fields with dot notation.
func dottedPath(path []string) string {
	return strings.Join(path, ".")
}
