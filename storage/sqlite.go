package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width RFC 3339 encoding so stored timestamps sort
// lexically the same way they sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	translations TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	email      TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// sqliteStore persists documents to a single local database file, the
// fallback when no Mongo URI is configured.
type sqliteStore struct {
	db    *sql.DB
	notes *sqliteCollection
	users *sqliteCollection
}

func openSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %v: %w", path, err, ErrUnavailable)
	}

	// One connection serializes in-process writers; cross-process writers
	// are out of scope.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %v: %w", path, err, ErrUnavailable)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, opError("sqlite", "create schema", err)
	}

	return &sqliteStore{
		db:    db,
		notes: &sqliteCollection{db: db, table: "notes", columns: []string{"id", "title", "content", "created_at", "updated_at", "translations"}},
		users: &sqliteCollection{db: db, table: "users", columns: []string{"id", "username", "email", "created_at"}},
	}, nil
}

func (s *sqliteStore) Notes() Collection { return s.notes }

func (s *sqliteStore) Users() Collection { return s.users }

func (s *sqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: %v: %w", err, ErrUnavailable)
	}
	return nil
}

func (s *sqliteStore) Close(ctx context.Context) error { return s.db.Close() }

func (s *sqliteStore) Name() string { return "sqlite" }

type sqliteCollection struct {
	db      *sql.DB
	table   string
	columns []string
}

func (c *sqliteCollection) hasColumn(name string) bool {
	for _, col := range c.columns {
		if col == name {
			return true
		}
	}
	return false
}

func (c *sqliteCollection) FindMany(ctx context.Context, filter Filter, opts *FindOptions) (Cursor, error) {
	if err := validateIDFilter(filter); err != nil {
		return nil, err
	}

	builder := sq.Select(c.columns...).From(c.table)
	for k, v := range filter {
		builder = builder.Where(sq.Eq{k: encodeFilterValue(v)})
	}
	if opts != nil {
		if opts.sort != nil {
			if !c.hasColumn(opts.sort.Field) {
				return nil, opError("sqlite", "find", fmt.Errorf("unknown sort field %q", opts.sort.Field))
			}
			dir := "ASC"
			if opts.sort.Desc {
				dir = "DESC"
			}
			builder = builder.OrderBy(fmt.Sprintf("%s %s", opts.sort.Field, dir))
		}
		if opts.limit > 0 {
			builder = builder.Limit(uint64(opts.limit))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, opError("sqlite", "find", err)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opError("sqlite", "find", err)
	}
	return &rowCursor{rows: rows, coll: c}, nil
}

func (c *sqliteCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	cur, err := c.FindMany(ctx, filter, Find().SetLimit(1))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	var doc Document
	if err := cur.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *sqliteCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	stored := doc.Clone()
	id := uuid.NewString()
	stored["id"] = id
	fillTimestamps(stored, time.Now().UTC())

	values := make([]any, 0, len(c.columns))
	for _, col := range c.columns {
		v, err := c.encodeColumn(col, stored[col])
		if err != nil {
			return "", opError("sqlite", "insert", err)
		}
		values = append(values, v)
	}

	query, args, err := sq.Insert(c.table).Columns(c.columns...).Values(values...).ToSql()
	if err != nil {
		return "", opError("sqlite", "insert", err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return "", opError("sqlite", "insert", err)
	}
	return id, nil
}

func (c *sqliteCollection) UpdateOne(ctx context.Context, filter Filter, updates []FieldUpdate) (Document, error) {
	if err := validateIDFilter(filter); err != nil {
		return nil, err
	}

	// Read and write in one transaction so concurrent merges on the same
	// row cannot lose each other's entries.
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, opError("sqlite", "update", err)
	}
	defer tx.Rollback()

	doc, err := c.findOneTx(ctx, tx, filter)
	if err != nil {
		return nil, err
	}
	applyUpdates(doc, updates)

	builder := sq.Update(c.table)
	for _, col := range c.columns {
		if col == "id" {
			continue
		}
		v, err := c.encodeColumn(col, doc[col])
		if err != nil {
			return nil, opError("sqlite", "update", err)
		}
		builder = builder.Set(col, v)
	}
	query, args, err := builder.Where(sq.Eq{"id": doc["id"]}).ToSql()
	if err != nil {
		return nil, opError("sqlite", "update", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, opError("sqlite", "update", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, opError("sqlite", "update", err)
	}
	return doc, nil
}

// findOneTx reads the first matching row inside the update transaction.
func (c *sqliteCollection) findOneTx(ctx context.Context, tx *sql.Tx, filter Filter) (Document, error) {
	builder := sq.Select(c.columns...).From(c.table)
	for k, v := range filter {
		builder = builder.Where(sq.Eq{k: encodeFilterValue(v)})
	}
	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return nil, opError("sqlite", "update", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opError("sqlite", "update", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, opError("sqlite", "update", err)
		}
		return nil, ErrNotFound
	}
	return c.scanRow(rows)
}

func (c *sqliteCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	doc, err := c.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	query, args, err := sq.Delete(c.table).Where(sq.Eq{"id": doc["id"]}).ToSql()
	if err != nil {
		return 0, opError("sqlite", "delete", err)
	}
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, opError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, opError("sqlite", "delete", err)
	}
	return n, nil
}

// encodeColumn serializes a canonical field value to its column text form.
func (c *sqliteCollection) encodeColumn(col string, v any) (any, error) {
	switch col {
	case "created_at", "updated_at":
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("column %s: expected time.Time, got %T", col, v)
		}
		return t.UTC().Format(timeLayout), nil
	case "translations":
		raw, err := json.Marshal(toStringMap(v))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		return string(raw), nil
	default:
		if v == nil {
			return "", nil
		}
		return fmt.Sprintf("%v", v), nil
	}
}

// scanRow decodes one row back into a canonical document, parsing timestamp
// text and the translations JSON. Malformed stored data is a StorageError.
func (c *sqliteCollection) scanRow(rows *sql.Rows) (Document, error) {
	raw := make([]string, len(c.columns))
	ptrs := make([]any, len(c.columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, opError("sqlite", "scan", err)
	}

	doc := make(Document, len(c.columns))
	for i, col := range c.columns {
		switch col {
		case "created_at", "updated_at":
			t, err := time.Parse(timeLayout, raw[i])
			if err != nil {
				return nil, opError("sqlite", "scan", fmt.Errorf("malformed %s %q: %w", col, raw[i], err))
			}
			doc[col] = t
		case "translations":
			m := make(map[string]string)
			if err := json.Unmarshal([]byte(raw[i]), &m); err != nil {
				return nil, opError("sqlite", "scan", fmt.Errorf("malformed translations %q: %w", raw[i], err))
			}
			doc[col] = m
		default:
			doc[col] = raw[i]
		}
	}
	return doc, nil
}

func encodeFilterValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(timeLayout)
	}
	return v
}

type rowCursor struct {
	rows *sql.Rows
	coll *sqliteCollection
	cur  Document
	err  error
}

func (c *rowCursor) Next(ctx context.Context) bool {
	if c.err != nil || ctx.Err() != nil {
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	doc, err := c.coll.scanRow(c.rows)
	if err != nil {
		c.err = err
		return false
	}
	c.cur = doc
	return true
}

func (c *rowCursor) Decode(out *Document) error {
	if c.cur == nil {
		return fmt.Errorf("cursor is not positioned on a document")
	}
	*out = c.cur
	return nil
}

func (c *rowCursor) Err() error { return c.err }

func (c *rowCursor) Close(ctx context.Context) error { return c.rows.Close() }
