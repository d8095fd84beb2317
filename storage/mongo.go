package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"notetaker/config"
)

// mongoStore is the primary backend, selected whenever a connection string
// is configured.
type mongoStore struct {
	client *mongo.Client
	notes  *mongoCollection
	users  *mongoCollection
}

func openMongo(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %v: %w", err, ErrUnavailable)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %v: %w", err, ErrUnavailable)
	}

	db := client.Database(cfg.DatabaseName)
	return &mongoStore{
		client: client,
		notes:  &mongoCollection{coll: db.Collection("notes")},
		users:  &mongoCollection{coll: db.Collection("users")},
	}, nil
}

func (s *mongoStore) Notes() Collection { return s.notes }

func (s *mongoStore) Users() Collection { return s.users }

func (s *mongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb: %v: %w", err, ErrUnavailable)
	}
	return nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *mongoStore) Name() string { return "mongo" }

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) FindMany(ctx context.Context, filter Filter, opts *FindOptions) (Cursor, error) {
	bsonFilter, err := toBSONFilter(filter)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if opts != nil {
		if opts.sort != nil {
			dir := 1
			if opts.sort.Desc {
				dir = -1
			}
			findOpts.SetSort(bson.D{{Key: mongoField(opts.sort.Field), Value: dir}})
		}
		if opts.limit > 0 {
			findOpts.SetLimit(opts.limit)
		}
	}

	cur, err := c.coll.Find(ctx, bsonFilter, findOpts)
	if err != nil {
		return nil, opError("mongo", "find", err)
	}
	return &mongoCursor{cur: cur}, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	bsonFilter, err := toBSONFilter(filter)
	if err != nil {
		return nil, err
	}

	var raw bson.M
	if err := c.coll.FindOne(ctx, bsonFilter).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, opError("mongo", "find one", err)
	}
	return fromBSON(raw), nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	stored := doc.Clone()
	delete(stored, "id")
	fillTimestamps(stored, time.Now().UTC())

	res, err := c.coll.InsertOne(ctx, bson.M(stored))
	if err != nil {
		return "", opError("mongo", "insert", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", opError("mongo", "insert", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter Filter, updates []FieldUpdate) (Document, error) {
	bsonFilter, err := toBSONFilter(filter)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	for _, u := range updates {
		set[dottedPath(u.Path)] = u.Value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err = c.coll.FindOneAndUpdate(ctx, bsonFilter, bson.M{"$set": set}, opts).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, opError("mongo", "update", err)
	}
	return fromBSON(raw), nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	bsonFilter, err := toBSONFilter(filter)
	if err != nil {
		return 0, err
	}

	res, err := c.coll.DeleteOne(ctx, bsonFilter)
	if err != nil {
		return 0, opError("mongo", "delete", err)
	}
	return res.DeletedCount, nil
}

// toBSONFilter converts a canonical filter, translating the string id to an
// ObjectID on the "_id" field.
func toBSONFilter(filter Filter) (bson.M, error) {
	out := bson.M{}
	for k, v := range filter {
		if k != "id" {
			out[k] = v
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: id filter must be a string", ErrInvalidID)
		}
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		out["_id"] = oid
	}
	return out, nil
}

func mongoField(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

// fromBSON converts one decoded record to the canonical document shape:
// ObjectID becomes the string id, datetimes become UTC time.Time values and
// the translations sub-document becomes a map[string]string.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case primitive.ObjectID:
			if k == "_id" {
				doc["id"] = val.Hex()
			} else {
				doc[k] = val.Hex()
			}
		case primitive.DateTime:
			doc[k] = val.Time().UTC()
		case bson.M:
			doc[k] = toStringMap(map[string]any(val))
		case bson.D:
			m := make(map[string]any, len(val))
			for _, e := range val {
				m[e.Key] = e.Value
			}
			doc[k] = toStringMap(m)
		default:
			doc[k] = v
		}
	}
	return doc
}

type mongoCursor struct {
	cur *mongo.Cursor
}

func (c *mongoCursor) Next(ctx context.Context) bool {
	return c.cur.Next(ctx)
}

func (c *mongoCursor) Decode(out *Document) error {
	var raw bson.M
	if err := c.cur.Decode(&raw); err != nil {
		return opError("mongo", "decode", err)
	}
	*out = fromBSON(raw)
	return nil
}

func (c *mongoCursor) Err() error {
	if err := c.cur.Err(); err != nil {
		return opError("mongo", "cursor", err)
	}
	return nil
}

func (c *mongoCursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}
