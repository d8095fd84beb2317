package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToBSONFilter(t *testing.T) {
	t.Run("TranslatesID", func(t *testing.T) {
		oid := primitive.NewObjectID()
		out, err := toBSONFilter(Filter{"id": oid.Hex(), "title": "T"})
		require.NoError(t, err)

		assert.Equal(t, oid, out["_id"])
		assert.Equal(t, "T", out["title"])
		assert.NotContains(t, out, "id")
	})

	t.Run("RejectsMalformedID", func(t *testing.T) {
		_, err := toBSONFilter(Filter{"id": "not-a-valid-id"})
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("RejectsNonStringID", func(t *testing.T) {
		_, err := toBSONFilter(Filter{"id": 42})
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestFromBSON(t *testing.T) {
	oid := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := fromBSON(bson.M{
		"_id":          oid,
		"title":        "T",
		"created_at":   primitive.NewDateTimeFromTime(now),
		"translations": bson.M{"French": "Bonjour"},
	})

	assert.Equal(t, oid.Hex(), doc["id"])
	assert.Equal(t, "T", doc["title"])
	assert.Equal(t, now, doc["created_at"])
	assert.Equal(t, map[string]string{"French": "Bonjour"}, doc["translations"])
}

func TestMongoField(t *testing.T) {
	assert.Equal(t, "_id", mongoField("id"))
	assert.Equal(t, "updated_at", mongoField("updated_at"))
}
