package model

import (
	"time"

	"notetaker/storage"
)

type Note struct {
	ID           string            `bson:"_id,omitempty" json:"id"`
	Title        string            `bson:"title" json:"title"`
	Content      string            `bson:"content" json:"content"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updated_at"`
	Translations map[string]string `bson:"translations" json:"translations"`
}

// NoteFromDocument converts a canonical storage document into a Note.
func NoteFromDocument(doc storage.Document) Note {
	note := Note{
		ID:           stringField(doc, "id"),
		Title:        stringField(doc, "title"),
		Content:      stringField(doc, "content"),
		CreatedAt:    timeField(doc, "created_at"),
		UpdatedAt:    timeField(doc, "updated_at"),
		Translations: map[string]string{},
	}
	switch m := doc["translations"].(type) {
	case map[string]string:
		for k, v := range m {
			note.Translations[k] = v
		}
	case map[string]any:
		for k, v := range m {
			if s, ok := v.(string); ok {
				note.Translations[k] = s
			}
		}
	}
	return note
}

func stringField(doc storage.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func timeField(doc storage.Document, key string) time.Time {
	t, _ := doc[key].(time.Time)
	return t
}
