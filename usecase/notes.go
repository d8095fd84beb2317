package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"notetaker/llm"
	"notetaker/model"
	"notetaker/storage"
)

// ListLimit caps every list and search result set.
const ListLimit = 50

// DefaultLanguage is used when a translate request names no target language.
const DefaultLanguage = "English"

type NotesService struct {
	notes      storage.Collection
	translator llm.Translator
	generator  llm.Generator
}

// NewNotesService wires the service to a store and the optional LLM
// collaborators. Nil collaborators make translate/generate fail with
// ErrUpstream instead of disabling the routes.
func NewNotesService(store storage.Store, translator llm.Translator, generator llm.Generator) *NotesService {
	return &NotesService{
		notes:      store.Notes(),
		translator: translator,
		generator:  generator,
	}
}

// NoteUpdate carries the whitelisted mutable fields. Nil pointers leave a
// field untouched; Translations entries merge into the stored map.
type NoteUpdate struct {
	Title        *string
	Content      *string
	Translations map[string]string
}

func (s *NotesService) Create(ctx context.Context, title, content string) (model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Note{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return model.Note{}, fmt.Errorf("%w: content is required", ErrValidation)
	}

	now := time.Now().UTC()
	doc := storage.Document{
		"title":        title,
		"content":      content,
		"created_at":   now,
		"updated_at":   now,
		"translations": map[string]string{},
	}

	id, err := s.notes.InsertOne(ctx, doc)
	if err != nil {
		return model.Note{}, err
	}
	doc["id"] = id
	return model.NoteFromDocument(doc), nil
}

func (s *NotesService) Get(ctx context.Context, id string) (model.Note, error) {
	doc, err := s.notes.FindOne(ctx, storage.Filter{"id": id})
	if err != nil {
		return model.Note{}, err
	}
	return model.NoteFromDocument(doc), nil
}

// List returns the most recently updated notes, newest first.
func (s *NotesService) List(ctx context.Context) ([]model.Note, error) {
	cur, err := s.notes.FindMany(ctx, nil, storage.Find().SetSort("updated_at", true).SetLimit(ListLimit))
	if err != nil {
		return nil, err
	}
	return collectNotes(ctx, cur, nil)
}

func (s *NotesService) Update(ctx context.Context, id string, update NoteUpdate) (model.Note, error) {
	var updates []storage.FieldUpdate

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return model.Note{}, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		updates = append(updates, storage.SetField("title", title))
	}
	if update.Content != nil {
		if strings.TrimSpace(*update.Content) == "" {
			return model.Note{}, fmt.Errorf("%w: content cannot be empty", ErrValidation)
		}
		updates = append(updates, storage.SetField("content", *update.Content))
	}
	for lang, text := range update.Translations {
		updates = append(updates, storage.FieldUpdate{Path: []string{"translations", lang}, Value: text})
	}

	if len(updates) == 0 {
		return model.Note{}, fmt.Errorf("%w: no updatable fields provided", ErrValidation)
	}
	updates = append(updates, storage.SetField("updated_at", time.Now().UTC()))

	doc, err := s.notes.UpdateOne(ctx, storage.Filter{"id": id}, updates)
	if err != nil {
		return model.Note{}, err
	}
	return model.NoteFromDocument(doc), nil
}

func (s *NotesService) Delete(ctx context.Context, id string) error {
	n, err := s.notes.DeleteOne(ctx, storage.Filter{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Search matches the query case-insensitively against title and content. An
// empty query returns an empty result set rather than scanning the whole
// collection.
func (s *NotesService) Search(ctx context.Context, query string) ([]model.Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Note{}, nil
	}

	cur, err := s.notes.FindMany(ctx, nil, storage.Find().SetSort("updated_at", true))
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	return collectNotes(ctx, cur, func(n model.Note) bool {
		return strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle)
	})
}

// Translate sends the note's content to the translation collaborator,
// persists the result under translations.<language> and returns the
// translated text.
func (s *NotesService) Translate(ctx context.Context, id, language string) (string, error) {
	if language == "" {
		language = DefaultLanguage
	}

	doc, err := s.notes.FindOne(ctx, storage.Filter{"id": id})
	if err != nil {
		return "", err
	}
	note := model.NoteFromDocument(doc)

	if s.translator == nil {
		return "", fmt.Errorf("%w: translator not configured", ErrUpstream)
	}
	translated, err := s.translator.Translate(ctx, note.Content, language)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	updates := []storage.FieldUpdate{
		{Path: []string{"translations", language}, Value: translated},
		storage.SetField("updated_at", time.Now().UTC()),
	}
	if _, err := s.notes.UpdateOne(ctx, storage.Filter{"id": id}, updates); err != nil {
		return "", err
	}
	return translated, nil
}

// Generate asks the generation collaborator for a note draft and creates it
// through the normal create path.
func (s *NotesService) Generate(ctx context.Context, prompt string) (model.Note, error) {
	if strings.TrimSpace(prompt) == "" {
		return model.Note{}, fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if s.generator == nil {
		return model.Note{}, fmt.Errorf("%w: generator not configured", ErrUpstream)
	}

	generated, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return model.Note{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return s.Create(ctx, generated.Title, generated.Content)
}

// collectNotes drains a cursor, keeping documents the match function accepts
// (nil keeps all), up to ListLimit.
func collectNotes(ctx context.Context, cur storage.Cursor, match func(model.Note) bool) ([]model.Note, error) {
	defer cur.Close(ctx)

	notes := []model.Note{}
	for cur.Next(ctx) {
		var doc storage.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		note := model.NoteFromDocument(doc)
		if match != nil && !match(note) {
			continue
		}
		notes = append(notes, note)
		if len(notes) >= ListLimit {
			break
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
