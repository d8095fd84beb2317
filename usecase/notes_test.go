package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notetaker/llm"
	"notetaker/storage"
)

type stubTranslator struct {
	text  string
	err   error
	calls int
}

func (s *stubTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubGenerator struct {
	note llm.GeneratedNote
	err  error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (llm.GeneratedNote, error) {
	return s.note, s.err
}

// brokenStore fails every collection operation; used to prove a code path
// never reaches storage.
type brokenStore struct{}

func (brokenStore) Notes() storage.Collection       { return brokenCollection{} }
func (brokenStore) Users() storage.Collection       { return brokenCollection{} }
func (brokenStore) Ping(ctx context.Context) error  { return nil }
func (brokenStore) Close(ctx context.Context) error { return nil }
func (brokenStore) Name() string                    { return "broken" }

type brokenCollection struct{}

var errStorageTouched = errors.New("storage should not have been touched")

func (brokenCollection) FindMany(ctx context.Context, f storage.Filter, o *storage.FindOptions) (storage.Cursor, error) {
	return nil, errStorageTouched
}
func (brokenCollection) FindOne(ctx context.Context, f storage.Filter) (storage.Document, error) {
	return nil, errStorageTouched
}
func (brokenCollection) InsertOne(ctx context.Context, d storage.Document) (string, error) {
	return "", errStorageTouched
}
func (brokenCollection) UpdateOne(ctx context.Context, f storage.Filter, u []storage.FieldUpdate) (storage.Document, error) {
	return nil, errStorageTouched
}
func (brokenCollection) DeleteOne(ctx context.Context, f storage.Filter) (int64, error) {
	return 0, errStorageTouched
}

func newNotesService(translator llm.Translator, generator llm.Generator) *NotesService {
	return NewNotesService(storage.NewMemoryStore(), translator, generator)
}

func TestCreateNote(t *testing.T) {
	ctx := context.Background()
	svc := newNotesService(nil, nil)

	t.Run("SetsInvariants", func(t *testing.T) {
		note, err := svc.Create(ctx, "T", "C")
		require.NoError(t, err)

		assert.NotEmpty(t, note.ID)
		assert.Equal(t, "T", note.Title)
		assert.Equal(t, "C", note.Content)
		assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))
		assert.Equal(t, map[string]string{}, note.Translations)
	})

	t.Run("RequiresTitle", func(t *testing.T) {
		_, err := svc.Create(ctx, "  ", "C")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("RequiresContent", func(t *testing.T) {
		_, err := svc.Create(ctx, "T", "")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestGetNote(t *testing.T) {
	ctx := context.Background()
	svc := newNotesService(nil, nil)

	created, err := svc.Create(ctx, "T", "C")
	require.NoError(t, err)

	t.Run("ReturnsNote", func(t *testing.T) {
		note, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, note.ID)
	})

	t.Run("MalformedID", func(t *testing.T) {
		_, err := svc.Get(ctx, "not-a-valid-id")
		assert.ErrorIs(t, err, storage.ErrInvalidID)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := svc.Get(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestListNotesSortedByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	svc := newNotesService(nil, nil)

	first, err := svc.Create(ctx, "first", "C")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := svc.Create(ctx, "second", "C")
	require.NoError(t, err)

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestListAndSearchCapAtListLimit(t *testing.T) {
	ctx := context.Background()
	svc := newNotesService(nil, nil)

	for i := 0; i < ListLimit+5; i++ {
		_, err := svc.Create(ctx, fmt.Sprintf("note %d", i), "shared body")
		require.NoError(t, err)
	}

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, ListLimit)

	// Every note matches, so the cap applies to search results too.
	notes, err = svc.Search(ctx, "shared body")
	require.NoError(t, err)
	assert.Len(t, notes, ListLimit)
}

func TestUpdateNote(t *testing.T) {
	ctx := context.Background()
	svc := newNotesService(nil, nil)

	created, err := svc.Create(ctx, "T", "C")
	require.NoError(t, err)

	t.Run("BumpsUpdatedAt", func(t *testing.T) {
		time.Sleep(2 * time.Millisecond)
		title := "new title"
		updated, err := svc.Update(ctx, created.ID, NoteUpdate{Title: &title})
		require.NoError(t, err)

		assert.Equal(t, "new title", updated.Title)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	})

	t.Run("MergesTranslations", func(t *testing.T) {
		updated, err := svc.Update(ctx, created.ID, NoteUpdate{
			Translations: map[string]string{"German": "Hallo"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Hallo", updated.Translations["German"])
	})

	t.Run("NoRecognizedFieldsFailsBeforeStorage", func(t *testing.T) {
		before, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, NoteUpdate{})
		assert.ErrorIs(t, err, ErrValidation)

		after, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, after.UpdatedAt.Equal(before.UpdatedAt))
	})

	t.Run("EmptyTitleRejected", func(t *testing.T) {
		empty := "   "
		_, err := svc.Update(ctx, created.ID, NoteUpdate{Title: &empty})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDeleteNoteTwice(t *testing.T) {
	ctx := context.Background()
	svc := newNotesService(nil, nil)

	created, err := svc.Create(ctx, "T", "C")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), storage.ErrNotFound)
}

func TestSearchNotes(t *testing.T) {
	ctx := context.Background()
	svc := newNotesService(nil, nil)

	_, err := svc.Create(ctx, "Shopping list", "milk and eggs")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Meeting", "Agenda for MONDAY")
	require.NoError(t, err)

	t.Run("MatchesTitleCaseInsensitive", func(t *testing.T) {
		notes, err := svc.Search(ctx, "shopping")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "Shopping list", notes[0].Title)
	})

	t.Run("MatchesContentCaseInsensitive", func(t *testing.T) {
		notes, err := svc.Search(ctx, "monday")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "Meeting", notes[0].Title)
	})

	t.Run("NoMatches", func(t *testing.T) {
		notes, err := svc.Search(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("EmptyQueryNeverTouchesStorage", func(t *testing.T) {
		broken := NewNotesService(brokenStore{}, nil, nil)
		notes, err := broken.Search(ctx, "   ")
		require.NoError(t, err)
		assert.Empty(t, notes)
	})
}

func TestTranslateNote(t *testing.T) {
	ctx := context.Background()

	t.Run("PersistsTranslationAndBumpsUpdatedAt", func(t *testing.T) {
		translator := &stubTranslator{text: "Bonjour"}
		svc := newNotesService(translator, nil)

		created, err := svc.Create(ctx, "T", "Hello")
		require.NoError(t, err)

		time.Sleep(2 * time.Millisecond)
		translated, err := svc.Translate(ctx, created.ID, "French")
		require.NoError(t, err)
		assert.Equal(t, "Bonjour", translated)
		assert.Equal(t, 1, translator.calls)

		note, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bonjour", note.Translations["French"])
		assert.True(t, note.UpdatedAt.After(created.UpdatedAt))
	})

	t.Run("DefaultsToEnglish", func(t *testing.T) {
		svc := newNotesService(&stubTranslator{text: "Hello"}, nil)
		created, err := svc.Create(ctx, "T", "Hallo")
		require.NoError(t, err)

		_, err = svc.Translate(ctx, created.ID, "")
		require.NoError(t, err)

		note, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", note.Translations["English"])
	})

	t.Run("CollaboratorFailureIsUpstream", func(t *testing.T) {
		svc := newNotesService(&stubTranslator{err: errors.New("boom")}, nil)
		created, err := svc.Create(ctx, "T", "C")
		require.NoError(t, err)

		_, err = svc.Translate(ctx, created.ID, "French")
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("MissingTranslatorIsUpstream", func(t *testing.T) {
		svc := newNotesService(nil, nil)
		created, err := svc.Create(ctx, "T", "C")
		require.NoError(t, err)

		_, err = svc.Translate(ctx, created.ID, "French")
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("MissingNote", func(t *testing.T) {
		svc := newNotesService(&stubTranslator{text: "x"}, nil)
		_, err := svc.Translate(ctx, "00000000-0000-0000-0000-000000000000", "French")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGenerateNote(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesThroughCreatePath", func(t *testing.T) {
		gen := &stubGenerator{note: llm.GeneratedNote{Title: "Draft", Content: "Body"}}
		svc := newNotesService(nil, gen)

		note, err := svc.Generate(ctx, "write me a note")
		require.NoError(t, err)
		assert.Equal(t, "Draft", note.Title)
		assert.Equal(t, "Body", note.Content)
		assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))
		assert.Equal(t, map[string]string{}, note.Translations)
	})

	t.Run("EmptyPrompt", func(t *testing.T) {
		svc := newNotesService(nil, &stubGenerator{})
		_, err := svc.Generate(ctx, " ")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("CollaboratorFailureIsUpstream", func(t *testing.T) {
		svc := newNotesService(nil, &stubGenerator{err: errors.New("boom")})
		_, err := svc.Generate(ctx, "prompt")
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("MissingGeneratorIsUpstream", func(t *testing.T) {
		svc := newNotesService(nil, nil)
		_, err := svc.Generate(ctx, "prompt")
		assert.ErrorIs(t, err, ErrUpstream)
	})
}
