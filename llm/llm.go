package llm

import "context"

// Translator translates note content into a target language. Implementations
// must be safe for concurrent use.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// GeneratedNote is the collaborator's answer to a generation prompt.
type GeneratedNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Generator produces a note draft from a free-text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GeneratedNote, error)
}
