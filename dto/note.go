package dto

type CreateNoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// UpdateNoteRequest carries the whitelisted mutable note fields. Absent
// fields are left untouched; translations entries are merged into the
// existing map.
type UpdateNoteRequest struct {
	Title        *string           `json:"title"`
	Content      *string           `json:"content"`
	Translations map[string]string `json:"translations"`
}

type TranslateNoteRequest struct {
	To string `json:"to"`
}

type TranslateNoteResponse struct {
	ID                string `json:"id"`
	TranslatedContent string `json:"translated_content"`
}

type GenerateNoteRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}
