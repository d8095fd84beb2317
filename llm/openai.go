package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"notetaker/config"
	"notetaker/pkg/logger"
)

const (
	translateSystemPrompt = "You are a helpful translator. Translate the user's text into the target language preserving meaning and tone. Reply with translated text only."

	generateSystemPrompt = "You are a note-taking assistant. Given the user's prompt, write a short note. " +
		`Reply with a JSON object of the form {"title": "...", "content": "..."} and nothing else.`
)

// Client implements Translator and Generator against an OpenAI-compatible
// chat endpoint.
type Client struct {
	model llms.Model
	log   *zap.SugaredLogger
}

// NewClient builds the client from configuration. A missing token is a
// construction error; callers surface it as an upstream failure when the
// translate/generate features are used.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("llm: no API token configured")
	}

	model, err := openai.New(
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}

	return &Client{model: model, log: logger.Sugar.With("component", "llm")}, nil
}

func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(translateSystemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(fmt.Sprintf("Translate to %s:\n\n%s", targetLanguage, text))},
		},
	}

	response, err := c.model.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		c.log.Errorw("translate call failed", "language", targetLanguage, "err", err)
		return "", fmt.Errorf("llm: translate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("llm: translate: empty response")
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (GeneratedNote, error) {
	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(generateSystemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	response, err := c.model.GenerateContent(ctx, content, llms.WithTemperature(0.7), llms.WithJSONMode())
	if err != nil {
		c.log.Errorw("generate call failed", "err", err)
		return GeneratedNote{}, fmt.Errorf("llm: generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return GeneratedNote{}, fmt.Errorf("llm: generate: empty response")
	}

	var note GeneratedNote
	raw := stripCodeFences(response.Choices[0].Content)
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		c.log.Warnw("malformed generation response", "response", raw, "err", err)
		return GeneratedNote{}, fmt.Errorf("llm: generate: malformed response: %w", err)
	}
	if note.Title == "" || note.Content == "" {
		return GeneratedNote{}, fmt.Errorf("llm: generate: response missing title or content")
	}
	return note, nil
}

// stripCodeFences removes markdown fences some models wrap around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
