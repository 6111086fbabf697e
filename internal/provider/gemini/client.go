// Package gemini adapts the Gemini API (google.golang.org/genai) to the rag
// capability interfaces.
package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/tbourn/faq-chat-backend/internal/rag"
)

// Embedding task types.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Defaults used when Config leaves a model empty.
const (
	DefaultChatModel  = "gemini-2.0-flash"
	DefaultEmbedModel = "text-embedding-004"
)

// Config configures a Client.
type Config struct {
	APIKey     string
	ChatModel  string
	EmbedModel string
}

// Client implements rag.Completer and rag.Embedder (query task type).
type Client struct {
	api        *genai.Client
	chatModel  string
	embedModel string
	taskType   string
}

// New builds a Gemini client for the Gemini API backend.
func New(ctx context.Context, cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("gemini: API key is required")
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		api:        api,
		chatModel:  strings.TrimSpace(cfg.ChatModel),
		embedModel: strings.TrimSpace(cfg.EmbedModel),
		taskType:   TaskRetrievalQuery,
	}
	if c.chatModel == "" {
		c.chatModel = DefaultChatModel
	}
	if c.embedModel == "" {
		c.embedModel = DefaultEmbedModel
	}
	return c, nil
}

// ForDocuments returns a copy that embeds with the RETRIEVAL_DOCUMENT task type.
func (c *Client) ForDocuments() *Client {
	cp := *c
	cp.taskType = TaskRetrievalDocument
	return &cp
}

// Complete generates text with the system instruction and temperature of req.
func (c *Client) Complete(ctx context.Context, req rag.CompletionRequest) (string, error) {
	resp, err := c.api.Models.GenerateContent(ctx, c.chatModel, textContents(req.User), completionConfig(req))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Embed returns the embedding of text for the configured task type.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.Models.EmbedContent(ctx, c.embedModel, textContents(text), &genai.EmbedContentConfig{
		TaskType: c.taskType,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini: no embedding values returned")
	}
	return resp.Embeddings[0].Values, nil
}

// ModelName returns the embedding model id.
func (c *Client) ModelName() string { return c.embedModel }

func textContents(text string) []*genai.Content {
	return []*genai.Content{{Parts: []*genai.Part{{Text: text}}}}
}

func completionConfig(req rag.CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	return cfg
}
