// Package openai adapts the OpenAI chat completion and embedding APIs to the
// rag capability interfaces.
package openai

import (
	"context"
	"errors"
	"math"
	"strings"

	sdk "github.com/sashabaranov/go-openai"

	"github.com/tbourn/faq-chat-backend/internal/rag"
)

// Defaults used when Config leaves a model empty.
const (
	DefaultChatModel  = "gpt-4o-mini"
	DefaultEmbedModel = string(sdk.SmallEmbedding3)
)

// Config configures a Client.
type Config struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	EmbedModel string
}

// Client implements rag.Completer and rag.Embedder.
type Client struct {
	api        *sdk.Client
	chatModel  string
	embedModel sdk.EmbeddingModel
}

// New builds a Client. BaseURL overrides the API endpoint (proxies, tests).
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: API key is required")
	}
	sc := sdk.DefaultConfig(cfg.APIKey)
	if u := strings.TrimSpace(cfg.BaseURL); u != "" {
		sc.BaseURL = strings.TrimRight(u, "/")
	}
	chat := strings.TrimSpace(cfg.ChatModel)
	if chat == "" {
		chat = DefaultChatModel
	}
	embed := strings.TrimSpace(cfg.EmbedModel)
	if embed == "" {
		embed = DefaultEmbedModel
	}
	return &Client{
		api:        sdk.NewClientWithConfig(sc),
		chatModel:  chat,
		embedModel: sdk.EmbeddingModel(embed),
	}, nil
}

// Complete sends a system+user chat completion and returns the first choice.
func (c *Client) Complete(ctx context.Context, req rag.CompletionRequest) (string, error) {
	msgs := make([]sdk.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, sdk.ChatCompletionMessage{Role: sdk.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, sdk.ChatCompletionMessage{Role: sdk.ChatMessageRoleUser, Content: req.User})

	resp, err := c.api.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    msgs,
		Temperature: temperature(req.Temperature),
	})
	if err != nil {
		return "", err
	}
	// No choices is an empty completion; the rewriter falls back to the input.
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds several texts in one request, preserving input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, sdk.EmbeddingRequest{
		Input: texts,
		Model: c.embedModel,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("openai: embedding count mismatch")
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, errors.New("openai: embedding index out of range")
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// ModelName returns the embedding model id.
func (c *Client) ModelName() string { return string(c.embedModel) }

// temperature maps 0 to the smallest positive float32; the SDK drops a zero
// temperature from the request body and the API then applies its default.
func temperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
