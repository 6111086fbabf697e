// Package client talks to the FAQ chat API and drives a terminal
// conversation on top of the session package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ServerErrorText is shown when the server could not be reached.
const ServerErrorText = "서버와 통신 중 오류가 발생했습니다."

// ParseErrorText is the APIError message for a reply body that is not JSON.
const ParseErrorText = "JSON 파싱 실패"

// ChatResponse mirrors the POST /api/chat success body.
type ChatResponse struct {
	Found          bool     `json:"found"`
	Answer         string   `json:"answer"`
	SourceQuestion *string  `json:"sourceQuestion"`
	Score          *float64 `json:"score"`
}

// APIError is a non-2xx reply carrying an {"error": "..."} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// TransportError wraps network and read failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// Client posts questions to a running server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	UserID  string
}

// New returns a Client with a 30s request timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Ask sends one message and decodes the answer.
func (c *Client) Ask(ctx context.Context, message string) (*ChatResponse, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserID != "" {
		req.Header.Set("X-User-ID", c.UserID)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: ParseErrorText}
		}
		msg := eb.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	var out ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: ParseErrorText}
	}
	return &out, nil
}
