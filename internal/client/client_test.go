package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/faq-chat-backend/internal/session"
)

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }

func TestAsk_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-User-ID"); got != "u1" {
			t.Errorf("X-User-ID = %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["message"] != "요금제?" {
			t.Errorf("message = %q", body["message"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"found":true,"answer":"A","sourceQuestion":"Q","score":0.9}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	c.UserID = "u1"
	resp, err := c.Ask(context.Background(), "요금제?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !resp.Found || resp.Answer != "A" || *resp.SourceQuestion != "Q" || *resp.Score != 0.9 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAsk_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"request_id":"r","code":"empty_message","error":"message 필드가 비어 있습니다."}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Ask(context.Background(), " ")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T %v", err, err)
	}
	if apiErr.Status != 400 || apiErr.Message != "message 필드가 비어 있습니다." {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestAsk_UnparsableBody(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"html error page", http.StatusBadGateway, "<html>bad gateway</html>"},
		{"truncated success", http.StatusOK, "{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Ask(context.Background(), "x")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("want *APIError, got %T %v", err, err)
			}
			if apiErr.Status != tc.status || apiErr.Message != ParseErrorText {
				t.Fatalf("unexpected api error: %+v", apiErr)
			}
		})
	}
}

func TestAsk_TransportError(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	var te *TransportError
	if _, err := New(url).Ask(context.Background(), "x"); !errors.As(err, &te) {
		t.Fatalf("dial failure should be a transport error, got %v", err)
	}
}

func TestFormatBotContent(t *testing.T) {
	found := &ChatResponse{Found: true, Answer: "답", SourceQuestion: strp("Q"), Score: f64p(0.91)}
	if got := FormatBotContent(found); got != "답" {
		t.Fatalf("found -> %q", got)
	}

	miss := &ChatResponse{Answer: "거절", SourceQuestion: strp("가까운 Q"), Score: f64p(0.41234)}
	if got := FormatBotContent(miss); got != "거절\n(가장 가까운 질문: 가까운 Q, 유사도: 0.412)" {
		t.Fatalf("miss -> %q", got)
	}

	noScore := &ChatResponse{Answer: "거절", SourceQuestion: strp("Q")}
	if got := FormatBotContent(noScore); got != "거절\n(가장 가까운 질문: Q)" {
		t.Fatalf("no score -> %q", got)
	}

	empty := &ChatResponse{Answer: "거절"}
	if got := FormatBotContent(empty); got != "거절" {
		t.Fatalf("empty index -> %q", got)
	}
}

type stubAsker struct {
	fn func(ctx context.Context, msg string) (*ChatResponse, error)
}

func (s stubAsker) Ask(ctx context.Context, msg string) (*ChatResponse, error) { return s.fn(ctx, msg) }

func newConversation(t *testing.T, fn func(context.Context, string) (*ChatResponse, error)) *Conversation {
	t.Helper()
	m := session.NewManager(&session.MemoryStore{}, zerolog.Nop())
	m.Open(context.Background())
	return &Conversation{Sessions: m, API: stubAsker{fn: fn}}
}

func TestConversation_Send(t *testing.T) {
	calls := 0
	conv := newConversation(t, func(_ context.Context, msg string) (*ChatResponse, error) {
		calls++
		return &ChatResponse{Found: true, Answer: "답:" + msg, SourceQuestion: strp("Q"), Score: f64p(0.8)}, nil
	})

	if _, ok, err := conv.Send(context.Background(), "   "); ok || err != nil || calls != 0 {
		t.Fatalf("blank input must be ignored")
	}

	reply, ok, err := conv.Send(context.Background(), "  지원되는 언어가 뭐가 있어?  ")
	if err != nil || !ok {
		t.Fatalf("Send: %v", err)
	}
	if reply.Role != session.RoleBot || reply.Content != "답:지원되는 언어가 뭐가 있어?" || *reply.Score != 0.8 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	act, _ := conv.Sessions.Active()
	if act.Title != "지원되는 언어가 뭐가 있어?" || len(act.Messages) != 2 {
		t.Fatalf("session not updated: %+v", act)
	}
}

func TestConversation_Failures(t *testing.T) {
	conv := newConversation(t, func(_ context.Context, msg string) (*ChatResponse, error) {
		if strings.HasPrefix(msg, "api") {
			return nil, &APIError{Status: 400, Message: "message가 너무 깁니다."}
		}
		if strings.HasPrefix(msg, "html") {
			return nil, &APIError{Status: 502, Message: ParseErrorText}
		}
		return nil, &TransportError{Err: errors.New("connection refused")}
	})

	reply, _, err := conv.Send(context.Background(), "api call")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Content != "⚠️ message가 너무 깁니다." {
		t.Fatalf("api error reply = %q", reply.Content)
	}

	reply, _, _ = conv.Send(context.Background(), "html page")
	if reply.Content != "⚠️ JSON 파싱 실패" {
		t.Fatalf("unparsable reply = %q", reply.Content)
	}

	reply, _, _ = conv.Send(context.Background(), "network")
	if reply.Content != ServerErrorText || reply.SourceQuestion != nil || reply.Score != nil {
		t.Fatalf("transport error reply = %+v", reply)
	}

	act, _ := conv.Sessions.Active()
	if len(act.Messages) != 6 {
		t.Fatalf("every exchange should be recorded, got %d", len(act.Messages))
	}
	for i, m := range act.Messages {
		wantRole := session.RoleUser
		if i%2 == 1 {
			wantRole = session.RoleBot
		}
		if m.Role != wantRole {
			t.Fatalf("message %d role = %s", i, m.Role)
		}
	}
}
