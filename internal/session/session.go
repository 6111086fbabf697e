// Package session keeps the terminal chat client's conversation history.
// Sessions live entirely on the client side: the server stores only
// per-request chat logs, never conversations.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageKey names the persisted sessions document.
const StorageKey = "vibecoding_chat_sessions_v3"

// DefaultTitle is used for sessions created before any message was sent.
const DefaultTitle = "새 대화"

// titleRunes caps auto-generated titles.
const titleRunes = 30

// Message roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ChatMessage is one line of a conversation. SourceQuestion and Score are
// set only on bot messages produced by retrieval.
type ChatMessage struct {
	ID             string    `json:"id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	SourceQuestion *string   `json:"sourceQuestion,omitempty"`
	Score          *float64  `json:"score,omitempty"`
}

// ChatSession is an ordered, append-only list of messages.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"createdAt"`
	Messages  []ChatMessage `json:"messages"`
}

// NewUserMessage builds a user message stamped with the current time.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{ID: uuid.NewString(), Role: RoleUser, Content: content, CreatedAt: time.Now().UTC()}
}

// NewBotMessage builds a bot message. sourceQuestion and score may be nil.
func NewBotMessage(content string, sourceQuestion *string, score *float64) ChatMessage {
	return ChatMessage{
		ID:             uuid.NewString(),
		Role:           RoleBot,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
		SourceQuestion: sourceQuestion,
		Score:          score,
	}
}

// TitleFrom returns the first 30 runes of the trimmed text, or DefaultTitle
// when the text is blank.
func TitleFrom(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return DefaultTitle
	}
	r := []rune(t)
	if len(r) > titleRunes {
		r = r[:titleRunes]
	}
	return string(r)
}

func cloneSession(s ChatSession) ChatSession {
	out := s
	out.Messages = append([]ChatMessage(nil), s.Messages...)
	return out
}

func cloneSessions(in []ChatSession) []ChatSession {
	out := make([]ChatSession, len(in))
	for i := range in {
		out[i] = cloneSession(in[i])
	}
	return out
}
