package client

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/faq-chat-backend/internal/session"
)

// Asker is the subset of Client used by Conversation.
type Asker interface {
	Ask(ctx context.Context, message string) (*ChatResponse, error)
}

// Conversation appends each exchange to the active session.
type Conversation struct {
	Sessions *session.Manager
	API      Asker
}

// Send records text as a user message, asks the server and records the
// reply. Blank text is ignored and yields a zero message with ok=false.
// Upstream failures become bot messages; only session persistence errors
// are returned.
func (c *Conversation) Send(ctx context.Context, text string) (reply session.ChatMessage, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return session.ChatMessage{}, false, nil
	}

	sid, err := c.Sessions.EnsureActive(ctx, text)
	if err != nil {
		return session.ChatMessage{}, false, err
	}
	if err := c.Sessions.Append(ctx, sid, session.NewUserMessage(text)); err != nil {
		return session.ChatMessage{}, false, err
	}

	reply = c.reply(ctx, text)
	if err := c.Sessions.Append(ctx, sid, reply); err != nil {
		return reply, true, err
	}
	return reply, true, nil
}

func (c *Conversation) reply(ctx context.Context, text string) session.ChatMessage {
	resp, err := c.API.Ask(ctx, text)
	if err == nil {
		return session.NewBotMessage(FormatBotContent(resp), resp.SourceQuestion, resp.Score)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		log.Ctx(ctx).Warn().Int("status", apiErr.Status).Str("error", apiErr.Message).Msg("chat api error")
		return session.NewBotMessage("⚠️ "+apiErr.Message, nil, nil)
	}
	log.Ctx(ctx).Error().Err(err).Msg("chat transport error")
	return session.NewBotMessage(ServerErrorText, nil, nil)
}
