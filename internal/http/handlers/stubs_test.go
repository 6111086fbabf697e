package handlers

import (
	"context"

	"github.com/tbourn/faq-chat-backend/internal/domain"
	"github.com/tbourn/faq-chat-backend/internal/services"
)

type stubChatSvc struct {
	answerFn func(ctx context.Context, req services.AnswerRequest) (*services.ChatAnswer, error)
}

func (s stubChatSvc) Answer(ctx context.Context, req services.AnswerRequest) (*services.ChatAnswer, error) {
	return s.answerFn(ctx, req)
}

type stubLogSvc struct {
	recentFn func(ctx context.Context, limit int) ([]domain.ChatLog, error)
	pageFn   func(ctx context.Context, page, pageSize int) ([]domain.ChatLog, int64, error)
	etagFn   func(ctx context.Context) (string, error)
}

func (s stubLogSvc) Recent(ctx context.Context, limit int) ([]domain.ChatLog, error) {
	return s.recentFn(ctx, limit)
}

func (s stubLogSvc) ListPage(ctx context.Context, page, pageSize int) ([]domain.ChatLog, int64, error) {
	return s.pageFn(ctx, page, pageSize)
}

func (s stubLogSvc) ETag(ctx context.Context) (string, error) {
	if s.etagFn == nil {
		return `W/"logs:0:0"`, nil
	}
	return s.etagFn(ctx)
}

type stubFbSvc struct {
	leaveFn   func(ctx context.Context, userID, chatLogID string, value int) error
	summaryFn func(ctx context.Context, chatLogID string) (int64, int64, error)
}

func (s stubFbSvc) Leave(ctx context.Context, userID, chatLogID string, value int) error {
	return s.leaveFn(ctx, userID, chatLogID, value)
}

func (s stubFbSvc) Summary(ctx context.Context, chatLogID string) (int64, int64, error) {
	return s.summaryFn(ctx, chatLogID)
}
