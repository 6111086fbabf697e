package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/faq-chat-backend/internal/domain"
	"github.com/tbourn/faq-chat-backend/internal/repo"
)

func seedOneLog(t *testing.T, svc *FeedbackService) string {
	t.Helper()
	l, err := repo.CreateChatLog(context.Background(), svc.DB, domain.ChatLog{Question: "q", Answer: "a", Found: true})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return l.ID
}

func TestFeedbackService_Leave_Success(t *testing.T) {
	svc := &FeedbackService{DB: newSvcDB(t)}
	id := seedOneLog(t, svc)

	if err := svc.Leave(context.Background(), "u1", id, 1); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if err := svc.Leave(context.Background(), "u2", id, -1); err != nil {
		t.Fatalf("Leave u2: %v", err)
	}
	up, down, err := svc.Summary(context.Background(), id)
	if err != nil || up != 1 || down != 1 {
		t.Fatalf("Summary = %d/%d, %v; want 1/1", up, down, err)
	}
}

func TestFeedbackService_Leave_Errors(t *testing.T) {
	svc := &FeedbackService{DB: newSvcDB(t)}
	id := seedOneLog(t, svc)

	cases := []struct {
		name  string
		logID string
		value int
		want  error
	}{
		{"zero value", id, 0, ErrInvalidFeedback},
		{"out of range", id, 2, ErrInvalidFeedback},
		{"missing log", "nope", 1, ErrLogNotFound},
	}
	for _, tc := range cases {
		if err := svc.Leave(context.Background(), "u1", tc.logID, tc.value); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}

	if err := svc.Leave(context.Background(), "u1", id, 1); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := svc.Leave(context.Background(), "u1", id, -1); !errors.Is(err, ErrDuplicateFeedback) {
		t.Fatalf("want ErrDuplicateFeedback, got %v", err)
	}
}

func TestFeedbackService_Summary_NotFound(t *testing.T) {
	svc := &FeedbackService{DB: newSvcDB(t)}
	if _, _, err := svc.Summary(context.Background(), "missing"); !errors.Is(err, ErrLogNotFound) {
		t.Fatalf("want ErrLogNotFound, got %v", err)
	}
}
