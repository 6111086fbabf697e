package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/faq-chat-backend/internal/domain"
	"github.com/tbourn/faq-chat-backend/internal/http/middleware"
	"github.com/tbourn/faq-chat-backend/internal/repo"
	"github.com/tbourn/faq-chat-backend/internal/services"
)

func newFbRouter(svc FeedbackService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.UserIdentity())
	h := New(nil, nil, svc)
	r.POST("/api/logs/:id/feedback", h.LeaveFeedback)
	r.GET("/api/logs/:id/feedback", h.FeedbackSummary)
	return r
}

func postFeedback(r http.Handler, id, body, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/logs/"+id+"/feedback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLeaveFeedback_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusNoContent},
		{"not found", services.ErrLogNotFound, http.StatusNotFound},
		{"invalid", services.ErrInvalidFeedback, http.StatusBadRequest},
		{"duplicate", services.ErrDuplicateFeedback, http.StatusConflict},
		{"other", errors.New("db"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var gotUser, gotID string
		r := newFbRouter(stubFbSvc{leaveFn: func(_ context.Context, uid, id string, _ int) error {
			gotUser, gotID = uid, id
			return tc.err
		}})
		w := postFeedback(r, "abc", `{"value":1}`, "")
		if w.Code != tc.want {
			t.Fatalf("%s: status=%d want %d", tc.name, w.Code, tc.want)
		}
		if gotUser != middleware.AnonymousUser || gotID != "abc" {
			t.Fatalf("%s: user=%q id=%q", tc.name, gotUser, gotID)
		}
	}
}

func TestLeaveFeedback_BindingRejectsBadValues(t *testing.T) {
	r := newFbRouter(stubFbSvc{leaveFn: func(context.Context, string, string, int) error {
		t.Fatalf("service must not be called")
		return nil
	}})
	for _, body := range []string{`{}`, `{"value":0}`, `{"value":2}`, `not json`} {
		if w := postFeedback(r, "abc", body, "u"); w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status=%d", body, w.Code)
		}
	}
}

func newFbDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:fb_handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.ChatLog{}, &domain.LogFeedback{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFeedback_RoundTripWithRealService(t *testing.T) {
	db := newFbDB(t)
	l, err := repo.CreateChatLog(context.Background(), db, domain.ChatLog{Question: "q", Answer: "a", Found: true})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := newFbRouter(&services.FeedbackService{DB: db})

	if w := postFeedback(r, l.ID, `{"value":1}`, "alice"); w.Code != http.StatusNoContent {
		t.Fatalf("alice: %d %s", w.Code, w.Body.String())
	}
	if w := postFeedback(r, l.ID, `{"value":-1}`, "bob"); w.Code != http.StatusNoContent {
		t.Fatalf("bob: %d", w.Code)
	}
	if w := postFeedback(r, l.ID, `{"value":-1}`, "alice"); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: %d", w.Code)
	}
	if w := postFeedback(r, uuid.NewString(), `{"value":1}`, "alice"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown log: %d", w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs/"+l.ID+"/feedback", nil))
	var sum FeedbackSummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil || sum.Up != 1 || sum.Down != 1 {
		t.Fatalf("summary = %+v (%v) body=%s", sum, err, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs/missing/feedback", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("summary unknown: %d", w.Code)
	}
}
