package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/faq-chat-backend/internal/domain"
)

func newChatLogDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("chatlog_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedLogs(t *testing.T, db *gorm.DB, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := CreateChatLog(context.Background(), db, domain.ChatLog{
			ID:        fmt.Sprintf("l%02d", i),
			Question:  fmt.Sprintf("q%d", i),
			Answer:    "a",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
}

func TestCreateChatLog_Error_NoTable(t *testing.T) {
	db := newChatLogDB(t /* no migrations */)
	l, err := CreateChatLog(context.Background(), db, domain.ChatLog{Question: "q", Answer: "a"})
	if err == nil || l != nil {
		t.Fatalf("expected error creating without table, got log=%v err=%v", l, err)
	}
}

func TestCreateChatLog_Success_AssignsIDAndTime(t *testing.T) {
	db := newChatLogDB(t, &domain.ChatLog{})
	src := "요금제가 어떻게 되나요?"
	score := 0.87

	start := time.Now().UTC().Add(-time.Minute)
	l, err := CreateChatLog(context.Background(), db, domain.ChatLog{
		Question:       "요금제?",
		RewrittenQuery: src,
		Answer:         "A",
		SourceQuestion: &src,
		Score:          &score,
		Found:          true,
	})
	if err != nil {
		t.Fatalf("CreateChatLog: %v", err)
	}
	if l.ID == "" || l.CreatedAt.Before(start) {
		t.Fatalf("expected generated id and fresh timestamp, got %+v", l)
	}

	got, err := GetChatLog(context.Background(), db, l.ID)
	if err != nil {
		t.Fatalf("GetChatLog: %v", err)
	}
	if got.Question != "요금제?" || got.RewrittenQuery != src || !got.Found || got.Score == nil || *got.Score != score {
		t.Fatalf("unexpected readback: %+v", got)
	}
}

func TestGetChatLog_NotFound(t *testing.T) {
	db := newChatLogDB(t, &domain.ChatLog{})
	_, err := GetChatLog(context.Background(), db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecentChatLogs_NewestFirstAndLimit(t *testing.T) {
	db := newChatLogDB(t, &domain.ChatLog{})
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedLogs(t, db, 5, base)

	out, err := ListRecentChatLogs(context.Background(), db, 3)
	if err != nil {
		t.Fatalf("ListRecentChatLogs: %v", err)
	}
	if len(out) != 3 || out[0].ID != "l04" || out[2].ID != "l02" {
		t.Fatalf("unexpected order/limit: %+v", out)
	}

	all, err := ListRecentChatLogs(context.Background(), db, 0)
	if err != nil || len(all) != 5 {
		t.Fatalf("expected all 5 rows with limit 0, got %d (%v)", len(all), err)
	}
}

func TestCountAndPage(t *testing.T) {
	db := newChatLogDB(t, &domain.ChatLog{})
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedLogs(t, db, 7, base)

	n, err := CountChatLogs(context.Background(), db)
	if err != nil || n != 7 {
		t.Fatalf("CountChatLogs = (%d, %v); want 7", n, err)
	}

	page, err := ListChatLogsPage(context.Background(), db, 5, 5)
	if err != nil {
		t.Fatalf("ListChatLogsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "l01" || page[1].ID != "l00" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}

func TestDeleteChatLogsBefore(t *testing.T) {
	db := newChatLogDB(t, &domain.ChatLog{}, &domain.LogFeedback{})
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedLogs(t, db, 4, base)

	n, err := DeleteChatLogsBefore(context.Background(), db, base.Add(2*time.Second))
	if err != nil || n != 2 {
		t.Fatalf("DeleteChatLogsBefore = (%d, %v); want (2, nil)", n, err)
	}
	left, _ := CountChatLogs(context.Background(), db)
	if left != 2 {
		t.Fatalf("expected 2 logs left, got %d", left)
	}
	// Hard delete: not even visible unscoped.
	var raw int64
	db.Unscoped().Model(&domain.ChatLog{}).Count(&raw)
	if raw != 2 {
		t.Fatalf("expected rows to be purged, unscoped count=%d", raw)
	}
}
