package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/faq-chat-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestChatLogsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	_, _, err := ChatLogsStats(context.Background(), db)
	if err == nil {
		t.Fatalf("expected error due to missing chat_logs table")
	}
}

func TestChatLogsStats_Empty(t *testing.T) {
	db := newTestDB(t, &domain.ChatLog{})
	n, max, err := ChatLogsStats(context.Background(), db)
	if err != nil || n != 0 || max != nil {
		t.Fatalf("expected (0, nil, nil), got (%d, %v, %v)", n, max, err)
	}
}

func TestChatLogsStats_ReturnsCountAndLatest(t *testing.T) {
	db := newTestDB(t, &domain.ChatLog{})
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	for i := 0; i < 3; i++ {
		l := domain.ChatLog{
			ID:        fmt.Sprintf("l%d", i),
			Question:  "q",
			Answer:    "a",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&l).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, max, err := ChatLogsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("ChatLogsStats: %v", err)
	}
	if n != 3 || max == nil || !max.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected stats: n=%d max=%v", n, max)
	}
}
