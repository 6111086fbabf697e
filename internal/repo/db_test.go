package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/faq-chat-backend/internal/domain"
)

func openTempDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "chat_history.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestOpenSQLite_MissingDirectory(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nope", "chat.db"))
	if db != nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("db=%v err=%v; want ErrNotExist", db, err)
	}
}

func TestSqliteDSN(t *testing.T) {
	dsn := sqliteDSN("data/chat.db")
	if !strings.HasPrefix(dsn, "data/chat.db?") {
		t.Fatalf("dsn = %q", dsn)
	}
	if n := strings.Count(dsn, "_pragma="); n != len(sqlitePragmas) {
		t.Fatalf("pragma params = %d; want %d", n, len(sqlitePragmas))
	}
}

func TestOpenSQLite_PragmasOnEveryConnection(t *testing.T) {
	db := openTempDB(t)
	sqlDB, _ := db.DB()

	// Hold one connection so the next query is served by a second one.
	conn, err := sqlDB.Conn(context.Background())
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	defer conn.Close()

	want := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	}
	for pragma, v := range want {
		var got string
		if err := conn.QueryRowContext(context.Background(), "PRAGMA "+pragma).Scan(&got); err != nil {
			t.Fatalf("held conn %s: %v", pragma, err)
		}
		if strings.ToLower(got) != v {
			t.Fatalf("held conn %s = %q; want %q", pragma, got, v)
		}
		if err := db.Raw("PRAGMA " + pragma).Row().Scan(&got); err != nil {
			t.Fatalf("pool %s: %v", pragma, err)
		}
		if strings.ToLower(got) != v {
			t.Fatalf("pool %s = %q; want %q", pragma, got, v)
		}
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != maxOpenConns {
		t.Fatalf("MaxOpenConnections = %d", got)
	}
}

func TestAutoMigrate_SchemaEnforcesFeedbackRules(t *testing.T) {
	db := openTempDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, m := range []any{&domain.ChatLog{}, &domain.LogFeedback{}, &domain.Idempotency{}} {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}

	now := time.Now().UTC()
	if err := db.Create(&domain.ChatLog{ID: "log-1", Question: "환불 되나요?", Answer: "네", Found: true, CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		t.Fatalf("insert log: %v", err)
	}

	cases := []struct {
		name    string
		fb      domain.LogFeedback
		wantErr bool
	}{
		{"valid", domain.LogFeedback{ID: "f1", ChatLogID: "log-1", UserID: "u1", Value: 1}, false},
		{"second user", domain.LogFeedback{ID: "f2", ChatLogID: "log-1", UserID: "u2", Value: -1}, false},
		{"duplicate user", domain.LogFeedback{ID: "f3", ChatLogID: "log-1", UserID: "u1", Value: -1}, true},
		{"value out of range", domain.LogFeedback{ID: "f4", ChatLogID: "log-1", UserID: "u3", Value: 2}, true},
		{"unknown log", domain.LogFeedback{ID: "f5", ChatLogID: "missing", UserID: "u4", Value: 1}, true},
	}
	for _, tc := range cases {
		err := db.Create(&tc.fb).Error
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err = %v; wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}
