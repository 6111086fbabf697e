package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func migratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ChatLog{}, &LogFeedback{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestIdempotency_UniquePerUserScopeKey(t *testing.T) {
	db := migratedDB(t)
	if !db.Migrator().HasIndex(&Idempotency{}, "ux_user_scope_key") {
		t.Fatalf("missing ux_user_scope_key")
	}

	exp := time.Now().UTC().Add(time.Hour)
	rec := func(id, user, scope, key string) *Idempotency {
		return &Idempotency{ID: id, UserID: user, Scope: scope, Key: key, ChatLogID: "log-" + id, Status: 200, ExpiresAt: exp}
	}
	cases := []struct {
		name    string
		row     *Idempotency
		wantErr bool
	}{
		{"first", rec("1", "u1", "/api/chat", "k"), false},
		{"other scope", rec("2", "u1", "/api/logs/:id/feedback", "k"), false},
		{"other user", rec("3", "u2", "/api/chat", "k"), false},
		{"repeat", rec("4", "u1", "/api/chat", "k"), true},
	}
	for _, tc := range cases {
		if err := db.Create(tc.row).Error; (err != nil) != tc.wantErr {
			t.Fatalf("%s: err = %v; wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestIdempotency_RequiredColumns(t *testing.T) {
	db := migratedDB(t)
	cols := []string{"user_id", "scope", "key", "chat_log_id", "status", "expires_at"}
	for i, col := range cols {
		row := map[string]any{
			"id": "row", "user_id": "u", "scope": "/api/chat", "key": "k",
			"chat_log_id": "l", "status": 200, "created_at": time.Now(), "expires_at": time.Now(),
		}
		row["id"] = col
		row[col] = nil
		if err := db.Table(Idempotency{}.TableName()).Create(row).Error; err == nil {
			t.Fatalf("case %d: NULL %s accepted", i, col)
		}
	}
}

func TestChatLog_NullableMatchFields(t *testing.T) {
	db := migratedDB(t)
	refusal := &ChatLog{ID: "l1", Question: "날씨 어때?", Answer: "제공된 Q&A 데이터에서 적절한 답변을 찾지 못했습니다."}
	if err := db.Create(refusal).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var got ChatLog
	if err := db.First(&got, "id = ?", "l1").Error; err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.SourceQuestion != nil || got.Score != nil || got.Found {
		t.Fatalf("empty match must stay null: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not set by gorm")
	}
}
