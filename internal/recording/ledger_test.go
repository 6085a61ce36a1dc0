package recording

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/raheva/mirror/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.VideoRecording{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 14, 19, 15, 0, 0, time.UTC)
}

func TestOutputKey(t *testing.T) {
	key := OutputKey(fixedClock(), "mirror-room")
	want := "recordings/20250614_191500_mirror-room.mp4"
	if key != want {
		t.Errorf("key = %q, want %q", key, want)
	}
}

func TestOutputKey_SanitizesRoomName(t *testing.T) {
	key := OutputKey(fixedClock(), "room with spaces/slash")
	if strings.ContainsAny(key[len("recordings/"):], " /") {
		t.Errorf("key = %q, room part should be sanitized", key)
	}
}

func TestCreateRecord(t *testing.T) {
	db := openLedgerTestDB(t)
	ledger, err := NewGormLedger(GormLedgerOpts{
		DB:      db,
		BaseURL: "https://media.example.com/",
		Now:     fixedClock,
	})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	rec, err := ledger.CreateRecord(context.Background(), "mirror-room")
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected a record id")
	}
	wantURL := "https://media.example.com/recordings/20250614_191500_mirror-room.mp4"
	if rec.DirectURL != wantURL {
		t.Errorf("direct url = %q, want %q", rec.DirectURL, wantURL)
	}

	var row models.VideoRecording
	if err := db.First(&row, rec.ID).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Status != models.RecordingStatusRecording {
		t.Errorf("status = %q, want %q", row.Status, models.RecordingStatusRecording)
	}
	if row.RoomName != "mirror-room" {
		t.Errorf("room = %q, want mirror-room", row.RoomName)
	}
}

func TestMarkCompleted(t *testing.T) {
	db := openLedgerTestDB(t)
	ledger, _ := NewGormLedger(GormLedgerOpts{DB: db, Now: fixedClock})

	rec, err := ledger.CreateRecord(context.Background(), "mirror-room")
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := ledger.MarkCompleted(context.Background(), rec.ID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	var row models.VideoRecording
	db.First(&row, rec.ID)
	if row.Status != models.RecordingStatusCompleted {
		t.Errorf("status = %q, want completed", row.Status)
	}
	if row.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestMarkCompleted_MissingRecord(t *testing.T) {
	db := openLedgerTestDB(t)
	ledger, _ := NewGormLedger(GormLedgerOpts{DB: db})
	if err := ledger.MarkCompleted(context.Background(), 9999); err == nil {
		t.Error("expected error for unknown record")
	}
}

func TestMarkFailedAndGuestName(t *testing.T) {
	db := openLedgerTestDB(t)
	ledger, _ := NewGormLedger(GormLedgerOpts{DB: db, Now: fixedClock})

	rec, err := ledger.CreateRecord(context.Background(), "mirror-room")
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := ledger.MarkFailed(context.Background(), rec.ID, "egress minutes exceeded"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := ledger.SetGuestName(context.Background(), rec.ID, "Sam Parker"); err != nil {
		t.Fatalf("set guest name: %v", err)
	}

	var row models.VideoRecording
	db.First(&row, rec.ID)
	if row.Status != models.RecordingStatusFailed {
		t.Errorf("status = %q, want failed", row.Status)
	}
	if row.FailReason != "egress minutes exceeded" {
		t.Errorf("fail reason = %q", row.FailReason)
	}
	if row.GuestName != "Sam Parker" {
		t.Errorf("guest name = %q, want Sam Parker", row.GuestName)
	}
}
