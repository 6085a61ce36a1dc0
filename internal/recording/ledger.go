package recording

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raheva/mirror/internal/models"
	"gorm.io/gorm"
)

// GormLedger persists capture job records as VideoRecording rows.
type GormLedger struct {
	db      *gorm.DB
	baseURL string
	now     func() time.Time
}

// GormLedgerOpts holds parameters for creating a GormLedger.
type GormLedgerOpts struct {
	DB *gorm.DB
	// BaseURL is the object store's public prefix, e.g.
	// "https://bucket.s3.me-central-1.amazonaws.com". Direct URLs are
	// BaseURL + "/" + key.
	BaseURL string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewGormLedger creates a ledger.
func NewGormLedger(opts GormLedgerOpts) (*GormLedger, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("recording: ledger: db is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &GormLedger{
		db:      opts.DB,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		now:     now,
	}, nil
}

// OutputKey derives the object key for a capture started at t in roomID.
// Keys are namespaced by timestamp, not guest name: names may be empty,
// duplicated, or unsafe for keys.
func OutputKey(t time.Time, roomID string) string {
	room := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, roomID)
	return fmt.Sprintf("recordings/%s_%s.mp4", t.Format("20060102_150405"), room)
}

// CreateRecord inserts a pending ledger row and returns its identity. The
// direct URL is computed here, before any capture call, so it stays stable.
func (l *GormLedger) CreateRecord(ctx context.Context, roomID string) (LedgerRecord, error) {
	key := OutputKey(l.now().UTC(), roomID)
	directURL := key
	if l.baseURL != "" {
		directURL = l.baseURL + "/" + key
	}

	row := models.VideoRecording{
		Filename: key,
		RoomName: roomID,
		VideoURL: directURL,
		Status:   models.RecordingStatusRecording,
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return LedgerRecord{}, fmt.Errorf("recording: create ledger record: %w", err)
	}
	return LedgerRecord{ID: row.ID, OutputKey: key, DirectURL: directURL}, nil
}

// MarkCompleted transitions the row to completed.
func (l *GormLedger) MarkCompleted(ctx context.Context, id uint) error {
	now := l.now().UTC()
	result := l.db.WithContext(ctx).Model(&models.VideoRecording{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.RecordingStatusCompleted,
			"completed_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("recording: mark completed %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recording: mark completed %d: no such record", id)
	}
	return nil
}

// MarkFailed transitions the row to failed with a reason.
func (l *GormLedger) MarkFailed(ctx context.Context, id uint, reason string) error {
	if len(reason) > 256 {
		reason = reason[:256]
	}
	result := l.db.WithContext(ctx).Model(&models.VideoRecording{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.RecordingStatusFailed,
			"fail_reason": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("recording: mark failed %d: %w", id, result.Error)
	}
	return nil
}

// SetGuestName attaches a guest name to the row.
func (l *GormLedger) SetGuestName(ctx context.Context, id uint, name string) error {
	result := l.db.WithContext(ctx).Model(&models.VideoRecording{}).
		Where("id = ?", id).
		Update("guest_name", name)
	if result.Error != nil {
		return fmt.Errorf("recording: set guest name %d: %w", id, result.Error)
	}
	return nil
}
