package models

import "time"

// Recording lifecycle statuses.
const (
	RecordingStatusPending     = "pending"
	RecordingStatusRecording   = "recording"
	RecordingStatusCompleted   = "completed"
	RecordingStatusFailed      = "failed"
	RecordingStatusUnavailable = "unavailable"
)

// VideoRecording is the ledger row for one capture job. The row is created
// before the capture starts so the output key and direct URL are stable even
// when the capture call later fails.
type VideoRecording struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Filename    string `gorm:"size:256;not null"`
	RoomName    string `gorm:"size:128;index"`
	GuestName   string `gorm:"size:200"`
	EgressID    string `gorm:"size:64"`
	VideoURL    string `gorm:"size:512"`
	Status      string `gorm:"size:16;default:pending;index"`
	FailReason  string `gorm:"size:256"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
