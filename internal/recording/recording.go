// Package recording orchestrates one capture job per guest visit: ledger
// record first, then the capture backend, then a best-effort signed URL.
package recording

import (
	"context"
	"errors"
	"time"
)

// ErrQuotaExhausted is returned (wrapped) by CaptureService implementations
// when the capture backend reports a resource-exhaustion condition, e.g. the
// egress minute quota is spent. Recording degrades for the rest of the cycle;
// the guest interaction continues.
var ErrQuotaExhausted = errors.New("capture quota exhausted")

// SignedURLTTL is the validity window for minted signed URLs.
const SignedURLTTL = 7 * 24 * time.Hour

// CaptureService starts and stops named capture jobs against the live room.
type CaptureService interface {
	StartJob(ctx context.Context, roomID, outputKey string) (jobID string, err error)
	StopJob(ctx context.Context, jobID string) error
}

// ObjectStore issues pre-signed URLs and confirms object existence for a
// capture job's output file.
type ObjectStore interface {
	SignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// LedgerRecord is the persisted identity of a capture job, created before
// the capture starts so the key and direct URL are stable regardless of
// later failures.
type LedgerRecord struct {
	ID        uint
	OutputKey string
	DirectURL string
}

// Ledger is the backend's persisted record of capture jobs.
type Ledger interface {
	CreateRecord(ctx context.Context, roomID string) (LedgerRecord, error)
	MarkCompleted(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, reason string) error
	SetGuestName(ctx context.Context, id uint, name string) error
}

// Status is a RecordingJob's lifecycle state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusRecording   Status = "recording"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusUnavailable Status = "unavailable"
)

// Job describes one capture job. A nil SignedURL is normal; consumers fall
// back to DirectURL.
type Job struct {
	JobID     string
	LedgerID  uint
	OutputKey string
	DirectURL string
	SignedURL string
	Status    Status
}

// Live reports whether the capture backend is running this job.
func (j *Job) Live() bool {
	return j != nil && j.JobID != "" && j.Status == StatusRecording
}
