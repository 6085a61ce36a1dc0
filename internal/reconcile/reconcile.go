// Package reconcile sweeps ledger rows left in the recording state by
// crashes or missed stop calls, settling them against the object store.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/raheva/mirror/internal/models"
	"github.com/raheva/mirror/internal/recording"
)

// StaleAfter is how old a recording-state row must be before the sweeper
// touches it. Younger rows may still be live jobs.
const StaleAfter = 2 * time.Hour

// Reconciler settles stale ledger rows: rows whose output file exists in the
// store become completed, the rest become failed.
type Reconciler struct {
	db    *gorm.DB
	store recording.ObjectStore
	now   func() time.Time
}

// NewReconciler builds a sweeper over the given ledger database and store.
func NewReconciler(db *gorm.DB, store recording.ObjectStore) (*Reconciler, error) {
	if db == nil {
		return nil, fmt.Errorf("reconcile: db is required")
	}
	if store == nil {
		return nil, fmt.Errorf("reconcile: object store is required")
	}
	return &Reconciler{db: db, store: store, now: time.Now}, nil
}

// Sweep settles every stale row once and returns how many rows it settled.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-StaleAfter)
	var stale []models.VideoRecording
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.RecordingStatusRecording, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, fmt.Errorf("reconcile: listing stale recordings: %w", err)
	}

	settled := 0
	for _, rec := range stale {
		if err := r.settle(ctx, rec); err != nil {
			log.Printf("reconcile: recording %d: %v", rec.ID, err)
			continue
		}
		settled++
	}
	if settled > 0 {
		log.Printf("reconcile: settled %d stale recording(s)", settled)
	}
	return settled, nil
}

func (r *Reconciler) settle(ctx context.Context, rec models.VideoRecording) error {
	exists, err := r.store.Exists(ctx, rec.Filename)
	if err != nil {
		return fmt.Errorf("checking output: %w", err)
	}

	updates := map[string]any{}
	if exists {
		now := r.now()
		updates["status"] = models.RecordingStatusCompleted
		updates["completed_at"] = &now
	} else {
		updates["status"] = models.RecordingStatusFailed
		updates["fail_reason"] = "output file never appeared in storage"
	}
	if err := r.db.WithContext(ctx).Model(&models.VideoRecording{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return nil
}

// Schedule registers the sweep on c with the given cron spec and returns the
// entry ID. The caller owns starting and stopping c.
func (r *Reconciler) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := r.Sweep(ctx); err != nil {
			log.Printf("reconcile: scheduled sweep failed: %v", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("reconcile: scheduling sweep: %w", err)
	}
	return id, nil
}
