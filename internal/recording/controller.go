package recording

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/raheva/mirror/internal/notify"
)

// Controller owns the live capture job for a kiosk. At most one job is live
// at a time; SessionController only ever calls Start and Stop.
type Controller struct {
	capture  CaptureService
	store    ObjectStore
	ledger   Ledger
	notifier notify.Notifier
	roomID   string

	mu  sync.Mutex
	job *Job
}

// ControllerOpts holds parameters for creating a Controller.
type ControllerOpts struct {
	Capture  CaptureService
	Store    ObjectStore // optional: without it no signed URLs are minted
	Ledger   Ledger
	Notifier notify.Notifier // optional operator notifications
	RoomID   string
}

// NewController creates a Controller.
func NewController(opts ControllerOpts) (*Controller, error) {
	if opts.Capture == nil {
		return nil, fmt.Errorf("recording: capture service is required")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("recording: ledger is required")
	}
	if opts.RoomID == "" {
		return nil, fmt.Errorf("recording: room id is required")
	}
	return &Controller{
		capture:  opts.Capture,
		store:    opts.Store,
		ledger:   opts.Ledger,
		notifier: opts.Notifier,
		roomID:   opts.RoomID,
	}, nil
}

// Start begins a capture job for the current guest visit. It never returns
// an error to the caller: any failure degrades to a nil job ("no recording")
// and the guest interaction proceeds. Calling Start while a job is live is a
// defensive no-op returning the existing job.
func (c *Controller) Start(ctx context.Context) *Job {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job.Live() {
		log.Printf("recording: start ignored, job %s already live", c.job.JobID)
		return c.job
	}

	// Ledger record first: the output key and direct URL must be stable
	// even if the capture call below fails.
	rec, err := c.ledger.CreateRecord(ctx, c.roomID)
	if err != nil {
		log.Printf("recording: create ledger record: %v", err)
		return nil
	}

	job := &Job{
		LedgerID:  rec.ID,
		OutputKey: rec.OutputKey,
		DirectURL: rec.DirectURL,
		Status:    StatusPending,
	}

	jobID, err := c.capture.StartJob(ctx, c.roomID, rec.OutputKey)
	if err != nil {
		if errors.Is(err, ErrQuotaExhausted) {
			log.Printf("recording: capture quota exhausted, recording unavailable: %v", err)
			job.Status = StatusUnavailable
			c.notifyBestEffort(ctx, notify.Event{
				Title:    "Recording unavailable",
				Body:     "Capture quota exhausted; guest sessions continue without recording.",
				Severity: notify.SeverityWarning,
			})
		} else {
			log.Printf("recording: start capture job: %v", err)
			job.Status = StatusFailed
		}
		c.markFailedBestEffort(ctx, rec.ID, err)
		return nil
	}

	job.JobID = jobID
	job.Status = StatusRecording

	// Signed URL is best-effort; consumers fall back to the direct URL.
	if c.store != nil {
		signed, err := c.store.SignURL(ctx, rec.OutputKey, SignedURLTTL)
		if err != nil {
			log.Printf("recording: sign url for %s: %v", rec.OutputKey, err)
		} else {
			job.SignedURL = signed
		}
	}

	c.job = job
	log.Printf("recording: job %s started (key=%s ledger=%d)", jobID, rec.OutputKey, rec.ID)
	return job
}

// Stop ends the live capture job. Returns false when there is nothing to
// stop, which is not an error. Ledger completion is best-effort: the
// recording already happened.
func (c *Controller) Stop(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.job.Live() {
		return false
	}
	job := c.job

	if err := c.capture.StopJob(ctx, job.JobID); err != nil {
		log.Printf("recording: stop capture job %s: %v", job.JobID, err)
		c.job = nil
		return false
	}

	if err := c.ledger.MarkCompleted(ctx, job.LedgerID); err != nil {
		log.Printf("recording: mark ledger record %d completed: %v", job.LedgerID, err)
	}

	url := job.SignedURL
	if url == "" {
		url = job.DirectURL
	}
	c.notifyBestEffort(ctx, notify.Event{
		Title:    "Recording completed",
		Body:     fmt.Sprintf("Guest recording saved: %s", url),
		Severity: notify.SeverityInfo,
	})

	log.Printf("recording: job %s stopped (ledger=%d)", job.JobID, job.LedgerID)
	c.job = nil
	return true
}

// TagGuest attaches the learned guest name to the live job's ledger record,
// best-effort.
func (c *Controller) TagGuest(ctx context.Context, name string) {
	c.mu.Lock()
	job := c.job
	c.mu.Unlock()

	if !job.Live() || name == "" {
		return
	}
	if err := c.ledger.SetGuestName(ctx, job.LedgerID, name); err != nil {
		log.Printf("recording: tag guest on ledger record %d: %v", job.LedgerID, err)
	}
}

// Active reports whether a capture job is live.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job.Live()
}

// Current returns the live job, or nil.
func (c *Controller) Current() *Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job
}

func (c *Controller) markFailedBestEffort(ctx context.Context, id uint, cause error) {
	if err := c.ledger.MarkFailed(ctx, id, cause.Error()); err != nil {
		log.Printf("recording: mark ledger record %d failed: %v", id, err)
	}
}

func (c *Controller) notifyBestEffort(ctx context.Context, ev notify.Event) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, ev); err != nil {
		log.Printf("recording: notify: %v", err)
	}
}
