package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// DefaultWatchdogTimeout closes an activation after this much silence.
const DefaultWatchdogTimeout = 12 * time.Second

// Opts configures a session Controller.
type Opts struct {
	// WakePhrase activates the mirror when it appears anywhere in a guest
	// transcript, case-insensitively.
	WakePhrase string
	// CoupleNames appears in welcome text, e.g. "Maya & Daniel".
	CoupleNames string
	// WatchdogTimeout closes the session after this much guest silence.
	// Zero selects DefaultWatchdogTimeout.
	WatchdogTimeout time.Duration

	Display  Display
	Recorder Recorder
	Resolver Resolver
	// Speech is optional; a nil Speech drops all spoken output.
	Speech Speech
}

// Controller is the per-kiosk activation state machine. It is dormant until
// the wake phrase arrives, then holds the display and a recording job until
// the guest walks away and the inactivity watchdog fires.
type Controller struct {
	wakePhrase  string
	coupleNames string
	timeout     time.Duration

	display  Display
	recorder Recorder
	resolver Resolver
	speech   Speech

	mu        sync.Mutex
	activated bool
	welcomed  bool
	guestName string
	watchdog  *time.Timer
	gen       uint64
}

// NewController validates opts and returns a dormant controller.
func NewController(opts Opts) (*Controller, error) {
	if opts.WakePhrase == "" {
		return nil, fmt.Errorf("session: wake phrase is required")
	}
	if opts.Display == nil {
		return nil, fmt.Errorf("session: display is required")
	}
	if opts.Recorder == nil {
		return nil, fmt.Errorf("session: recorder is required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("session: resolver is required")
	}
	timeout := opts.WatchdogTimeout
	if timeout <= 0 {
		timeout = DefaultWatchdogTimeout
	}
	return &Controller{
		wakePhrase:  strings.ToLower(opts.WakePhrase),
		coupleNames: opts.CoupleNames,
		timeout:     timeout,
		display:     opts.Display,
		recorder:    opts.Recorder,
		resolver:    opts.Resolver,
		speech:      opts.Speech,
	}, nil
}

// OnTranscript handles one finished utterance. Guest speech containing the
// wake phrase activates (or reactivates) the session; any other guest speech
// while activated slides the inactivity window forward. Assistant speech is
// ignored so the mirror cannot keep itself awake.
func (c *Controller) OnTranscript(ctx context.Context, text, role string) {
	if role != RoleGuest {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.Contains(strings.ToLower(text), c.wakePhrase) {
		if c.activated {
			log.Printf("session: wake phrase while active, rebuilding session")
			c.stopWatchdogLocked()
			c.recorder.Stop(ctx)
		} else {
			log.Printf("session: wake phrase detected, activating")
		}
		c.activateLocked(ctx)
		return
	}
	if c.activated {
		c.armWatchdogLocked()
	}
}

// activateLocked tears nothing down; callers handle the previous cycle. It
// builds a fresh activation: reset display, new recording job, greeting,
// armed watchdog.
func (c *Controller) activateLocked(ctx context.Context) {
	c.activated = true
	c.welcomed = false
	c.guestName = ""

	c.display.Reset()
	if job := c.recorder.Start(ctx); job == nil {
		log.Printf("session: continuing without recording")
	}
	if c.speech != nil {
		c.speech.Say(ActivationCue)
		c.speech.Prompt(greetingInstructions(c.coupleNames))
	}
	c.armWatchdogLocked()
}

// OnGuestName handles the guest stating their name. The welcome runs at most
// once per activation; repeats are no-ops.
func (c *Controller) OnGuestName(ctx context.Context, spoken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.activated || c.welcomed {
		return
	}
	c.welcomed = true

	name := strings.TrimSpace(spoken)
	match, err := c.resolver.Resolve(ctx, name)
	if err != nil {
		log.Printf("session: guest lookup failed: %v", err)
		match = nil
	}
	if match != nil {
		name = match.Record.FullName()
		log.Printf("session: %s", GuestInfoLine(match))
	} else {
		log.Printf("session: %s", SurpriseLine(name))
	}
	c.guestName = name

	c.display.SetText(WelcomeText(name, c.coupleNames))
	c.recorder.TagGuest(ctx, name)
	c.armWatchdogLocked()
}

// Close ends the current activation, if any, and returns the controller to
// the dormant state. Safe to call while dormant.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked(ctx)
}

func (c *Controller) closeLocked(ctx context.Context) {
	if !c.activated {
		return
	}
	log.Printf("session: closing session for %q", c.guestName)
	c.stopWatchdogLocked()
	c.recorder.Stop(ctx)
	c.display.Reset()
	if c.speech != nil {
		c.speech.Say(FarewellLine)
	}
	c.activated = false
	c.welcomed = false
	c.guestName = ""
}

// armWatchdogLocked replaces the pending inactivity timer. The generation
// counter invalidates a timer that already fired and is waiting on the lock.
func (c *Controller) armWatchdogLocked() {
	c.stopWatchdogLocked()
	c.gen++
	gen := c.gen
	c.watchdog = time.AfterFunc(c.timeout, func() {
		c.watchdogFired(gen)
	})
}

func (c *Controller) stopWatchdogLocked() {
	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}
}

func (c *Controller) watchdogFired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || !c.activated {
		return
	}
	log.Printf("session: inactivity timeout, closing session")
	c.closeLocked(context.Background())
}

// Activated reports whether a session is in progress.
func (c *Controller) Activated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activated
}

// GuestName returns the welcomed guest's name, or "" before the welcome.
func (c *Controller) GuestName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guestName
}
