// Package session implements the kiosk's activation state machine. One
// controller per kiosk instance; every dependency is injected, so handlers
// never reach for process globals.
package session

import (
	"context"

	"github.com/raheva/mirror/internal/guest"
	"github.com/raheva/mirror/internal/recording"
)

// Transcript speaker roles delivered by the dialogue runtime.
const (
	RoleGuest     = "guest"
	RoleAssistant = "assistant"
)

// Display is the narrow capability the session holds over the mirror
// surface. The broadcast hub satisfies it.
type Display interface {
	SetText(text string)
	Reset()
}

// Recorder is the capture lifecycle the session drives. Start degrades to
// nil when recording is unavailable; the session proceeds either way.
type Recorder interface {
	Start(ctx context.Context) *recording.Job
	Stop(ctx context.Context) bool
	TagGuest(ctx context.Context, name string)
}

// Resolver converts a spoken name into a directory match, or nil for a
// surprise guest.
type Resolver interface {
	Resolve(ctx context.Context, spoken string) (*guest.Match, error)
}

// Speech issues fire-and-forget instructions to the dialogue runtime. No
// acknowledgement is modeled.
type Speech interface {
	// Say speaks the given text verbatim.
	Say(text string)
	// Prompt asks the runtime to generate and speak a reply from
	// instructions.
	Prompt(instructions string)
}
