// Package notify delivers operator notifications (quota exhaustion, finished
// recordings) to chat platforms. Delivery is best-effort everywhere: a failed
// notification is logged by the caller, never surfaced to the guest flow.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Event severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Event is one operator notification.
type Event struct {
	Title    string
	Body     string
	Severity string
}

// Notifier delivers events to one platform.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Multi fans an event out to several notifiers. Each notifier is attempted;
// failures are logged and the first error is returned.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, ev Event) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			log.Printf("notify: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// format renders an event as a single chat message.
func format(ev Event) string {
	var b strings.Builder
	switch ev.Severity {
	case SeverityWarning:
		b.WriteString("⚠️ ")
	case SeverityError:
		b.WriteString("🚨 ")
	}
	b.WriteString("**")
	b.WriteString(ev.Title)
	b.WriteString("**")
	if ev.Body != "" {
		fmt.Fprintf(&b, "\n%s", ev.Body)
	}
	return b.String()
}
