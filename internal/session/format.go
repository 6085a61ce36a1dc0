package session

import (
	"fmt"
	"strings"

	"github.com/raheva/mirror/internal/guest"
)

// ActivationCue is spoken the moment the mirror wakes.
const ActivationCue = "*Ding ding!*"

// FarewellLine is spoken as a session closes.
const FarewellLine = "Farewell, and enjoy the celebration!"

// WelcomeText renders the personalized display payload for a welcomed guest.
// The mirror frontend renders the spans directly.
func WelcomeText(name, coupleNames string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<span class="line fancy">Welcome, %s!</span>`, titleCase(name))
	if coupleNames != "" {
		fmt.Fprintf(&b, `<span class="line">We're so glad you're here to celebrate</span>`)
		fmt.Fprintf(&b, `<span class="line fancy">%s</span>`, coupleNames)
	}
	return b.String()
}

// GuestInfoLine summarizes a directory match for logs and diagnostics.
func GuestInfoLine(m *guest.Match) string {
	var parts []string
	parts = append(parts, m.Record.FullName())
	if m.Record.Relation != "" {
		parts = append(parts, m.Record.Relation)
	}
	if m.Record.TableNumber != "" {
		parts = append(parts, "Table "+m.Record.TableNumber)
	}
	return "Found guest: " + strings.Join(parts, ", ")
}

// SurpriseLine describes a guest missing from the directory. Not an error;
// walk-ins are expected.
func SurpriseLine(name string) string {
	return fmt.Sprintf("Guest %q not found in wedding list. They are a welcome surprise guest!", name)
}

func greetingInstructions(coupleNames string) string {
	var b strings.Builder
	b.WriteString("You are an enchanted wedding mirror. Greet the guest warmly in one or two sentences and ask for their name.")
	if coupleNames != "" {
		fmt.Fprintf(&b, " The celebration is for %s.", coupleNames)
	}
	return b.String()
}

// titleCase capitalizes each whitespace-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
