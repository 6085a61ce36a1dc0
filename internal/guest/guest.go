// Package guest resolves spoken guest names against the wedding directory.
package guest

import (
	"context"
	"strings"
)

// Record is an immutable projection of one directory row. The core only
// reads guest data, never mutates it.
type Record struct {
	FirstName   string
	LastName    string
	Phone       string
	TableNumber string
	Relation    string
	Message     string
	Story       string
	About       string
}

// FullName returns "First Last" with single-name records handled.
func (r Record) FullName() string {
	if r.FirstName == "" {
		return r.LastName
	}
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// Directory provides an ordered snapshot of the guest directory. The order
// is the resolver's tie-break: when several records satisfy the same
// strategy, the first one in the snapshot wins.
type Directory interface {
	Snapshot(ctx context.Context) ([]Record, error)
}

// normalize lowercases the input and collapses runs of whitespace. All
// matching is done on normalized text, which subsumes the lower/upper/title
// case variants the agent used to try one by one.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
