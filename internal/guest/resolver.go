package guest

import (
	"context"
	"fmt"
	"strings"
)

// Strategy names reported with a match, for diagnostics.
const (
	StrategyFullName     = "full_name"
	StrategyExactToken   = "exact_token"
	StrategyPartialToken = "partial_token"
	StrategyPhrase       = "phrase_substring"
)

// Match is a successful resolution: the record plus which strategy found it.
type Match struct {
	Record   Record
	Strategy string
}

// Resolver converts a free-text spoken name into a directory record. The
// strategy chain is fixed; each strategy is tried fully before falling to
// the next, and the first hit wins. A nil Match with a nil error means the
// guest is a surprise guest, which is a normal outcome.
type Resolver struct {
	dir Directory
}

// NewResolver creates a Resolver over the given directory.
func NewResolver(dir Directory) (*Resolver, error) {
	if dir == nil {
		return nil, fmt.Errorf("guest: resolver: directory is required")
	}
	return &Resolver{dir: dir}, nil
}

// Resolve runs the strategy chain for the spoken name.
func (r *Resolver) Resolve(ctx context.Context, spoken string) (*Match, error) {
	records, err := r.dir.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("guest: directory snapshot: %w", err)
	}

	name := normalize(spoken)
	if name == "" {
		return nil, nil
	}
	tokens := strings.Fields(name)

	if m := matchFullName(records, tokens, name); m != nil {
		return m, nil
	}
	if m := matchExactToken(records, tokens); m != nil {
		return m, nil
	}
	if m := matchPartialToken(records, tokens); m != nil {
		return m, nil
	}
	if m := matchPhrase(records, name); m != nil {
		return m, nil
	}
	return nil, nil
}

// matchFullName tries "first last", "last first", and the raw input against
// the concatenated name in both orders.
func matchFullName(records []Record, tokens []string, name string) *Match {
	if len(tokens) < 2 {
		return nil
	}
	queries := []string{
		tokens[0] + " " + tokens[1],
		tokens[1] + " " + tokens[0],
		name,
	}
	for _, q := range queries {
		for _, rec := range records {
			first := strings.ToLower(strings.TrimSpace(rec.FirstName))
			last := strings.ToLower(strings.TrimSpace(rec.LastName))
			if first+" "+last == q || last+" "+first == q {
				return &Match{Record: rec, Strategy: StrategyFullName}
			}
		}
	}
	return nil
}

// matchExactToken checks each token for equality against first or last name.
func matchExactToken(records []Record, tokens []string) *Match {
	for _, tok := range tokens {
		for _, rec := range records {
			if strings.EqualFold(strings.TrimSpace(rec.FirstName), tok) ||
				strings.EqualFold(strings.TrimSpace(rec.LastName), tok) {
				return &Match{Record: rec, Strategy: StrategyExactToken}
			}
		}
	}
	return nil
}

// matchPartialToken checks tokens of length >= 3 against name fields. A name
// starting with the token ranks before one merely containing it, and a
// first-name prefix ranks before a last-name prefix.
func matchPartialToken(records []Record, tokens []string) *Match {
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		for _, rec := range records {
			if strings.HasPrefix(strings.ToLower(rec.FirstName), tok) {
				return &Match{Record: rec, Strategy: StrategyPartialToken}
			}
		}
		for _, rec := range records {
			if strings.HasPrefix(strings.ToLower(rec.LastName), tok) {
				return &Match{Record: rec, Strategy: StrategyPartialToken}
			}
		}
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.FirstName), tok) ||
				strings.Contains(strings.ToLower(rec.LastName), tok) {
				return &Match{Record: rec, Strategy: StrategyPartialToken}
			}
		}
	}
	return nil
}

// matchPhrase checks the whole cleaned input as a substring of the
// concatenated full name in either name order.
func matchPhrase(records []Record, name string) *Match {
	for _, rec := range records {
		first := strings.ToLower(rec.FirstName)
		last := strings.ToLower(rec.LastName)
		if strings.Contains(first+" "+last, name) || strings.Contains(last+" "+first, name) {
			return &Match{Record: rec, Strategy: StrategyPhrase}
		}
	}
	return nil
}
