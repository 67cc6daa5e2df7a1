package symptom

import (
	"context"
	"strings"
)

// Matcher resolves a single raw mention.
type Matcher interface {
	Resolve(ctx context.Context, raw string) (Match, bool, error)
}

// Resolution is the outcome of resolving one request's entities.
type Resolution struct {
	// Confirmed canonical names in first-seen order, without duplicates
	Confirmed []string
	Matches   []Match

	// Pending is the last unresolved raw mention, nil when everything resolved
	Pending *string
}

// Resolver normalizes the raw entity list of a request.
type Resolver struct {
	matcher Matcher
}

func NewResolver(matcher Matcher) *Resolver {
	return &Resolver{matcher: matcher}
}

// Resolve processes entities sequentially in input order. Accepted matches are kept even after
// an unresolved one; when several are unresolved the last one wins. Blank entries are skipped.
// Any lookup failure aborts the whole batch.
func (r *Resolver) Resolve(ctx context.Context, entities []string) (Resolution, error) {
	res := Resolution{Confirmed: []string{}, Matches: []Match{}}
	seen := make(map[string]struct{}, len(entities))

	for _, raw := range entities {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		m, ok, err := r.matcher.Resolve(ctx, text)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			pending := text
			res.Pending = &pending
			continue
		}
		res.Matches = append(res.Matches, m)
		if _, dup := seen[m.Name]; dup {
			continue
		}
		seen[m.Name] = struct{}{}
		res.Confirmed = append(res.Confirmed, m.Name)
	}
	return res, nil
}
