// Package resolve matches free-text entity names against live records.
package resolve

import (
	"fmt"
	"strings"

	"github.com/keeperhq/keeper/internal/common"
)

// Candidate is a record an entity name can resolve to.
type Candidate struct {
	ID   string
	Name string
}

// Strategy is a pluggable name-resolution algorithm. Implementations
// return common.ErrNotFound when no candidate matches.
type Strategy interface {
	Resolve(query string, candidates []Candidate) (*Candidate, error)
}

// stopwords are domain words stripped before matching so "savings account"
// and "my savings" both resolve to "My Savings Account".
var stopwords = map[string]struct{}{
	"account":  {},
	"accounts": {},
	"acct":     {},
	"my":       {},
	"the":      {},
	"fund":     {},
}

// ContainmentStrategy matches by bidirectional substring containment of
// normalized names. Deliberately permissive: false positives are preferred
// over failing to resolve. Ties break on exact normalized match, then
// shortest candidate name, then list order.
type ContainmentStrategy struct{}

// NewContainment returns the default resolution strategy.
func NewContainment() *ContainmentStrategy {
	return &ContainmentStrategy{}
}

// Resolve finds the best candidate for a free-text name.
func (s *ContainmentStrategy) Resolve(query string, candidates []Candidate) (*Candidate, error) {
	normQuery := Normalize(query)
	if normQuery == "" {
		return nil, fmt.Errorf("empty name %q: %w", query, common.ErrNotFound)
	}

	var best *Candidate
	bestLen := -1

	for i := range candidates {
		normName := Normalize(candidates[i].Name)
		if normName == "" {
			continue
		}

		if normName == normQuery {
			return &candidates[i], nil
		}

		if !strings.Contains(normName, normQuery) && !strings.Contains(normQuery, normName) {
			continue
		}

		if best == nil || len(normName) < bestLen {
			best = &candidates[i]
			bestLen = len(normName)
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no match for %q: %w", query, common.ErrNotFound)
	}
	return best, nil
}

// Normalize lowercases a name, strips domain stopwords and collapses
// whitespace.
func Normalize(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
