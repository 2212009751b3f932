package model

import "time"

// TemporalType classifies a relative-date phrase found in a query.
type TemporalType string

const (
	// TemporalNone means no relative-date vocabulary was found.
	TemporalNone TemporalType = "none"
	// TemporalToday covers "today" and "tonight".
	TemporalToday     TemporalType = "today"
	TemporalTomorrow  TemporalType = "tomorrow"
	TemporalYesterday TemporalType = "yesterday"
	TemporalThisWeek  TemporalType = "this_week"
	TemporalNextWeek  TemporalType = "next_week"
	TemporalLastWeek  TemporalType = "last_week"
	TemporalThisMonth TemporalType = "this_month"
	TemporalNextMonth TemporalType = "next_month"
	TemporalLastMonth TemporalType = "last_month"
)

// TemporalIntent is the structured result of temporal phrase extraction.
// Start and End are inclusive day boundaries and are nil iff Type is
// TemporalNone. Recomputed per query, never persisted.
type TemporalIntent struct {
	Start         *time.Time
	End           *time.Time
	Type          TemporalType
	OriginalQuery string
	CleanedQuery  string
}

// HasRange reports whether a concrete date range was resolved.
func (t TemporalIntent) HasRange() bool {
	return t.Type != TemporalNone && t.Start != nil && t.End != nil
}
