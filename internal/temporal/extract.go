// Package temporal extracts relative-date phrases from free-text queries.
package temporal

import (
	"regexp"
	"strings"
	"time"

	"github.com/keeperhq/keeper/internal/model"
)

// pattern pairs a compiled word-boundary expression with the temporal type
// it produces. Patterns are tried in order and the first match wins.
type pattern struct {
	re   *regexp.Regexp
	kind model.TemporalType
}

var patterns = []pattern{
	{regexp.MustCompile(`(?i)\b(?:today|tonight)\b`), model.TemporalToday},
	{regexp.MustCompile(`(?i)\btomorrow\b`), model.TemporalTomorrow},
	{regexp.MustCompile(`(?i)\byesterday\b`), model.TemporalYesterday},
	{regexp.MustCompile(`(?i)\bthis\s+week\b`), model.TemporalThisWeek},
	{regexp.MustCompile(`(?i)\bnext\s+week\b`), model.TemporalNextWeek},
	{regexp.MustCompile(`(?i)\blast\s+week\b`), model.TemporalLastWeek},
	{regexp.MustCompile(`(?i)\bthis\s+month\b`), model.TemporalThisMonth},
	{regexp.MustCompile(`(?i)\bnext\s+month\b`), model.TemporalNextMonth},
	{regexp.MustCompile(`(?i)\blast\s+month\b`), model.TemporalLastMonth},
}

var whitespace = regexp.MustCompile(`\s+`)

// Extract classifies any relative-date phrase in query and resolves it to
// an inclusive day-boundary range relative to now. Total and deterministic:
// when nothing matches, Type is none, both dates are nil and CleanedQuery
// equals the input.
func Extract(query string, now time.Time) model.TemporalIntent {
	intent := model.TemporalIntent{
		Type:          model.TemporalNone,
		OriginalQuery: query,
		CleanedQuery:  query,
	}

	for _, p := range patterns {
		loc := p.re.FindStringIndex(query)
		if loc == nil {
			continue
		}

		start, end := resolveRange(p.kind, now)
		intent.Type = p.kind
		intent.Start = &start
		intent.End = &end
		intent.CleanedQuery = clean(query[:loc[0]] + " " + query[loc[1]:])
		return intent
	}

	return intent
}

// resolveRange computes the calendar boundaries for a temporal type.
func resolveRange(kind model.TemporalType, now time.Time) (time.Time, time.Time) {
	switch kind {
	case model.TemporalToday:
		return dayRange(now)
	case model.TemporalTomorrow:
		return dayRange(now.AddDate(0, 0, 1))
	case model.TemporalYesterday:
		return dayRange(now.AddDate(0, 0, -1))
	case model.TemporalThisWeek:
		return weekRange(now)
	case model.TemporalNextWeek:
		return weekRange(now.AddDate(0, 0, 7))
	case model.TemporalLastWeek:
		return weekRange(now.AddDate(0, 0, -7))
	case model.TemporalThisMonth:
		return monthRange(now.Year(), now.Month(), now.Location())
	case model.TemporalNextMonth:
		// time.Date normalizes month 13 into January of the next year.
		return monthRange(now.Year(), now.Month()+1, now.Location())
	case model.TemporalLastMonth:
		return monthRange(now.Year(), now.Month()-1, now.Location())
	default:
		return dayRange(now)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func dayRange(t time.Time) (time.Time, time.Time) {
	return startOfDay(t), endOfDay(t)
}

// weekRange anchors the week to the day-of-week offset of t: the week
// containing t starts on the most recent Sunday.
func weekRange(t time.Time) (time.Time, time.Time) {
	weekStart := t.AddDate(0, 0, -int(t.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 6)
	return startOfDay(weekStart), endOfDay(weekEnd)
}

func monthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first, endOfDay(last)
}

// clean collapses whitespace left behind after removing a matched phrase.
func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
