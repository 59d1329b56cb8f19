// Package aggregates models the daily evaluation metrics shown on the
// dashboard and builds the trailing window of rows, estimating days the
// source sheet does not cover.
package aggregates

import (
	"sort"
	"time"
)

// DateLayout is the ISO calendar date format used as the row key.
const DateLayout = "2006-01-02"

// DailyRow is one calendar day's metric snapshot. Every metric lies in [0,1].
type DailyRow struct {
	Date              string  `json:"date"`
	Toxicity          float64 `json:"toxicity"`
	PromptInjection   float64 `json:"promptInjection"`
	AnswerCorrectness float64 `json:"answerCorrectness"`
	AnswerRelevancy   float64 `json:"answerRelevancy"`
	Length            float64 `json:"length"`
	Tone              float64 `json:"tone"`
	IsEstimated       bool    `json:"isEstimated"`
}

// DefaultBaseRow is the healthy baseline used when no real rows exist.
func DefaultBaseRow() DailyRow {
	return DailyRow{
		Toxicity:          0.8,
		PromptInjection:   0.85,
		AnswerCorrectness: 0.8,
		AnswerRelevancy:   0.85,
		Length:            0.7,
		Tone:              0.75,
	}
}

// Clamp limits v to [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamped returns a copy of r with every metric clamped to [0,1].
func (r DailyRow) Clamped() DailyRow {
	r.Toxicity = Clamp(r.Toxicity)
	r.PromptInjection = Clamp(r.PromptInjection)
	r.AnswerCorrectness = Clamp(r.AnswerCorrectness)
	r.AnswerRelevancy = Clamp(r.AnswerRelevancy)
	r.Length = Clamp(r.Length)
	r.Tone = Clamp(r.Tone)
	return r
}

// Day truncates t to midnight UTC of its calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a row date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as a row date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SortRows returns a date-ascending copy of rows. When two rows share a date
// the first one in input order wins.
func SortRows(rows []DailyRow) []DailyRow {
	out := make([]DailyRow, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.Date]; dup {
			continue
		}
		seen[row.Date] = struct{}{}
		out = append(out, row)
	}
	// Zero-padded ISO dates order lexically.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// CountEstimated returns how many rows are estimated and how many are real.
func CountEstimated(rows []DailyRow) (estimated, real int) {
	for _, row := range rows {
		if row.IsEstimated {
			estimated++
		} else {
			real++
		}
	}
	return estimated, real
}
