package aggregates

import "time"

// DefaultWindowDays is the length of the dashboard's trailing window.
const DefaultWindowDays = 30

// Estimator produces one synthetic row for date from base. index is the
// number of days between date and the end of the window.
type Estimator interface {
	Estimate(base DailyRow, date time.Time, index int) DailyRow
}

// Anchor selects the last day of the window.
type Anchor int

const (
	// AnchorLatest ends the window at min(today, latest real date).
	AnchorLatest Anchor = iota
	// AnchorToday ends the window at today regardless of the sheet.
	AnchorToday
)

// ParseAnchor maps a configuration value to an Anchor. Unknown values
// resolve to AnchorLatest.
func ParseAnchor(s string) Anchor {
	if s == "today" {
		return AnchorToday
	}
	return AnchorLatest
}

// Builder assembles the trailing window of daily rows.
type Builder struct {
	Days   int
	Anchor Anchor
}

// NewBuilder returns a Builder for the default 30 day window.
func NewBuilder() Builder {
	return Builder{Days: DefaultWindowDays, Anchor: AnchorLatest}
}

// Build returns the window ending at the anchor day, using the real row for
// each date when one exists and asking estimator for the rest. The most
// recent real row, or DefaultBaseRow when there is none, seeds every
// estimate.
//
// When real already holds a full window's worth of rows it is returned
// sorted and untouched. Real rows outside the window are kept so no sheet
// record is ever dropped.
func (b Builder) Build(real []DailyRow, estimator Estimator, today time.Time) []DailyRow {
	days := b.Days
	if days <= 0 {
		days = DefaultWindowDays
	}

	sorted := SortRows(real)
	if len(sorted) >= days {
		return sorted
	}

	end := Day(today)
	base := DefaultBaseRow()
	if len(sorted) > 0 {
		base = sorted[len(sorted)-1]
		if b.Anchor == AnchorLatest {
			if latest, err := ParseDate(base.Date); err == nil && latest.Before(end) {
				end = latest
			}
		}
	}

	byDate := make(map[string]DailyRow, len(sorted))
	for _, row := range sorted {
		byDate[row.Date] = row
	}

	start := end.AddDate(0, 0, -(days - 1))
	startKey, endKey := FormatDate(start), FormatDate(end)

	out := make([]DailyRow, 0, days+len(sorted))
	for _, row := range sorted {
		if row.Date < startKey {
			out = append(out, row)
		}
	}
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i)
		key := FormatDate(date)
		if row, ok := byDate[key]; ok {
			out = append(out, row)
			continue
		}
		estimated := estimator.Estimate(base, date, i).Clamped()
		estimated.Date = key
		estimated.IsEstimated = true
		out = append(out, estimated)
	}
	for _, row := range sorted {
		if row.Date > endKey {
			out = append(out, row)
		}
	}
	return out
}
