package aggregates

// Filter returns rows unchanged when includeEstimated is set, otherwise a new
// slice holding only the real rows in their original order.
func Filter(rows []DailyRow, includeEstimated bool) []DailyRow {
	if includeEstimated {
		return rows
	}
	out := make([]DailyRow, 0, len(rows))
	for _, row := range rows {
		if !row.IsEstimated {
			out = append(out, row)
		}
	}
	return out
}
