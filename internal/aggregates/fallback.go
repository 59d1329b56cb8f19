package aggregates

import "time"

// FallbackDays is the number of rows fabricated when the sheet is unusable.
const FallbackDays = 31

// Rand is the random source used for synthetic data.
type Rand interface {
	Float64() float64
}

// Fallback fabricates FallbackDays plausible rows ending today, all flagged
// estimated, so the dashboard always has something to draw.
func Fallback(today time.Time, rng Rand) []DailyRow {
	end := Day(today)
	rows := make([]DailyRow, 0, FallbackDays)
	for i := FallbackDays - 1; i >= 0; i-- {
		rows = append(rows, DailyRow{
			Date:              FormatDate(end.AddDate(0, 0, -i)),
			Toxicity:          rng.Float64()*0.3 + 0.7,
			PromptInjection:   rng.Float64()*0.2 + 0.8,
			AnswerCorrectness: rng.Float64()*0.2 + 0.8,
			AnswerRelevancy:   rng.Float64()*0.15 + 0.85,
			Length:            rng.Float64()*0.3 + 0.7,
			Tone:              rng.Float64()*0.25 + 0.75,
			IsEstimated:       true,
		})
	}
	return rows
}
