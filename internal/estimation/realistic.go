package estimation

import (
	"time"

	"github.com/tecace/axpro-metrics/internal/aggregates"
)

const (
	trendPerDay   = 0.005
	weekendFactor = 0.95

	safetyBand  = 0.03
	qualityBand = 0.06
	styleBand   = 0.10
)

// Realistic decays the base row with distance from its date, dampens quality
// on weekends and draws per-group noise: ±1.5% for toxicity and prompt
// injection, ±3% for correctness and relevancy, ±5% for length and tone.
type Realistic struct {
	rng aggregates.Rand
}

func (s Realistic) Estimate(base aggregates.DailyRow, date time.Time, index int) aggregates.DailyRow {
	trend := TrendFactor(base, date, index)
	weekend := WeekendFactor(date)

	safety := noise(s.rng, safetyBand)
	quality := noise(s.rng, qualityBand)
	style := noise(s.rng, styleBand)

	return estimated(date, aggregates.DailyRow{
		Toxicity:          base.Toxicity*trend*weekend + safety,
		PromptInjection:   base.PromptInjection*trend*weekend + safety,
		AnswerCorrectness: base.AnswerCorrectness*trend*weekend + quality,
		AnswerRelevancy:   base.AnswerRelevancy*trend*weekend + quality,
		Length:            base.Length*trend + style,
		Tone:              base.Tone*trend + style,
	})
}

// TrendFactor is 1 - 0.005 per day between date and the base row's date.
// An undated base row (the default baseline) measures from the window end.
func TrendFactor(base aggregates.DailyRow, date time.Time, index int) float64 {
	days := index
	if baseDate, err := aggregates.ParseDate(base.Date); err == nil {
		days = int(aggregates.Day(date).Sub(baseDate).Hours() / 24)
	}
	if days < 0 {
		days = -days
	}
	return 1 - float64(days)*trendPerDay
}

// WeekendFactor is 0.95 on Saturdays and Sundays, 1 otherwise.
func WeekendFactor(date time.Time) float64 {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return weekendFactor
	default:
		return 1
	}
}
