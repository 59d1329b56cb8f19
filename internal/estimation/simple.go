package estimation

import (
	"time"

	"github.com/tecace/axpro-metrics/internal/aggregates"
)

// Simple shifts every metric of the base row by the same uniform ±5% draw.
type Simple struct {
	rng aggregates.Rand
}

func (s Simple) Estimate(base aggregates.DailyRow, date time.Time, _ int) aggregates.DailyRow {
	v := noise(s.rng, 0.1)
	return estimated(date, aggregates.DailyRow{
		Toxicity:          base.Toxicity + v,
		PromptInjection:   base.PromptInjection + v,
		AnswerCorrectness: base.AnswerCorrectness + v,
		AnswerRelevancy:   base.AnswerRelevancy + v,
		Length:            base.Length + v,
		Tone:              base.Tone + v,
	})
}
