package estimation

import (
	"math"
	"time"

	"github.com/tecace/axpro-metrics/internal/aggregates"
)

const (
	weeklyAmplitude = 0.02
	weeklyPeriod    = 7
)

// WeeklyCycle is the deterministic weekly term of the improved strategy for
// the day index days before the window end.
func WeeklyCycle(index int) float64 {
	return math.Sin(2*math.Pi*float64(index)/weeklyPeriod) * weeklyAmplitude
}

// Improved narrows the random draw to ±4% and adds a weekly sine term.
// Safety metrics move at half the rate, length and tone at 1.2x.
type Improved struct {
	rng aggregates.Rand
}

func (s Improved) Estimate(base aggregates.DailyRow, date time.Time, index int) aggregates.DailyRow {
	v := noise(s.rng, 0.08) + WeeklyCycle(index)
	return estimated(date, aggregates.DailyRow{
		Toxicity:          base.Toxicity + v*0.5,
		PromptInjection:   base.PromptInjection + v*0.5,
		AnswerCorrectness: base.AnswerCorrectness + v,
		AnswerRelevancy:   base.AnswerRelevancy + v,
		Length:            base.Length + v*1.2,
		Tone:              base.Tone + v*1.2,
	})
}
