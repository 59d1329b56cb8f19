package aggregates

// Summary holds the per-metric averages of a sequence.
type Summary struct {
	Days              int     `json:"days"`
	RealDays          int     `json:"realDays"`
	Toxicity          float64 `json:"toxicity"`
	PromptInjection   float64 `json:"promptInjection"`
	AnswerCorrectness float64 `json:"answerCorrectness"`
	AnswerRelevancy   float64 `json:"answerRelevancy"`
	Length            float64 `json:"length"`
	Tone              float64 `json:"tone"`
}

// Summarize averages every metric over rows. An empty input yields zeros.
func Summarize(rows []DailyRow) Summary {
	s := Summary{Days: len(rows)}
	if len(rows) == 0 {
		return s
	}
	for _, r := range rows {
		if !r.IsEstimated {
			s.RealDays++
		}
		s.Toxicity += r.Toxicity
		s.PromptInjection += r.PromptInjection
		s.AnswerCorrectness += r.AnswerCorrectness
		s.AnswerRelevancy += r.AnswerRelevancy
		s.Length += r.Length
		s.Tone += r.Tone
	}
	n := float64(len(rows))
	s.Toxicity /= n
	s.PromptInjection /= n
	s.AnswerCorrectness /= n
	s.AnswerRelevancy /= n
	s.Length /= n
	s.Tone /= n
	return s
}
