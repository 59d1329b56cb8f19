package estimation

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/tecace/axpro-metrics/internal/aggregates"
)

const epsilon = 1e-9

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := aggregates.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func baseRow() aggregates.DailyRow {
	return aggregates.DailyRow{
		Date:              "2025-01-01",
		Toxicity:          0.9,
		PromptInjection:   0.8,
		AnswerCorrectness: 0.7,
		AnswerRelevancy:   0.6,
		Length:            0.5,
		Tone:              0.4,
	}
}

func metrics(r aggregates.DailyRow) []float64 {
	return []float64{r.Toxicity, r.PromptInjection, r.AnswerCorrectness, r.AnswerRelevancy, r.Length, r.Tone}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeSimple},
		{in: "simple", want: ModeSimple},
		{in: "improved", want: ModeImproved},
		{in: "realistic", want: ModeRealistic},
		{in: "Simple", wantErr: true},
		{in: "linear", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownMode) {
				t.Fatalf("ParseMode(%q): expected ErrUnknownMode, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseMode(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New("bogus", nil); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestStrategiesSharePostconditions(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	extremes := []aggregates.DailyRow{
		baseRow(),
		{Toxicity: 1, PromptInjection: 1, AnswerCorrectness: 1, AnswerRelevancy: 1, Length: 1, Tone: 1},
		{},
	}
	target := date(t, "2025-01-04")

	for _, mode := range Modes() {
		strategy, err := New(mode, rng)
		if err != nil {
			t.Fatalf("New(%s): %v", mode, err)
		}
		for _, base := range extremes {
			for i := 0; i < 200; i++ {
				row := strategy.Estimate(base, target, i%30)
				if !row.IsEstimated {
					t.Fatalf("%s: row not flagged estimated", mode)
				}
				if row.Date != "2025-01-04" {
					t.Fatalf("%s: expected date 2025-01-04, got %s", mode, row.Date)
				}
				for _, v := range metrics(row) {
					if v < 0 || v > 1 {
						t.Fatalf("%s: metric out of range: %v", mode, v)
					}
				}
			}
		}
	}
}

func TestSimpleAppliesOneVariationToAllMetrics(t *testing.T) {
	row := Simple{rng: fixedRand(0.75)}.Estimate(baseRow(), date(t, "2025-01-02"), 3)

	want := 0.025
	base := metrics(baseRow())
	for i, v := range metrics(row) {
		if math.Abs(v-base[i]-want) > epsilon {
			t.Fatalf("metric %d: expected shift %v, got %v", i, want, v-base[i])
		}
	}
}

func TestSimpleStaysWithinFivePercent(t *testing.T) {
	strategy := Simple{rng: rand.New(rand.NewPCG(1, 2))}
	for i := 0; i < 500; i++ {
		row := strategy.Estimate(baseRow(), date(t, "2025-01-02"), 0)
		if row.Toxicity < 0.85-epsilon || row.Toxicity > 0.95+epsilon {
			t.Fatalf("toxicity outside ±5%%: %v", row.Toxicity)
		}
	}
}

func TestWeeklyCycleIsDeterministic(t *testing.T) {
	if WeeklyCycle(0) != 0 {
		t.Fatalf("expected zero at index 0, got %v", WeeklyCycle(0))
	}
	for i := 0; i < 21; i++ {
		if math.Abs(WeeklyCycle(i)-WeeklyCycle(i+7)) > epsilon {
			t.Fatalf("cycle not periodic over 7 days at %d", i)
		}
		if math.Abs(WeeklyCycle(i)) > weeklyAmplitude+epsilon {
			t.Fatalf("amplitude exceeded at %d: %v", i, WeeklyCycle(i))
		}
	}
}

func TestImprovedWeightsMetricGroups(t *testing.T) {
	// fixedRand(0.5) removes the random term, leaving only the weekly cycle.
	index := 2
	v := WeeklyCycle(index)
	row := Improved{rng: fixedRand(0.5)}.Estimate(baseRow(), date(t, "2025-01-02"), index)
	base := baseRow()

	checks := []struct {
		name      string
		got, want float64
	}{
		{"toxicity", row.Toxicity, base.Toxicity + v*0.5},
		{"prompt injection", row.PromptInjection, base.PromptInjection + v*0.5},
		{"correctness", row.AnswerCorrectness, base.AnswerCorrectness + v},
		{"relevancy", row.AnswerRelevancy, base.AnswerRelevancy + v},
		{"length", row.Length, base.Length + v*1.2},
		{"tone", row.Tone, base.Tone + v*1.2},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > epsilon {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestRealisticWeekendScenario(t *testing.T) {
	saturday := date(t, "2025-01-04")
	if saturday.Weekday() != time.Saturday {
		t.Fatalf("fixture must be a Saturday, got %s", saturday.Weekday())
	}
	base := baseRow()
	trend := 1 - 3*trendPerDay
	centre := base.Toxicity * trend * weekendFactor

	row := Realistic{rng: fixedRand(0.5)}.Estimate(base, saturday, 1)
	if math.Abs(row.Toxicity-centre) > epsilon {
		t.Fatalf("expected toxicity %v, got %v", centre, row.Toxicity)
	}
	if math.Abs(row.Length-base.Length*trend) > epsilon {
		t.Fatalf("length must not be weekend dampened: %v", row.Length)
	}

	strategy := Realistic{rng: rand.New(rand.NewPCG(3, 4))}
	for i := 0; i < 500; i++ {
		row := strategy.Estimate(base, saturday, 1)
		if math.Abs(row.Toxicity-centre) > safetyBand/2+epsilon {
			t.Fatalf("toxicity noise outside ±1.5%%: %v", row.Toxicity-centre)
		}
		if math.Abs(row.AnswerCorrectness-base.AnswerCorrectness*trend*weekendFactor) > qualityBand/2+epsilon {
			t.Fatalf("correctness noise outside ±3%%: %v", row.AnswerCorrectness)
		}
		if math.Abs(row.Tone-base.Tone*trend) > styleBand/2+epsilon {
			t.Fatalf("tone noise outside ±5%%: %v", row.Tone)
		}
	}
}

func TestRealisticWeekdayHasNoDampening(t *testing.T) {
	friday := date(t, "2025-01-03")
	row := Realistic{rng: fixedRand(0.5)}.Estimate(baseRow(), friday, 1)
	want := baseRow().Toxicity * (1 - 2*trendPerDay)
	if math.Abs(row.Toxicity-want) > epsilon {
		t.Fatalf("expected %v, got %v", want, row.Toxicity)
	}
}

func TestTrendFactorUsesIndexForUndatedBase(t *testing.T) {
	got := TrendFactor(aggregates.DefaultBaseRow(), date(t, "2025-01-03"), 10)
	if math.Abs(got-0.95) > epsilon {
		t.Fatalf("expected 0.95, got %v", got)
	}
	got = TrendFactor(baseRow(), date(t, "2024-12-22"), 0)
	if math.Abs(got-0.95) > epsilon {
		t.Fatalf("expected distance to be absolute, got %v", got)
	}
}

func TestSimpleScenarioThroughBuilder(t *testing.T) {
	real := []aggregates.DailyRow{baseRow()}
	strategy, err := New(ModeSimple, rand.New(rand.NewPCG(5, 6)))
	if err != nil {
		t.Fatal(err)
	}
	b := aggregates.Builder{Days: 5, Anchor: aggregates.AnchorToday}

	rows := b.Build(real, strategy, date(t, "2025-01-05"))

	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0].Date != "2025-01-01" || rows[0].IsEstimated || rows[0].Toxicity != 0.9 {
		t.Fatalf("first row must be the real row, got %+v", rows[0])
	}
	for _, r := range rows[1:] {
		if !r.IsEstimated {
			t.Fatalf("row %s should be estimated", r.Date)
		}
		if r.Toxicity < 0.85-epsilon || r.Toxicity > 0.95+epsilon {
			t.Fatalf("row %s toxicity %v outside [0.85, 0.95]", r.Date, r.Toxicity)
		}
	}
}
