// Package estimation holds the strategies used to synthesize metric rows for
// days the source sheet does not cover.
package estimation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tecace/axpro-metrics/internal/aggregates"
)

// Mode names an estimation strategy.
type Mode string

const (
	ModeSimple    Mode = "simple"
	ModeImproved  Mode = "improved"
	ModeRealistic Mode = "realistic"
)

// DefaultMode is used when the caller does not pick one.
const DefaultMode = ModeSimple

// ErrUnknownMode is returned by ParseMode for names outside Modes.
var ErrUnknownMode = errors.New("unknown estimation mode")

// Modes lists every supported mode in display order.
func Modes() []Mode {
	return []Mode{ModeSimple, ModeImproved, ModeRealistic}
}

// ParseMode validates a mode name. The empty string selects DefaultMode.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// New returns the strategy for mode drawing noise from rng. A nil rng uses
// the goroutine-safe package-level generator.
func New(mode Mode, rng aggregates.Rand) (aggregates.Estimator, error) {
	if rng == nil {
		rng = globalRand{}
	}
	switch mode {
	case ModeSimple:
		return Simple{rng: rng}, nil
	case ModeImproved:
		return Improved{rng: rng}, nil
	case ModeRealistic:
		return Realistic{rng: rng}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// GlobalRand returns the goroutine-safe package-level generator.
func GlobalRand() aggregates.Rand { return globalRand{} }

// noise draws uniformly from [-width/2, +width/2).
func noise(rng aggregates.Rand, width float64) float64 {
	return (rng.Float64() - 0.5) * width
}

func estimated(date time.Time, row aggregates.DailyRow) aggregates.DailyRow {
	row = row.Clamped()
	row.Date = aggregates.FormatDate(date)
	row.IsEstimated = true
	return row
}
