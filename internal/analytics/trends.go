package analytics

import (
	"time"

	"github.com/sadopc/trainr/internal/ledger"
)

type Direction string

const (
	Improving Direction = "improving"
	Stable    Direction = "stable"
	Declining Direction = "declining"
)

// Classify compares a recent window with the one before it using a ±10% dead band.
// Both bounds are strict: exactly 1.1x or 0.9x is stable.
func Classify(recent, older float64) Direction {
	switch {
	case recent*10 > older*11:
		return Improving
	case recent*10 < older*9:
		return Declining
	default:
		return Stable
	}
}

type Trend struct {
	Metric    string
	Recent    float64
	Older     float64
	Direction Direction
}

type trendMetric struct {
	name  string
	value func(ledger.Entry) float64
}

func measure(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

var trendMetrics = []trendMetric{
	{"workouts", func(e ledger.Entry) float64 {
		if e.Type == ledger.TypeWorkout && e.Completed {
			return 1
		}
		return 0
	}},
	{"distance", func(e ledger.Entry) float64 {
		if e.Type != ledger.TypeWorkout {
			return 0
		}
		return measure(e.Measures.Distance)
	}},
	{"duration", func(e ledger.Entry) float64 {
		if e.Type != ledger.TypeWorkout {
			return 0
		}
		return measure(e.Measures.Duration)
	}},
	{"mental", func(e ledger.Entry) float64 {
		if e.Type == ledger.TypeMental {
			return 1
		}
		return 0
	}},
	{"recovery", func(e ledger.Entry) float64 {
		if e.Type == ledger.TypeRecovery {
			return 1
		}
		return 0
	}},
}

// Trends sums each metric over the 7 days ending today and the 7 days before that.
func Trends(entries []ledger.Entry, today time.Time) []Trend {
	end := civil(today)
	recentFrom := end.Add(-6 * day)
	olderFrom := end.Add(-13 * day)

	out := make([]Trend, 0, len(trendMetrics))
	for _, m := range trendMetrics {
		var recent, older float64
		for _, e := range entries {
			d := e.On()
			switch {
			case d.IsZero() || d.After(end) || d.Before(olderFrom):
			case d.Before(recentFrom):
				older += m.value(e)
			default:
				recent += m.value(e)
			}
		}
		out = append(out, Trend{
			Metric:    m.name,
			Recent:    recent,
			Older:     older,
			Direction: Classify(recent, older),
		})
	}
	return out
}
