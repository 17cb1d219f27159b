// Package analytics derives statistics from ledger entries. Every function is pure and
// returns zero values on empty input.
package analytics

import (
	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/ledger"
)

// Mean is an average over only the entries that supplied the measure.
type Mean struct {
	Sum   float64
	Count int
}

func (m *Mean) add(v float64) {
	m.Sum += v
	m.Count++
}

func (m Mean) Value() float64 {
	if m.Count == 0 {
		return 0
	}
	return m.Sum / float64(m.Count)
}

// TargetProgress is actual and target per program metric. Percent is 0 when the target is 0.
type TargetProgress struct {
	Actual float64
	Target float64
}

func (p TargetProgress) Percent() float64 {
	if p.Target <= 0 {
		return 0
	}
	return p.Actual / p.Target * 100
}

type Rollup struct {
	Week int

	TotalWorkouts     int
	CompletedWorkouts int
	CompletionRate    float64 // percent

	TotalDistance float64 // miles
	TotalDuration float64 // minutes
	TotalCalories float64

	HeartRate Mean
	Sleep     Mean
	Mood      Mean
	Energy    Mean

	EntriesByType map[ledger.EntryType]int

	Miles            TargetProgress
	SwimHours        TargetProgress
	StrengthSessions TargetProgress
	MentalHours      TargetProgress
}

// WeeklyRollup aggregates the entries logged against week and measures them against target.
func WeeklyRollup(entries []ledger.Entry, week int, target catalog.WeekTarget) Rollup {
	r := Rollup{
		Week:          week,
		EntriesByType: make(map[ledger.EntryType]int),
	}
	var miles, swimMinutes, strength, mentalMinutes float64

	for _, e := range entries {
		if e.Week != week {
			continue
		}
		r.EntriesByType[e.Type]++
		m := e.Measures

		if m.Distance != nil {
			r.TotalDistance += *m.Distance
		}
		if m.Duration != nil {
			r.TotalDuration += *m.Duration
		}
		if m.Calories != nil {
			r.TotalCalories += *m.Calories
		}
		if m.HeartRate != nil {
			r.HeartRate.add(float64(*m.HeartRate))
		}
		if m.SleepHours != nil {
			r.Sleep.add(*m.SleepHours)
		}
		if m.Mood != nil {
			r.Mood.add(float64(*m.Mood))
		}
		if m.Energy != nil {
			r.Energy.add(float64(*m.Energy))
		}

		switch e.Type {
		case ledger.TypeWorkout:
			r.TotalWorkouts++
			if !e.Completed {
				continue
			}
			r.CompletedWorkouts++
			d, ok := Discipline(e.Activity)
			switch {
			case ok && d.Key == "swim":
				if m.Duration != nil {
					swimMinutes += *m.Duration
				}
			case m.Distance != nil:
				miles += *m.Distance
			}
			if ok && d.Strength || !ok && isStrengthSession(e.Activity) {
				strength++
			}
		case ledger.TypeMental:
			if m.Duration != nil {
				mentalMinutes += *m.Duration
			}
		}
	}

	if r.TotalWorkouts > 0 {
		r.CompletionRate = float64(r.CompletedWorkouts) / float64(r.TotalWorkouts) * 100
	}
	r.Miles = TargetProgress{Actual: miles, Target: target.Miles}
	r.SwimHours = TargetProgress{Actual: swimMinutes / 60, Target: target.SwimHours}
	r.StrengthSessions = TargetProgress{Actual: strength, Target: float64(target.StrengthSessions)}
	r.MentalHours = TargetProgress{Actual: mentalMinutes / 60, Target: target.MentalHours}
	return r
}
