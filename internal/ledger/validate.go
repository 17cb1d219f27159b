package ledger

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/trainr/internal/catalog"
)

// Validate checks the envelope and the measures each type requires.
func Validate(e Entry) error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return invalid("date %q is not YYYY-MM-DD", e.Date)
	}
	if e.Week < 1 || e.Week > catalog.ProgramWeeks {
		return invalid("week %d out of range 1..%d", e.Week, catalog.ProgramWeeks)
	}
	if e.Day < 1 || e.Day > 7 {
		return invalid("day %d out of range 1..7", e.Day)
	}
	if !e.Type.Valid() {
		return invalid("unknown type %q", e.Type)
	}
	if err := validateMeasures(e.Measures); err != nil {
		return err
	}

	m := e.Measures
	activity := strings.TrimSpace(e.Activity)
	switch e.Type {
	case TypeWorkout, TypeMental:
		if activity == "" {
			return invalid("%s entry needs an activity", e.Type)
		}
	case TypeNutrition:
		if m.Calories == nil && !m.hasMacro() && m.Hydration == nil {
			return invalid("nutrition entry needs calories, a macro or hydration")
		}
	case TypeRecovery:
		if m.SleepHours == nil && !m.hasRecoveryScore() {
			return invalid("recovery entry needs sleep hours or a recovery score")
		}
	case TypeAssessment:
		if activity == "" {
			return invalid("assessment entry needs an activity")
		}
		if m.Empty() {
			return invalid("assessment entry needs at least one measure")
		}
	}
	return nil
}

func validateMeasures(m Measures) error {
	scores := m.scores()
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := scores[name]; v != nil && (*v < 1 || *v > 10) {
			return invalid("%s score %d out of range 1..10", name, *v)
		}
	}

	floats := map[string]*float64{
		"duration":   m.Duration,
		"distance":   m.Distance,
		"weight":     m.Weight,
		"calories":   m.Calories,
		"protein":    m.Protein,
		"carbs":      m.Carbs,
		"fat":        m.Fat,
		"hydration":  m.Hydration,
		"sleepHours": m.SleepHours,
	}
	for name, v := range floats {
		if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return invalid("%s must be a non-negative number", name)
		}
	}
	if m.SleepHours != nil && *m.SleepHours > 24 {
		return invalid("sleep hours %.1f exceeds a day", *m.SleepHours)
	}
	for name, v := range map[string]*int{"reps": m.Reps, "sets": m.Sets, "heartRate": m.HeartRate} {
		if v != nil && *v < 0 {
			return invalid("%s must not be negative", name)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntry, fmt.Sprintf(format, args...))
}
