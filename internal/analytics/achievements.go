package analytics

import (
	"time"

	"github.com/sadopc/trainr/internal/ledger"
)

type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Category    string     `json:"category"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

func (a Achievement) Unlocked() bool { return a.UnlockedAt != nil }

// Definition pairs an achievement with its single-fire criterion.
type Definition struct {
	Achievement
	Met func(entries []ledger.Entry) bool
}

func count(entries []ledger.Entry, keep func(ledger.Entry) bool) int {
	n := 0
	for _, e := range entries {
		if keep(e) {
			n++
		}
	}
	return n
}

func completedWorkout(e ledger.Entry) bool {
	return e.Type == ledger.TypeWorkout && e.Completed
}

func ofType(t ledger.EntryType) func(ledger.Entry) bool {
	return func(e ledger.Entry) bool { return e.Type == t }
}

func hasPerfectWeek(entries []ledger.Entry) bool {
	total := make(map[int]int)
	done := make(map[int]int)
	for _, e := range entries {
		if e.Type != ledger.TypeWorkout {
			continue
		}
		total[e.Week]++
		if e.Completed {
			done[e.Week]++
		}
	}
	for week, n := range total {
		if n > 0 && done[week] == n {
			return true
		}
	}
	return false
}

func totalDistance(entries []ledger.Entry, discipline string) float64 {
	var sum float64
	for _, e := range entries {
		if !completedWorkout(e) || e.Measures.Distance == nil {
			continue
		}
		if d, ok := Discipline(e.Activity); ok && d.Key == discipline {
			sum += *e.Measures.Distance
		}
	}
	return sum
}

func maxReps(entries []ledger.Entry, discipline string) int {
	best := 0
	for _, e := range entries {
		if !completedWorkout(e) || e.Measures.Reps == nil {
			continue
		}
		if d, ok := Discipline(e.Activity); ok && d.Key == discipline {
			best = max(best, *e.Measures.Reps)
		}
	}
	return best
}

// Achievements returns the built-in achievement definitions.
func Achievements() []Definition {
	return []Definition{
		{
			Achievement: Achievement{ID: "first-workout", Title: "First Step", Icon: "🏁", Category: "training",
				Description: "Complete your first workout."},
			Met: func(es []ledger.Entry) bool { return count(es, completedWorkout) >= 1 },
		},
		{
			Achievement: Achievement{ID: "perfect-week", Title: "Perfect Week", Icon: "⭐", Category: "training",
				Description: "Complete every workout logged in a program week."},
			Met: hasPerfectWeek,
		},
		{
			Achievement: Achievement{ID: "seven-day-streak", Title: "Seven Straight", Icon: "🔥", Category: "consistency",
				Description: "Work out seven days in a row."},
			Met: func(es []ledger.Entry) bool { return LongestStreak(es, ledger.TypeWorkout) >= 7 },
		},
		{
			Achievement: Achievement{ID: "mind-over-matter", Title: "Mind Over Matter", Icon: "🧠", Category: "mental",
				Description: "Log seven mental training sessions."},
			Met: func(es []ledger.Entry) bool { return count(es, ofType(ledger.TypeMental)) >= 7 },
		},
		{
			Achievement: Achievement{ID: "fuel-log", Title: "Fuel Log", Icon: "🥩", Category: "nutrition",
				Description: "Log fourteen nutrition entries."},
			Met: func(es []ledger.Entry) bool { return count(es, ofType(ledger.TypeNutrition)) >= 14 },
		},
		{
			Achievement: Achievement{ID: "well-rested", Title: "Well Rested", Icon: "😴", Category: "recovery",
				Description: "Record eight or more hours of sleep five times."},
			Met: func(es []ledger.Entry) bool {
				return count(es, func(e ledger.Entry) bool {
					return e.Measures.SleepHours != nil && *e.Measures.SleepHours >= 8
				}) >= 5
			},
		},
		{
			Achievement: Achievement{ID: "marathon-miles", Title: "Marathon Miles", Icon: "🏃", Category: "training",
				Description: "Run a cumulative 26.2 miles."},
			Met: func(es []ledger.Entry) bool { return totalDistance(es, "run") >= 26.2 },
		},
		{
			Achievement: Achievement{ID: "century-pushups", Title: "Century", Icon: "💪", Category: "training",
				Description: "Do 100 push-ups in a single entry."},
			Met: func(es []ledger.Entry) bool { return maxReps(es, "pushups") >= 100 },
		},
		{
			Achievement: Achievement{ID: "baseline", Title: "Baseline", Icon: "📋", Category: "assessment",
				Description: "Log your first assessment."},
			Met: func(es []ledger.Entry) bool { return count(es, ofType(ledger.TypeAssessment)) >= 1 },
		},
	}
}

// EvaluateAchievements returns the unlock map after checking every definition against
// entries, plus the achievements unlocked by this call. Existing unlocks are never
// changed or removed. unlocked is not modified.
func EvaluateAchievements(defs []Definition, unlocked map[string]time.Time, entries []ledger.Entry, now time.Time) (map[string]time.Time, []Achievement) {
	next := make(map[string]time.Time, len(unlocked))
	for id, at := range unlocked {
		next[id] = at
	}

	var fresh []Achievement
	for _, d := range defs {
		if _, done := next[d.ID]; done {
			continue
		}
		if d.Met == nil || !d.Met(entries) {
			continue
		}
		next[d.ID] = now
		a := d.Achievement
		at := now
		a.UnlockedAt = &at
		fresh = append(fresh, a)
	}
	return next, fresh
}

// Resolve lists defs with their unlock times filled in from unlocked.
func Resolve(defs []Definition, unlocked map[string]time.Time) []Achievement {
	out := make([]Achievement, 0, len(defs))
	for _, d := range defs {
		a := d.Achievement
		if at, ok := unlocked[d.ID]; ok {
			a.UnlockedAt = &at
		}
		out = append(out, a)
	}
	return out
}
