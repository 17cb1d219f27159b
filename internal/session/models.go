package session

import (
	"time"

	"github.com/sadopc/trainr/internal/catalog"
)

type Phase int

const (
	PhaseExercising Phase = iota
	PhaseResting
	PhaseCompleted
	PhaseStopped
)

var phaseNames = map[Phase]string{
	PhaseExercising: "EXERCISE",
	PhaseResting:    "REST",
	PhaseCompleted:  "COMPLETED",
	PhaseStopped:    "STOPPED",
}

func (p Phase) String() string {
	return phaseNames[p]
}

// Terminal reports whether the session has finished, either way.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseStopped
}

// CompletedExercise is one finished (or skipped) set of an exercise.
type CompletedExercise struct {
	Exercise    catalog.Exercise `json:"exercise"`
	CompletedAt time.Time        `json:"completedAt"`
	Set         int              `json:"set"`
	Skipped     bool             `json:"skipped"`
}

// Snapshot is a copy of the active session handed to observers and callers.
// Mutating it has no effect on the session.
type Snapshot struct {
	Template      catalog.WorkoutTemplate
	StartedAt     time.Time
	ExerciseIndex int
	CurrentSet    int
	Phase         Phase
	Paused        bool
	Countdown     int // seconds left in the current phase
	Elapsed       int // seconds actually ticked, pauses excluded
	Completed     []CompletedExercise
	EndedAt       *time.Time
}

func (s Snapshot) Resting() bool { return s.Phase == PhaseResting }

// CurrentExercise is the exercise being worked, or the one coming up after a rest.
func (s Snapshot) CurrentExercise() (catalog.Exercise, bool) {
	if s.ExerciseIndex < 0 || s.ExerciseIndex >= len(s.Template.Exercises) {
		return catalog.Exercise{}, false
	}
	return s.Template.Exercises[s.ExerciseIndex], true
}

// Progress is the fraction of planned sets that have been recorded.
func (s Snapshot) Progress() float64 {
	planned := s.Template.PlannedUnits()
	if planned == 0 {
		return 0
	}
	return float64(len(s.Completed)) / float64(planned)
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

// Record is the immutable summary of a finished or stopped session.
type Record struct {
	ID             string              `json:"id"`
	TemplateID     string              `json:"templateId"`
	Name           string              `json:"name"`
	Status         Status              `json:"status"`
	StartedAt      time.Time           `json:"startedAt"`
	EndedAt        time.Time           `json:"endedAt"`
	ElapsedSeconds int                 `json:"elapsedSeconds"`
	Exercises      []CompletedExercise `json:"completedExercises"`
	TotalExercises int                 `json:"totalExercises"`
	CompletedCount int                 `json:"completedCount"` // non-skipped entries in Exercises
}
