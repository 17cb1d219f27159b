package catalog

import (
	"slices"
	"strconv"
	"strings"
)

type Category string

const (
	CategoryStrength Category = "strength"
	CategoryCore     Category = "core"
	CategoryCardio   Category = "cardio"
	CategoryMental   Category = "mental"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStrength, CategoryCore, CategoryCardio, CategoryMental:
		return true
	}
	return false
}

// RepTarget is either a rep count ("20") or a qualitative target ("max", "60s").
type RepTarget string

// Count returns the numeric rep target, if there is one.
func (r RepTarget) Count() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(r)))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

type Exercise struct {
	ID           string    `yaml:"id" json:"id"`
	Name         string    `yaml:"name" json:"name"`
	Category     Category  `yaml:"category" json:"category"`
	Duration     int       `yaml:"duration" json:"duration"` // seconds
	RestTime     int       `yaml:"rest" json:"rest"`         // seconds
	Sets         int       `yaml:"sets" json:"sets"`
	Reps         RepTarget `yaml:"reps" json:"reps"`
	Instructions string    `yaml:"instructions" json:"instructions"`
}

type WorkoutTemplate struct {
	ID            string     `yaml:"id" json:"id"`
	Name          string     `yaml:"name" json:"name"`
	Description   string     `yaml:"description" json:"description"`
	TotalDuration int        `yaml:"total_duration" json:"totalDuration"` // seconds, as declared
	Exercises     []Exercise `yaml:"exercises" json:"exercises"`
}

// PlannedUnits is the number of exercise sets a full run of the template records.
func (t WorkoutTemplate) PlannedUnits() int {
	n := 0
	for _, ex := range t.Exercises {
		n += ex.Sets
	}
	return n
}

// Clone returns a copy whose Exercises do not alias t's.
func (t WorkoutTemplate) Clone() WorkoutTemplate {
	t.Exercises = slices.Clone(t.Exercises)
	return t
}

// WeekTarget holds the program volume targets for one week.
type WeekTarget struct {
	Week             int     `yaml:"week" json:"week"`
	Miles            float64 `yaml:"miles" json:"miles"`
	SwimHours        float64 `yaml:"swim_hours" json:"swimHours"`
	StrengthSessions int     `yaml:"strength_sessions" json:"strengthSessions"`
	MentalHours      float64 `yaml:"mental_hours" json:"mentalHours"`
}
