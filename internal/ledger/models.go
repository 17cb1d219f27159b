package ledger

import (
	"time"
)

// DateLayout is the ISO calendar date every entry is keyed by.
const DateLayout = "2006-01-02"

type EntryType string

const (
	TypeWorkout    EntryType = "workout"
	TypeNutrition  EntryType = "nutrition"
	TypeMental     EntryType = "mental"
	TypeRecovery   EntryType = "recovery"
	TypeAssessment EntryType = "assessment"
)

// Types lists every entry type in display order.
var Types = []EntryType{TypeWorkout, TypeNutrition, TypeMental, TypeRecovery, TypeAssessment}

func (t EntryType) Valid() bool {
	switch t {
	case TypeWorkout, TypeNutrition, TypeMental, TypeRecovery, TypeAssessment:
		return true
	}
	return false
}

// Measures holds the optional numbers an entry may carry. A nil field was not recorded.
type Measures struct {
	Duration   *float64 `json:"duration,omitempty"` // minutes
	Distance   *float64 `json:"distance,omitempty"` // miles
	Reps       *int     `json:"reps,omitempty"`
	Weight     *float64 `json:"weight,omitempty"` // lbs
	Sets       *int     `json:"sets,omitempty"`
	Calories   *float64 `json:"calories,omitempty"`
	Protein    *float64 `json:"protein,omitempty"` // grams
	Carbs      *float64 `json:"carbs,omitempty"`
	Fat        *float64 `json:"fat,omitempty"`
	Hydration  *float64 `json:"hydration,omitempty"` // fl oz
	SleepHours *float64 `json:"sleepHours,omitempty"`
	HeartRate  *int     `json:"heartRate,omitempty"`

	// scores, 1..10
	Mood     *int `json:"mood,omitempty"`
	Energy   *int `json:"energy,omitempty"`
	Soreness *int `json:"soreness,omitempty"`
	Stress   *int `json:"stress,omitempty"`
	Focus    *int `json:"focus,omitempty"`
}

// Float and Int build measure values inline.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }

func (m Measures) Empty() bool {
	return m == Measures{}
}

func (m Measures) hasMacro() bool {
	return m.Protein != nil || m.Carbs != nil || m.Fat != nil
}

func (m Measures) hasRecoveryScore() bool {
	return m.Soreness != nil || m.Energy != nil || m.Mood != nil || m.Stress != nil
}

func (m Measures) scores() map[string]*int {
	return map[string]*int{
		"mood":     m.Mood,
		"energy":   m.Energy,
		"soreness": m.Soreness,
		"stress":   m.Stress,
		"focus":    m.Focus,
	}
}

// Entry is one dated ledger record. Type decides which measures are required.
type Entry struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	Week      int        `json:"week"`
	Day       int        `json:"day"`
	Type      EntryType  `json:"type"`
	Activity  string     `json:"activity"`
	Measures  Measures   `json:"measures"`
	Notes     string     `json:"notes,omitempty"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// On returns the entry's calendar date at UTC midnight, or the zero time if Date is malformed.
func (e Entry) On() time.Time {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
