package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sadopc/trainr/internal/ledger"
)

// MeasureKind selects which entry measure a discipline's record is kept on.
type MeasureKind int

const (
	MeasureDistance MeasureKind = iota
	MeasureReps
)

type DisciplineInfo struct {
	Key      string
	Label    string
	Measure  MeasureKind
	Unit     string
	Strength bool
	keywords []string
}

// disciplines is checked in order; the first keyword hit wins. A keyword matches a word
// prefix, or two adjacent words written together ("push ups").
var disciplines = []DisciplineInfo{
	{Key: "swim", Label: "Swim", Measure: MeasureDistance, Unit: "mi", keywords: []string{"swim"}},
	{Key: "ruck", Label: "Ruck", Measure: MeasureDistance, Unit: "mi", keywords: []string{"ruck"}},
	{Key: "run", Label: "Run", Measure: MeasureDistance, Unit: "mi", keywords: []string{"run", "jog", "sprint"}},
	{Key: "pushups", Label: "Push-ups", Measure: MeasureReps, Unit: "reps", Strength: true, keywords: []string{"pushup"}},
	{Key: "pullups", Label: "Pull-ups", Measure: MeasureReps, Unit: "reps", Strength: true, keywords: []string{"pullup", "chinup"}},
	{Key: "situps", Label: "Sit-ups", Measure: MeasureReps, Unit: "reps", Strength: true, keywords: []string{"situp"}},
	{Key: "squats", Label: "Squats", Measure: MeasureReps, Unit: "reps", Strength: true, keywords: []string{"squat"}},
}

var strengthKeywords = []string{"strength", "core", "circuit", "calisthenic", "lift"}

func words(activity string) []string {
	s := strings.ToLower(activity)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Discipline maps a free-text activity label onto a tracked discipline.
func Discipline(activity string) (DisciplineInfo, bool) {
	ws := words(activity)
	candidates := append([]string(nil), ws...)
	for i := 0; i+1 < len(ws); i++ {
		candidates = append(candidates, ws[i]+ws[i+1])
	}
	for _, d := range disciplines {
		for _, kw := range d.keywords {
			for _, w := range candidates {
				if strings.HasPrefix(w, kw) {
					return d, true
				}
			}
		}
	}
	return DisciplineInfo{}, false
}

// Disciplines returns every tracked discipline.
func Disciplines() []DisciplineInfo {
	return append([]DisciplineInfo(nil), disciplines...)
}

func isStrengthSession(activity string) bool {
	for _, w := range words(activity) {
		for _, kw := range strengthKeywords {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}

type PersonalRecord struct {
	Discipline     string   `json:"discipline"`
	Activity       string   `json:"activity"`
	Value          float64  `json:"value"`
	Unit           string   `json:"unit"`
	Date           string   `json:"date"`
	EntryID        string   `json:"entryId"`
	PreviousRecord *float64 `json:"previousRecord,omitempty"`
}

// Improvement is the gain over the previous record, or 0 for a first record.
func (r PersonalRecord) Improvement() float64 {
	if r.PreviousRecord == nil {
		return 0
	}
	return r.Value - *r.PreviousRecord
}

func recordValue(d DisciplineInfo, m ledger.Measures) (float64, bool) {
	switch d.Measure {
	case MeasureDistance:
		if m.Distance != nil && *m.Distance > 0 {
			return *m.Distance, true
		}
	case MeasureReps:
		if m.Reps != nil && *m.Reps > 0 {
			return float64(*m.Reps), true
		}
	}
	return 0, false
}

// EvaluateRecord reports the record e would set, if any. Only completed workouts of a
// tracked discipline qualify, and only a strictly greater value beats the stored one.
// records is not modified.
func EvaluateRecord(records map[string]PersonalRecord, e ledger.Entry) (PersonalRecord, bool) {
	if e.Type != ledger.TypeWorkout || !e.Completed {
		return PersonalRecord{}, false
	}
	d, ok := Discipline(e.Activity)
	if !ok {
		return PersonalRecord{}, false
	}
	v, ok := recordValue(d, e.Measures)
	if !ok {
		return PersonalRecord{}, false
	}

	rec := PersonalRecord{
		Discipline: d.Key,
		Activity:   e.Activity,
		Value:      v,
		Unit:       d.Unit,
		Date:       e.Date,
		EntryID:    e.ID,
	}
	if prev, exists := records[d.Key]; exists {
		if v <= prev.Value {
			return PersonalRecord{}, false
		}
		pv := prev.Value
		rec.PreviousRecord = &pv
	}
	return rec, true
}

// RebuildRecords replays entries in date order, as if each had just been logged.
func RebuildRecords(entries []ledger.Entry) map[string]PersonalRecord {
	sorted := append([]ledger.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	records := make(map[string]PersonalRecord)
	for _, e := range sorted {
		if rec, ok := EvaluateRecord(records, e); ok {
			records[rec.Discipline] = rec
		}
	}
	return records
}

// SortedRecords returns records in discipline order.
func SortedRecords(records map[string]PersonalRecord) []PersonalRecord {
	out := make([]PersonalRecord, 0, len(records))
	for _, d := range disciplines {
		if r, ok := records[d.Key]; ok {
			out = append(out, r)
		}
	}
	return out
}
