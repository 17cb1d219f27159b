package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/progress"
)

type logFlags struct {
	entryType  string
	activity   string
	date       string
	week, day  int
	notes      string
	incomplete bool

	floats map[string]*float64
	ints   map[string]*int
}

var floatMeasures = []struct{ flag, usage string }{
	{"duration", "duration in minutes"},
	{"distance", "distance in miles"},
	{"weight", "weight in lbs"},
	{"calories", "calories"},
	{"protein", "protein in grams"},
	{"carbs", "carbs in grams"},
	{"fat", "fat in grams"},
	{"hydration", "hydration in fl oz"},
	{"sleep", "hours slept"},
}

var intMeasures = []struct{ flag, usage string }{
	{"reps", "repetitions"},
	{"sets", "sets"},
	{"heart-rate", "heart rate in bpm"},
	{"mood", "mood score 1-10"},
	{"energy", "energy score 1-10"},
	{"soreness", "soreness score 1-10"},
	{"stress", "stress score 1-10"},
	{"focus", "focus score 1-10"},
}

func newLogCmd() *cobra.Command {
	f := &logFlags{
		floats: make(map[string]*float64),
		ints:   make(map[string]*int),
	}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Add an entry to the progress ledger",
		Example: `  trainr log --type workout --activity "Tempo run" --distance 4.2 --duration 36
  trainr log --type recovery --sleep 8.5 --mood 7
  trainr log --type nutrition --calories 2800 --protein 180 --date 2026-10-16`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := f.entry(cmd.Flags())
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.svc.LogEntry(cmd.Context(), entry)
			if err != nil {
				return err
			}
			printLogResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.entryType, "type", "t", string(ledger.TypeWorkout), "entry type: "+typeList())
	fl.StringVarP(&f.activity, "activity", "a", "", "what was done")
	fl.StringVar(&f.date, "date", "", "date as YYYY-MM-DD (default today)")
	fl.IntVar(&f.week, "week", 0, "program week (default from date)")
	fl.IntVar(&f.day, "day", 0, "program day (default from date)")
	fl.StringVarP(&f.notes, "notes", "n", "", "free-form notes")
	fl.BoolVar(&f.incomplete, "incomplete", false, "mark the entry as not completed")
	for _, m := range floatMeasures {
		f.floats[m.flag] = fl.Float64(m.flag, 0, m.usage)
	}
	for _, m := range intMeasures {
		f.ints[m.flag] = fl.Int(m.flag, 0, m.usage)
	}
	return cmd
}

// entry builds a ledger entry from the flags that were set. Unset measures stay nil.
func (f *logFlags) entry(fl *pflag.FlagSet) (ledger.Entry, error) {
	t := ledger.EntryType(strings.ToLower(f.entryType))
	if !t.Valid() {
		return ledger.Entry{}, fmt.Errorf("unknown entry type %q (want %s)", f.entryType, typeList())
	}

	e := ledger.Entry{
		Date:      f.date,
		Week:      f.week,
		Day:       f.day,
		Type:      t,
		Activity:  f.activity,
		Notes:     f.notes,
		Completed: !f.incomplete,
	}

	float := func(name string) *float64 {
		if !fl.Changed(name) {
			return nil
		}
		return ledger.Float(*f.floats[name])
	}
	integer := func(name string) *int {
		if !fl.Changed(name) {
			return nil
		}
		return ledger.Int(*f.ints[name])
	}

	e.Measures = ledger.Measures{
		Duration:   float("duration"),
		Distance:   float("distance"),
		Weight:     float("weight"),
		Calories:   float("calories"),
		Protein:    float("protein"),
		Carbs:      float("carbs"),
		Fat:        float("fat"),
		Hydration:  float("hydration"),
		SleepHours: float("sleep"),
		Reps:       integer("reps"),
		Sets:       integer("sets"),
		HeartRate:  integer("heart-rate"),
		Mood:       integer("mood"),
		Energy:     integer("energy"),
		Soreness:   integer("soreness"),
		Stress:     integer("stress"),
		Focus:      integer("focus"),
	}
	return e, nil
}

func typeList() string {
	names := make([]string, len(ledger.Types))
	for i, t := range ledger.Types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func printLogResult(out io.Writer, res progress.Result) {
	e := res.Entry
	fmt.Fprintf(out, "logged %s %q on %s (week %d, day %d) as %s\n", e.Type, e.Activity, e.Date, e.Week, e.Day, e.ID)
	if r := res.Record; r != nil {
		if r.PreviousRecord != nil {
			fmt.Fprintf(out, "new personal record: %s %g %s (+%g)\n", r.Discipline, r.Value, r.Unit, r.Improvement())
		} else {
			fmt.Fprintf(out, "first %s record: %g %s\n", r.Discipline, r.Value, r.Unit)
		}
	}
	for _, a := range res.Unlocked {
		fmt.Fprintf(out, "achievement unlocked: %s %s\n", a.Icon, a.Title)
	}
}
