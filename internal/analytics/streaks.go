package analytics

import (
	"sort"
	"time"

	"github.com/sadopc/trainr/internal/ledger"
)

const day = 24 * time.Hour

// civil truncates t to its calendar date in t's location, expressed at UTC midnight,
// so that day arithmetic matches ledger dates.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// activeDays returns the distinct calendar days with an entry of type t, newest first.
func activeDays(entries []ledger.Entry, t ledger.EntryType) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, e := range entries {
		if e.Type != t {
			continue
		}
		d := e.On()
		if d.IsZero() || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// CurrentStreak counts consecutive days, ending today, with at least one entry of type t.
// Without an entry today the streak is 0.
func CurrentStreak(entries []ledger.Entry, t ledger.EntryType, today time.Time) int {
	want := civil(today)
	streak := 0
	for _, d := range activeDays(entries, t) {
		if d.After(want) {
			continue
		}
		if !d.Equal(want) {
			break
		}
		streak++
		want = want.Add(-day)
	}
	return streak
}

// LongestStreak is the longest run of consecutive days with an entry of type t.
func LongestStreak(entries []ledger.Entry, t ledger.EntryType) int {
	days := activeDays(entries, t)
	longest, run := 0, 0
	for i := len(days) - 1; i >= 0; i-- {
		if i < len(days)-1 && days[i].Sub(days[i+1]) == day {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

type Streak struct {
	Type    ledger.EntryType
	Current int
	Longest int
}

// Streaks computes current and longest streaks for every entry type.
func Streaks(entries []ledger.Entry, today time.Time) []Streak {
	out := make([]Streak, 0, len(ledger.Types))
	for _, t := range ledger.Types {
		out = append(out, Streak{
			Type:    t,
			Current: CurrentStreak(entries, t, today),
			Longest: LongestStreak(entries, t),
		})
	}
	return out
}
