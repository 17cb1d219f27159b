// Package service is the single entry point the presentation layers talk to. It owns the
// session manager, the history store and the progress tracker, and keeps them in step.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/sadopc/trainr/internal/analytics"
	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/history"
	"github.com/sadopc/trainr/internal/kv"
	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/progress"
	"github.com/sadopc/trainr/internal/session"
)

const finishTimeout = 5 * time.Second

// Settings is the runtime preference store.
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

type Deps struct {
	Catalog      *catalog.Catalog
	KV           kv.Store
	Settings     Settings
	Clock        session.Clock
	HistoryLimit int
}

type Service struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
	history  *history.Store
	tracker  *progress.Tracker
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	recorded []RecordedFunc
}

// RecordedFunc is told about each finished session once it has been persisted, along
// with any persistence error.
type RecordedFunc func(rec session.Record, err error)

func New(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = session.WallClock{}
	}
	s := &Service{
		catalog:  d.Catalog,
		sessions: session.NewManager(d.Catalog, clock),
		history:  history.New(d.KV, d.HistoryLimit),
		tracker:  progress.NewTracker(ledger.New(d.KV).WithClock(clock.Now), d.KV).WithClock(clock.Now),
		settings: d.Settings,
		now:      clock.Now,
	}
	s.sessions.OnFinish(s.recordSession)
	return s
}

// Load reads persisted history and progress, and fixes the program start date on first run.
func (s *Service) Load(ctx context.Context) error {
	err := multierr.Combine(
		s.history.Load(ctx),
		s.tracker.Load(ctx),
	)
	if err != nil {
		return err
	}
	if _, ok := s.ProgramStart(); !ok {
		if err := s.SetProgramStart(s.now()); err != nil {
			return err
		}
	}
	log.Infof("loaded %d history records and %d ledger entries", s.history.Len(), s.tracker.Ledger().Len())
	return nil
}

// Shutdown stops any running session so it is recorded rather than lost.
func (s *Service) Shutdown() {
	s.sessions.Stop()
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// recordSession runs after every finished session. Failures are returned to the manager,
// which logs them; the session is already cleared.
func (s *Service) recordSession(rec session.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	errs := s.history.Append(ctx, rec)

	week, day := s.ProgramDay(rec.StartedAt)
	minutes := math.Round(float64(rec.ElapsedSeconds)/60*10) / 10
	entry := ledger.Entry{
		Date:      rec.EndedAt.Format(ledger.DateLayout),
		Week:      week,
		Day:       day,
		Type:      s.entryTypeFor(rec.TemplateID),
		Activity:  rec.Name,
		Measures:  ledger.Measures{Duration: ledger.Float(minutes), Sets: ledger.Int(rec.CompletedCount)},
		Notes:     fmt.Sprintf("%d of %d exercises, session %s", rec.CompletedCount, rec.TotalExercises, rec.Status),
		Completed: rec.Status == session.StatusCompleted && rec.CompletedCount > 0,
	}
	if _, err := s.tracker.Log(ctx, entry); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log session %s: %w", rec.ID, err))
	}

	s.mu.Lock()
	hooks := append([]RecordedFunc(nil), s.recorded...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(rec, errs)
	}
	return errs
}

func (s *Service) OnSessionRecorded(fn RecordedFunc) {
	s.mu.Lock()
	s.recorded = append(s.recorded, fn)
	s.mu.Unlock()
}

// entryTypeFor files all-mental templates as mental training instead of a workout.
func (s *Service) entryTypeFor(templateID string) ledger.EntryType {
	tpl, ok := s.catalog.Template(templateID)
	if !ok || len(tpl.Exercises) == 0 {
		return ledger.TypeWorkout
	}
	for _, ex := range tpl.Exercises {
		if ex.Category != catalog.CategoryMental {
			return ledger.TypeWorkout
		}
	}
	return ledger.TypeMental
}

// Session commands.

func (s *Service) StartSession(templateID string) (session.Snapshot, error) {
	return s.sessions.Start(templateID)
}

func (s *Service) PauseSession()  { s.sessions.Pause() }
func (s *Service) ResumeSession() { s.sessions.Resume() }
func (s *Service) ToggleSession() { s.sessions.TogglePause() }
func (s *Service) SkipExercise()  { s.sessions.Skip() }
func (s *Service) StopSession()   { s.sessions.Stop() }

func (s *Service) CurrentSession() (session.Snapshot, bool) {
	return s.sessions.Current()
}

// SessionUpdates streams session snapshots until cancel is called.
func (s *Service) SessionUpdates() (<-chan session.Snapshot, func()) {
	return s.sessions.Updates()
}

// History.

func (s *Service) History() []session.Record { return s.history.List() }

func (s *Service) HistoryRecord(id string) (session.Record, error) {
	return s.history.Get(id)
}

func (s *Service) HistoryStats() history.Stats {
	return s.history.Stats(s.now())
}

// Ledger.

// LogEntry fills in today's date and the program week/day when they are missing.
func (s *Service) LogEntry(ctx context.Context, e ledger.Entry) (progress.Result, error) {
	if e.Date == "" {
		e.Date = s.now().Format(ledger.DateLayout)
	}
	if e.Week == 0 || e.Day == 0 {
		if on, err := time.ParseInLocation(ledger.DateLayout, e.Date, time.Local); err == nil {
			e.Week, e.Day = s.ProgramDay(on)
		}
	}
	return s.tracker.Log(ctx, e)
}

func (s *Service) UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	return s.tracker.Update(ctx, e)
}

func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	return s.tracker.Delete(ctx, id)
}

func (s *Service) Entry(id string) (ledger.Entry, error) {
	return s.tracker.Ledger().Get(id)
}

func (s *Service) AllEntries() []ledger.Entry { return s.tracker.Ledger().All() }

func (s *Service) Entries(from, to time.Time) []ledger.Entry {
	return s.tracker.Ledger().Range(from, to)
}

func (s *Service) EntriesOfType(t ledger.EntryType) []ledger.Entry {
	return s.tracker.Ledger().OfType(t)
}

func (s *Service) EntriesForWeek(week int) []ledger.Entry {
	return s.tracker.Ledger().Week(week)
}

// Derived views.

func (s *Service) WeeklyRollup(week int) analytics.Rollup {
	target, _ := s.catalog.WeekTarget(week)
	return analytics.WeeklyRollup(s.tracker.Ledger().Week(week), week, target)
}

// Rollups returns every program week's roll-up in order.
func (s *Service) Rollups() []analytics.Rollup {
	entries := s.tracker.Ledger().All()
	out := make([]analytics.Rollup, 0, catalog.ProgramWeeks)
	for week := 1; week <= catalog.ProgramWeeks; week++ {
		target, _ := s.catalog.WeekTarget(week)
		out = append(out, analytics.WeeklyRollup(entries, week, target))
	}
	return out
}

func (s *Service) Streaks() []analytics.Streak {
	return analytics.Streaks(s.tracker.Ledger().All(), s.now())
}

func (s *Service) Trends() []analytics.Trend {
	return analytics.Trends(s.tracker.Ledger().All(), s.now())
}

func (s *Service) Achievements() []analytics.Achievement {
	return s.tracker.Achievements()
}

func (s *Service) PersonalRecords() []analytics.PersonalRecord {
	return s.tracker.PersonalRecords()
}
