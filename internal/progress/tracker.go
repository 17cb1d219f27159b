// Package progress ties the ledger to the derived books that outlive a single query:
// unlocked achievements and personal records.
package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/sadopc/trainr/internal/analytics"
	"github.com/sadopc/trainr/internal/kv"
	"github.com/sadopc/trainr/internal/ledger"
)

const (
	AchievementsKey = "achievements"
	RecordsKey      = "personal_records"
)

// Result is what logging one entry produced.
type Result struct {
	Entry    ledger.Entry
	Unlocked []analytics.Achievement
	Record   *analytics.PersonalRecord
}

type Tracker struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	kv       kv.Store
	defs     []analytics.Definition
	unlocked map[string]time.Time
	records  map[string]analytics.PersonalRecord

	now func() time.Time
}

func NewTracker(l *ledger.Ledger, backend kv.Store) *Tracker {
	return &Tracker{
		ledger:   l,
		kv:       backend,
		defs:     analytics.Achievements(),
		unlocked: make(map[string]time.Time),
		records:  make(map[string]analytics.PersonalRecord),
		now:      time.Now,
	}
}

// WithClock dates achievement unlocks from now.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Load reads the ledger and both books. A missing book starts empty.
func (t *Tracker) Load(ctx context.Context) error {
	if err := t.ledger.Load(ctx); err != nil {
		return err
	}

	unlocked := make(map[string]time.Time)
	records := make(map[string]analytics.PersonalRecord)
	if _, err := kv.GetJSON(ctx, t.kv, AchievementsKey, &unlocked); err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}
	if _, err := kv.GetJSON(ctx, t.kv, RecordsKey, &records); err != nil {
		return fmt.Errorf("load personal records: %w", err)
	}

	t.mu.Lock()
	t.unlocked = unlocked
	t.records = records
	t.mu.Unlock()
	return nil
}

func (t *Tracker) Ledger() *ledger.Ledger {
	return t.ledger
}

// Log appends e, then evaluates achievements and personal records against the updated
// ledger. Only the ledger write can fail the call; book persistence errors are logged.
func (t *Tracker) Log(ctx context.Context, e ledger.Entry) (Result, error) {
	saved, err := t.ledger.Append(ctx, e)
	if err != nil {
		return Result{}, err
	}
	res := Result{Entry: saved}

	t.mu.Lock()
	defer t.mu.Unlock()

	unlocked, fresh := analytics.EvaluateAchievements(t.defs, t.unlocked, t.ledger.All(), t.now())
	res.Unlocked = fresh
	for _, a := range fresh {
		log.Infof("achievement unlocked: %s", a.Title)
	}

	rec, improved := analytics.EvaluateRecord(t.records, saved)
	if improved {
		t.records[rec.Discipline] = rec
		res.Record = &rec
		log.Infof("personal record: %s %.1f %s", rec.Discipline, rec.Value, rec.Unit)
	}

	var errs error
	if len(fresh) > 0 {
		t.unlocked = unlocked
		errs = multierr.Append(errs, kv.SetJSON(ctx, t.kv, AchievementsKey, t.unlocked))
	}
	if improved {
		errs = multierr.Append(errs, kv.SetJSON(ctx, t.kv, RecordsKey, t.records))
	}
	if errs != nil {
		log.Errorf("progress: persist books after %s: %s", saved.ID, errs)
	}
	return res, nil
}

// Update replaces an entry and rebuilds personal records from the whole ledger.
// Achievements already unlocked stay unlocked.
func (t *Tracker) Update(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	saved, err := t.ledger.Update(ctx, e)
	if err != nil {
		return ledger.Entry{}, err
	}
	t.refresh(ctx)
	return saved, nil
}

func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.ledger.Delete(ctx, id); err != nil {
		return err
	}
	t.refresh(ctx)
	return nil
}

func (t *Tracker) refresh(ctx context.Context) {
	entries := t.ledger.All()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = analytics.RebuildRecords(entries)
	unlocked, fresh := analytics.EvaluateAchievements(t.defs, t.unlocked, entries, t.now())
	t.unlocked = unlocked

	errs := kv.SetJSON(ctx, t.kv, RecordsKey, t.records)
	if len(fresh) > 0 {
		errs = multierr.Append(errs, kv.SetJSON(ctx, t.kv, AchievementsKey, t.unlocked))
	}
	if errs != nil {
		log.Errorf("progress: persist books: %s", errs)
	}
}

// Achievements lists every achievement with its unlock time, locked ones included.
func (t *Tracker) Achievements() []analytics.Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()
	return analytics.Resolve(t.defs, t.unlocked)
}

func (t *Tracker) PersonalRecords() []analytics.PersonalRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return analytics.SortedRecords(t.records)
}
