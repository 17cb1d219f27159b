// Package ledger stores the dated log of everything the athlete records: workouts,
// meals, mental drills, recovery check-ins and assessments.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/trainr/internal/kv"
)

const Key = "progress_entries"

var (
	ErrNotFound     = errors.New("ledger entry not found")
	ErrInvalidEntry = errors.New("invalid ledger entry")
)

// Ledger keeps entries in append order. Every mutation is persisted before it returns;
// a failed write leaves the in-memory state as it was.
type Ledger struct {
	mu      sync.RWMutex
	kv      kv.Store
	entries []Entry

	now   func() time.Time
	newID func() string
}

func New(backend kv.Store) *Ledger {
	return &Ledger{
		kv:    backend,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock stamps CreatedAt and UpdatedAt from now instead of the wall clock.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func (l *Ledger) Load(ctx context.Context) error {
	var entries []Entry
	if _, err := kv.GetJSON(ctx, l.kv, Key, &entries); err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	log.Debugf("ledger: loaded %d entries", len(entries))
	return nil
}

// Append validates e, assigns its id and creation time, and persists it.
func (l *Ledger) Append(ctx context.Context, e Entry) (Entry, error) {
	e.Activity = strings.TrimSpace(e.Activity)
	if err := Validate(e); err != nil {
		return Entry{}, err
	}
	e.ID = l.newID()
	e.CreatedAt = l.now()
	e.UpdatedAt = nil

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.entries
	next := make([]Entry, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, e)
	if err := l.commitLocked(ctx, next); err != nil {
		return Entry{}, fmt.Errorf("append %s entry: %w", e.Type, err)
	}
	log.Debugf("ledger: appended %s %q on %s", e.Type, e.Activity, e.Date)
	return e, nil
}

// Update replaces the entry with e.ID. CreatedAt is preserved and UpdatedAt stamped.
func (l *Ledger) Update(ctx context.Context, e Entry) (Entry, error) {
	e.Activity = strings.TrimSpace(e.Activity)
	if err := Validate(e); err != nil {
		return Entry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(e.ID)
	if i < 0 {
		return Entry{}, fmt.Errorf("update %q: %w", e.ID, ErrNotFound)
	}
	now := l.now()
	e.CreatedAt = l.entries[i].CreatedAt
	e.UpdatedAt = &now

	next := append([]Entry(nil), l.entries...)
	next[i] = e
	if err := l.commitLocked(ctx, next); err != nil {
		return Entry{}, fmt.Errorf("update %q: %w", e.ID, err)
	}
	log.Debugf("ledger: updated %s", e.ID)
	return e, nil
}

func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	next := make([]Entry, 0, len(l.entries)-1)
	next = append(next, l.entries[:i]...)
	next = append(next, l.entries[i+1:]...)
	if err := l.commitLocked(ctx, next); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	log.Debugf("ledger: deleted %s", id)
	return nil
}

// commitLocked persists next and only then swaps it in.
func (l *Ledger) commitLocked(ctx context.Context, next []Entry) error {
	if err := kv.SetJSON(ctx, l.kv, Key, next); err != nil {
		log.Errorf("ledger: persist failed: %s", err)
		return err
	}
	l.entries = next
	return nil
}

func (l *Ledger) indexLocked(id string) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) Get(id string) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.entries[i], nil
	}
	return Entry{}, fmt.Errorf("entry %q: %w", id, ErrNotFound)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// All returns a copy of every entry in append order.
func (l *Ledger) All() []Entry {
	return l.filter(func(Entry) bool { return true })
}

// Range returns entries dated within [from, to], compared by calendar date.
func (l *Ledger) Range(from, to time.Time) []Entry {
	lo, hi := from.Format(DateLayout), to.Format(DateLayout)
	return l.filter(func(e Entry) bool {
		return e.Date >= lo && e.Date <= hi
	})
}

// Week returns entries logged against a program week.
func (l *Ledger) Week(week int) []Entry {
	return l.filter(func(e Entry) bool { return e.Week == week })
}

func (l *Ledger) OfType(t EntryType) []Entry {
	return l.filter(func(e Entry) bool { return e.Type == t })
}

func (l *Ledger) filter(keep func(Entry) bool) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
