// Package history keeps the capped, newest-first log of finished workout sessions.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sadopc/trainr/internal/kv"
	"github.com/sadopc/trainr/internal/session"
)

const (
	Key          = "session_history"
	DefaultLimit = 100
)

var ErrNotFound = errors.New("history record not found")

type Store struct {
	mu      sync.RWMutex
	kv      kv.Store
	limit   int
	records []session.Record
}

// New returns an empty store writing through to backend. A limit below 1 uses DefaultLimit.
func New(backend kv.Store, limit int) *Store {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Store{kv: backend, limit: limit}
}

// Load replaces the in-memory list with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	var records []session.Record
	if _, err := kv.GetJSON(ctx, s.kv, Key, &records); err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(records) > s.limit {
		records = records[:s.limit]
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	log.Debugf("history: loaded %d records", len(records))
	return nil
}

// Append prepends rec and evicts past the limit. The in-memory list is updated even
// when persisting fails; the error is returned for the caller to log.
func (s *Store) Append(ctx context.Context, rec session.Record) error {
	s.mu.Lock()
	records := make([]session.Record, 0, min(len(s.records)+1, s.limit))
	records = append(records, rec)
	records = append(records, s.records...)
	if len(records) > s.limit {
		records = records[:s.limit]
	}
	s.records = records
	snapshot := append([]session.Record(nil), records...)
	s.mu.Unlock()

	if err := kv.SetJSON(ctx, s.kv, Key, snapshot); err != nil {
		return fmt.Errorf("append history %s: %w", rec.ID, err)
	}
	return nil
}

// List returns every record, newest first.
func (s *Store) List() []session.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]session.Record(nil), s.records...)
}

func (s *Store) Get(id string) (session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return session.Record{}, fmt.Errorf("record %q: %w", id, ErrNotFound)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

type Stats struct {
	TotalSessions           int
	TotalElapsed            time.Duration
	TotalCompletedExercises int
	SessionsLast7Days       int
	AverageDuration         time.Duration
}

// Stats summarizes the retained records relative to now.
func (s *Store) Stats(now time.Time) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(s.records, now)
}

func Summarize(records []session.Record, now time.Time) Stats {
	var st Stats
	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, r := range records {
		st.TotalSessions++
		st.TotalElapsed += time.Duration(r.ElapsedSeconds) * time.Second
		st.TotalCompletedExercises += r.CompletedCount
		if r.StartedAt.After(weekAgo) {
			st.SessionsLast7Days++
		}
	}
	if st.TotalSessions > 0 {
		st.AverageDuration = st.TotalElapsed / time.Duration(st.TotalSessions)
	}
	return st
}
