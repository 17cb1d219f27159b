// Package session runs a live workout: one active session at a time, advanced by a 1 Hz clock.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/trainr/internal/catalog"
)

var ErrTemplateNotFound = errors.New("workout template not found")

const tickPeriod = time.Second

// Observer receives a snapshot after every mutation. It runs inside the manager's
// critical section and must not call back into the Manager.
type Observer func(Snapshot)

// FinishFunc is called once per finished session, after the session has been cleared.
type FinishFunc func(Record) error

type activeSession struct {
	gen       uint64
	template  catalog.WorkoutTemplate
	startedAt time.Time
	index     int
	set       int
	resting   bool
	paused    bool
	countdown int
	elapsed   int
	completed []CompletedExercise
}

// Manager owns the single active session slot.
type Manager struct {
	mu        sync.Mutex
	templates catalog.Provider
	clock     Clock

	active *activeSession
	handle Handle
	gen    uint64

	observers    map[int]Observer
	nextObserver int
	finishers    []FinishFunc

	newID func() string
}

func NewManager(templates catalog.Provider, clock Clock) *Manager {
	return &Manager{
		templates: templates,
		clock:     clock,
		observers: make(map[int]Observer),
		newID:     uuid.NewString,
	}
}

// OnFinish registers fn to receive the Record of every completed or stopped session.
// Errors are logged; they never undo the clearing of the session.
func (m *Manager) OnFinish(fn FinishFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finishers = append(m.finishers, fn)
}

// Subscribe registers an observer and returns a func that removes it.
func (m *Manager) Subscribe(o Observer) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = o
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// Updates adapts a subscription to a channel. A slow reader only sees the latest snapshot.
// The channel is closed by the returned cancel func.
func (m *Manager) Updates() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	m.mu.Lock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = func(s Snapshot) {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *Manager) findTemplate(id string) (catalog.WorkoutTemplate, bool) {
	for _, t := range m.templates.ListTemplates() {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return catalog.WorkoutTemplate{}, false
}

// Start begins templateID. Any unfinished session is discarded without a history record.
func (m *Manager) Start(templateID string) (Snapshot, error) {
	tpl, ok := m.findTemplate(templateID)
	if !ok {
		return Snapshot{}, fmt.Errorf("start %q: %w", templateID, ErrTemplateNotFound)
	}
	if len(tpl.Exercises) == 0 {
		return Snapshot{}, fmt.Errorf("start %q: template has no exercises", templateID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		log.Infof("discarding unfinished session %q", m.active.template.ID)
		m.cancelClock()
		m.active = nil
	}

	m.gen++
	gen := m.gen
	m.active = &activeSession{
		gen:       gen,
		template:  tpl,
		startedAt: m.clock.Now(),
		set:       1,
		countdown: tpl.Exercises[0].Duration,
	}
	m.handle = m.clock.Schedule(tickPeriod, func() { m.tick(gen) })

	log.Infof("session started: %s", tpl.ID)
	snap := m.snapshotLocked(PhaseExercising, nil)
	m.notify(snap)
	return snap, nil
}

// Current returns a snapshot of the active session, if any.
func (m *Manager) Current() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Snapshot{}, false
	}
	return m.snapshotLocked(m.phaseLocked(), nil), true
}

func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.paused {
		return
	}
	m.active.paused = true
	m.notify(m.snapshotLocked(m.phaseLocked(), nil))
}

func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || !m.active.paused {
		return
	}
	m.active.paused = false
	m.notify(m.snapshotLocked(m.phaseLocked(), nil))
}

func (m *Manager) TogglePause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return
	}
	m.active.paused = !m.active.paused
	m.notify(m.snapshotLocked(m.phaseLocked(), nil))
}

// Skip records the current exercise as skipped and moves to the next one, from either phase.
func (m *Manager) Skip() {
	m.mu.Lock()
	s := m.active
	if s == nil {
		m.mu.Unlock()
		return
	}

	ex := s.template.Exercises[s.index]
	s.completed = append(s.completed, CompletedExercise{
		Exercise:    ex,
		CompletedAt: m.clock.Now(),
		Set:         s.set,
		Skipped:     true,
	})
	s.set = 1
	s.index++
	s.resting = false

	if s.index >= len(s.template.Exercises) {
		rec := m.finishLocked(StatusCompleted)
		m.mu.Unlock()
		m.runFinishers(rec)
		return
	}
	s.countdown = s.template.Exercises[s.index].Duration
	m.notify(m.snapshotLocked(PhaseExercising, nil))
	m.mu.Unlock()
}

// Stop finalizes the active session as stopped with whatever has been recorded so far.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.active == nil {
		m.mu.Unlock()
		return
	}
	rec := m.finishLocked(StatusStopped)
	m.mu.Unlock()
	m.runFinishers(rec)
}

func (m *Manager) tick(gen uint64) {
	m.mu.Lock()
	s := m.active
	// a driver left over from a replaced session must not touch the new one
	if s == nil || s.gen != gen || s.paused {
		m.mu.Unlock()
		return
	}

	if s.countdown > 0 {
		s.countdown--
	}
	s.elapsed++

	if s.countdown > 0 {
		m.notify(m.snapshotLocked(m.phaseLocked(), nil))
		m.mu.Unlock()
		return
	}

	if done := m.advanceLocked(s); done {
		rec := m.finishLocked(StatusCompleted)
		m.mu.Unlock()
		m.runFinishers(rec)
		return
	}
	m.notify(m.snapshotLocked(m.phaseLocked(), nil))
	m.mu.Unlock()
}

// advanceLocked performs the single transition due when a countdown expires.
// It reports whether the session is now complete.
func (m *Manager) advanceLocked(s *activeSession) bool {
	exercises := s.template.Exercises

	if s.resting {
		s.resting = false
		if s.index >= len(exercises) {
			return true
		}
		s.countdown = exercises[s.index].Duration
		return false
	}

	ex := exercises[s.index]
	s.completed = append(s.completed, CompletedExercise{
		Exercise:    ex,
		CompletedAt: m.clock.Now(),
		Set:         s.set,
	})

	if s.set < ex.Sets {
		s.set++
		m.restLocked(s, ex.RestTime)
		return false
	}

	s.set = 1
	s.index++
	if s.index >= len(exercises) {
		return true
	}
	// the finished exercise's rest runs before the next exercise starts
	m.restLocked(s, ex.RestTime)
	return false
}

func (m *Manager) restLocked(s *activeSession, rest int) {
	if rest > 0 {
		s.resting = true
		s.countdown = rest
		return
	}
	s.resting = false
	s.countdown = s.template.Exercises[s.index].Duration
}

// finishLocked clears the active session and returns its record. Observers see the
// terminal snapshot before this returns.
func (m *Manager) finishLocked(status Status) Record {
	s := m.active
	now := m.clock.Now()

	phase := PhaseCompleted
	if status == StatusStopped {
		phase = PhaseStopped
	}
	snap := m.snapshotLocked(phase, &now)

	m.cancelClock()
	m.active = nil

	rec := Record{
		ID:             m.newID(),
		TemplateID:     s.template.ID,
		Name:           s.template.Name,
		Status:         status,
		StartedAt:      s.startedAt,
		EndedAt:        now,
		ElapsedSeconds: s.elapsed,
		Exercises:      snap.Completed,
		TotalExercises: len(s.template.Exercises),
	}
	for _, ce := range rec.Exercises {
		if !ce.Skipped {
			rec.CompletedCount++
		}
	}

	log.Infof("session %s: %s after %ds (%d/%d sets)",
		status, s.template.ID, s.elapsed, rec.CompletedCount, s.template.PlannedUnits())
	m.notify(snap)
	return rec
}

func (m *Manager) runFinishers(rec Record) {
	m.mu.Lock()
	finishers := append([]FinishFunc(nil), m.finishers...)
	m.mu.Unlock()

	for _, fn := range finishers {
		if err := fn(rec); err != nil {
			log.Errorf("session %s finish hook: %s", rec.ID, err)
		}
	}
}

func (m *Manager) cancelClock() {
	if m.handle != nil {
		m.handle.Cancel()
		m.handle = nil
	}
}

func (m *Manager) phaseLocked() Phase {
	if m.active.resting {
		return PhaseResting
	}
	return PhaseExercising
}

func (m *Manager) snapshotLocked(phase Phase, endedAt *time.Time) Snapshot {
	s := m.active
	return Snapshot{
		Template:      s.template.Clone(),
		StartedAt:     s.startedAt,
		ExerciseIndex: s.index,
		CurrentSet:    s.set,
		Phase:         phase,
		Paused:        s.paused,
		Countdown:     s.countdown,
		Elapsed:       s.elapsed,
		Completed:     append([]CompletedExercise(nil), s.completed...),
		EndedAt:       endedAt,
	}
}

func (m *Manager) notify(snap Snapshot) {
	for _, o := range m.observers {
		o(snap)
	}
}
