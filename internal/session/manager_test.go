package session

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sadopc/trainr/internal/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testStart = time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC)

// two sets of A (3s work, 2s rest), then one set of B (2s work, 1s rest)
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.WorkoutTemplate{
		{
			ID:   "t",
			Name: "Test",
			Exercises: []catalog.Exercise{
				{ID: "a", Name: "A", Category: catalog.CategoryStrength, Duration: 3, RestTime: 2, Sets: 2, Reps: "10"},
				{ID: "b", Name: "B", Category: catalog.CategoryCore, Duration: 2, RestTime: 1, Sets: 1, Reps: "max"},
			},
		},
		{
			ID:   "norest",
			Name: "No Rest",
			Exercises: []catalog.Exercise{
				{ID: "x", Name: "X", Category: catalog.CategoryCardio, Duration: 2, RestTime: 0, Sets: 2, Reps: "1"},
				{ID: "y", Name: "Y", Category: catalog.CategoryCardio, Duration: 1, RestTime: 0, Sets: 1, Reps: "1"},
			},
		},
	}, nil)
	require.NoError(t, err)
	return c
}

type harness struct {
	clock   *ManualClock
	mgr     *Manager
	records []Record
	snaps   []Snapshot
}

func newHarness(t *testing.T, provider catalog.Provider) *harness {
	t.Helper()
	h := &harness{clock: NewManualClock(testStart)}
	h.mgr = NewManager(provider, h.clock)
	h.mgr.OnFinish(func(r Record) error {
		h.records = append(h.records, r)
		return nil
	})
	h.mgr.Subscribe(func(s Snapshot) {
		h.snaps = append(h.snaps, s)
	})
	return h
}

func (h *harness) current(t *testing.T) Snapshot {
	t.Helper()
	s, ok := h.mgr.Current()
	require.True(t, ok, "expected an active session")
	return s
}

func TestStartInitializesFromFirstExercise(t *testing.T) {
	c := catalog.MustDefault()
	for _, tpl := range c.ListTemplates() {
		t.Run(tpl.ID, func(t *testing.T) {
			h := newHarness(t, c)
			snap, err := h.mgr.Start(tpl.ID)
			require.NoError(t, err)

			assert.Equal(t, 0, snap.ExerciseIndex)
			assert.Equal(t, 1, snap.CurrentSet)
			assert.Equal(t, tpl.Exercises[0].Duration, snap.Countdown)
			assert.Equal(t, PhaseExercising, snap.Phase)
			assert.Equal(t, testStart, snap.StartedAt)
			assert.Equal(t, 1, h.clock.Pending())

			h.mgr.Stop()
			assert.Equal(t, 0, h.clock.Pending())
		})
	}
}

func TestStartUnknownTemplate(t *testing.T) {
	h := newHarness(t, testCatalog(t))

	_, err := h.mgr.Start("missing")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, ok := h.mgr.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, h.clock.Pending())
	assert.Empty(t, h.snaps)
}

func TestFullRunTimeline(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.clock.Tick(2)
	s := h.current(t)
	assert.Equal(t, 1, s.Countdown)
	assert.Equal(t, PhaseExercising, s.Phase)

	// A set 1 done -> rest between sets
	h.clock.Tick(1)
	s = h.current(t)
	assert.Equal(t, PhaseResting, s.Phase)
	assert.Equal(t, 2, s.Countdown)
	assert.Equal(t, 2, s.CurrentSet)
	assert.Equal(t, 0, s.ExerciseIndex)
	require.Len(t, s.Completed, 1)
	assert.Equal(t, 1, s.Completed[0].Set)

	// rest over -> A set 2
	h.clock.Tick(2)
	s = h.current(t)
	assert.Equal(t, PhaseExercising, s.Phase)
	assert.Equal(t, 3, s.Countdown)

	// A set 2 done -> index advances, A's rest precedes B
	h.clock.Tick(3)
	s = h.current(t)
	assert.Equal(t, PhaseResting, s.Phase)
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 1, s.CurrentSet)
	assert.Equal(t, 2, s.Countdown)

	h.clock.Tick(2)
	s = h.current(t)
	assert.Equal(t, PhaseExercising, s.Phase)
	assert.Equal(t, 2, s.Countdown)

	h.clock.Tick(2)
	_, ok := h.mgr.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, h.clock.Pending())

	require.Len(t, h.records, 1)
	rec := h.records[0]
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, "t", rec.TemplateID)
	assert.Equal(t, 12, rec.ElapsedSeconds)
	assert.Len(t, rec.Exercises, 3)
	assert.Equal(t, 3, rec.CompletedCount)
	assert.Equal(t, 2, rec.TotalExercises)
	assert.Equal(t, testStart, rec.StartedAt)
	assert.Equal(t, testStart.Add(12*time.Second), rec.EndedAt)
	assert.NotEmpty(t, rec.ID)

	last := h.snaps[len(h.snaps)-1]
	assert.Equal(t, PhaseCompleted, last.Phase)
	require.NotNil(t, last.EndedAt)
	assert.Equal(t, 2, last.ExerciseIndex)

	// further ticks do nothing
	n := len(h.snaps)
	h.clock.Tick(5)
	assert.Len(t, h.snaps, n)
}

func TestFullRunRecordsEveryPlannedSet(t *testing.T) {
	c := catalog.MustDefault()
	for _, tpl := range c.ListTemplates() {
		t.Run(tpl.ID, func(t *testing.T) {
			h := newHarness(t, c)
			_, err := h.mgr.Start(tpl.ID)
			require.NoError(t, err)

			lastIndex := 0
			h.mgr.Subscribe(func(s Snapshot) {
				assert.GreaterOrEqual(t, s.ExerciseIndex, lastIndex, "index went backwards")
				assert.LessOrEqual(t, s.ExerciseIndex, len(tpl.Exercises))
				assert.GreaterOrEqual(t, s.Countdown, 0)
				if s.ExerciseIndex == len(tpl.Exercises) {
					assert.True(t, s.Phase.Terminal())
				}
				lastIndex = s.ExerciseIndex
			})

			for i := 0; i < 10000 && len(h.records) == 0; i++ {
				h.clock.Tick(1)
			}
			require.Len(t, h.records, 1)
			assert.Len(t, h.records[0].Exercises, tpl.PlannedUnits())
			assert.Equal(t, tpl.PlannedUnits(), h.records[0].CompletedCount)
		})
	}
}

func TestEachTickTransitionsAtMostOnce(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	prev := h.current(t)
	for i := 0; i < 11; i++ {
		h.clock.Tick(1)
		s := h.current(t)
		if s.Phase != prev.Phase {
			assert.Equal(t, 1, prev.Countdown, "phase changed before countdown expired")
		}
		assert.Equal(t, prev.Elapsed+1, s.Elapsed)
		prev = s
	}
}

func TestZeroRestGoesStraightToWork(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("norest")
	require.NoError(t, err)

	h.clock.Tick(2)
	s := h.current(t)
	assert.Equal(t, PhaseExercising, s.Phase)
	assert.Equal(t, 2, s.CurrentSet)
	assert.Equal(t, 2, s.Countdown)

	h.clock.Tick(2)
	s = h.current(t)
	assert.Equal(t, PhaseExercising, s.Phase)
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 1, s.Countdown)

	h.clock.Tick(1)
	require.Len(t, h.records, 1)
	assert.Equal(t, 5, h.records[0].ElapsedSeconds)
	assert.Len(t, h.records[0].Exercises, 3)
}

func TestPauseFreezesCountdownAndElapsed(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.clock.Tick(1)
	h.mgr.Pause()
	frozen := h.current(t)
	require.True(t, frozen.Paused)

	h.clock.Tick(30)
	s := h.current(t)
	assert.Equal(t, frozen.Countdown, s.Countdown)
	assert.Equal(t, frozen.Elapsed, s.Elapsed)
	assert.Equal(t, frozen.Phase, s.Phase)

	h.mgr.Resume()
	h.clock.Tick(1)
	s = h.current(t)
	assert.False(t, s.Paused)
	assert.Equal(t, frozen.Countdown-1, s.Countdown)
	assert.Equal(t, frozen.Elapsed+1, s.Elapsed)
}

func TestTogglePause(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.mgr.TogglePause()
	assert.True(t, h.current(t).Paused)
	h.mgr.TogglePause()
	assert.False(t, h.current(t).Paused)

	// pause twice is a single mutation
	n := len(h.snaps)
	h.mgr.Pause()
	h.mgr.Pause()
	assert.Len(t, h.snaps, n+1)
}

func TestSkipWhileExercising(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.clock.Tick(1)
	h.mgr.Skip()

	s := h.current(t)
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 1, s.CurrentSet)
	assert.Equal(t, PhaseExercising, s.Phase)
	assert.Equal(t, 2, s.Countdown)
	require.Len(t, s.Completed, 1)
	assert.True(t, s.Completed[0].Skipped)
	assert.Equal(t, "a", s.Completed[0].Exercise.ID)
}

func TestSkipWhileResting(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.clock.Tick(3) // rest between A sets
	before := h.current(t)
	require.Equal(t, PhaseResting, before.Phase)
	require.Equal(t, 2, before.CurrentSet)

	h.mgr.Skip()
	s := h.current(t)
	assert.Equal(t, before.ExerciseIndex+1, s.ExerciseIndex)
	assert.Equal(t, 1, s.CurrentSet)
	assert.Equal(t, PhaseExercising, s.Phase)
	require.Len(t, s.Completed, 2)
	assert.True(t, s.Completed[1].Skipped)
	assert.Equal(t, 2, s.Completed[1].Set)
}

func TestSkipLastExerciseCompletes(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.mgr.Skip()
	h.mgr.Skip()

	_, ok := h.mgr.Current()
	assert.False(t, ok)
	require.Len(t, h.records, 1)
	rec := h.records[0]
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Len(t, rec.Exercises, 2)
	assert.Equal(t, 0, rec.CompletedCount)
	assert.Equal(t, 0, rec.ElapsedSeconds)
}

func TestStopAfterOneTick(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.clock.Tick(1)
	assert.NotPanics(t, h.mgr.Stop)

	require.Len(t, h.records, 1)
	rec := h.records[0]
	assert.Equal(t, StatusStopped, rec.Status)
	assert.Equal(t, 1, rec.ElapsedSeconds)
	assert.Empty(t, rec.Exercises)
	assert.Equal(t, PhaseStopped, h.snaps[len(h.snaps)-1].Phase)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestStopElapsedExcludesPausedTime(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	h.clock.Tick(4)
	h.mgr.Pause()
	h.clock.Tick(100)
	h.mgr.Resume()
	h.clock.Tick(2)
	h.mgr.Stop()

	require.Len(t, h.records, 1)
	assert.Equal(t, 6, h.records[0].ElapsedSeconds)
	assert.Len(t, h.records[0].Exercises, 1)
}

func TestCommandsWithoutSessionAreNoOps(t *testing.T) {
	h := newHarness(t, testCatalog(t))

	h.mgr.Pause()
	h.mgr.Resume()
	h.mgr.TogglePause()
	h.mgr.Skip()
	h.mgr.Stop()

	assert.Empty(t, h.snaps)
	assert.Empty(t, h.records)
}

func TestStartReplacesActiveSession(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)
	h.clock.Tick(2)
	oldGen := h.mgr.gen

	snap, err := h.mgr.Start("norest")
	require.NoError(t, err)
	assert.Equal(t, "norest", snap.Template.ID)
	assert.Equal(t, 1, h.clock.Pending(), "old driver must be cancelled")
	assert.Empty(t, h.records, "discarded session is not recorded")

	// a stale driver firing late is ignored
	h.mgr.tick(oldGen)
	assert.Equal(t, 0, h.current(t).Elapsed)

	h.clock.Tick(1)
	assert.Equal(t, 1, h.current(t).Elapsed)
}

func TestFailedStartKeepsExistingSession(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	_, err := h.mgr.Start("t")
	require.NoError(t, err)

	_, err = h.mgr.Start("missing")
	require.Error(t, err)
	assert.Equal(t, "t", h.current(t).Template.ID)
}

func TestFinisherErrorStillClearsSession(t *testing.T) {
	clock := NewManualClock(testStart)
	mgr := NewManager(testCatalog(t), clock)
	var calls int
	mgr.OnFinish(func(Record) error {
		calls++
		return errors.New("store unavailable")
	})
	mgr.OnFinish(func(Record) error {
		calls++
		return nil
	})

	_, err := mgr.Start("t")
	require.NoError(t, err)
	mgr.Stop()

	_, ok := mgr.Current()
	assert.False(t, ok)
	assert.Equal(t, 2, calls)
}

func TestFinisherMayStartNewSession(t *testing.T) {
	clock := NewManualClock(testStart)
	mgr := NewManager(testCatalog(t), clock)
	mgr.OnFinish(func(r Record) error {
		if r.TemplateID == "t" {
			_, err := mgr.Start("norest")
			return err
		}
		return nil
	})

	_, err := mgr.Start("t")
	require.NoError(t, err)
	mgr.Stop()

	s, ok := mgr.Current()
	require.True(t, ok)
	assert.Equal(t, "norest", s.Template.ID)
}

func TestSnapshotIsACopy(t *testing.T) {
	cat := testCatalog(t)
	h := newHarness(t, cat)
	started, err := h.mgr.Start("t")
	require.NoError(t, err)
	started.Template.Exercises[1].Duration = 999
	h.clock.Tick(3)

	s := h.current(t)
	require.Len(t, s.Completed, 1)
	s.Completed[0].Skipped = true
	s.Completed = append(s.Completed, CompletedExercise{})
	s.Template.Exercises[1].Duration = 999

	again := h.current(t)
	assert.Len(t, again.Completed, 1)
	assert.False(t, again.Completed[0].Skipped)
	assert.Equal(t, 2, again.Template.Exercises[1].Duration)

	tpl, ok := cat.Template("t")
	require.True(t, ok)
	assert.Equal(t, 2, tpl.Exercises[1].Duration)

	for i := 0; i < 20 && (again.ExerciseIndex == 0 || again.Phase != PhaseExercising); i++ {
		h.clock.Tick(1)
		again = h.current(t)
	}
	require.Equal(t, 1, again.ExerciseIndex)
	require.Equal(t, PhaseExercising, again.Phase)
	assert.Equal(t, 2, again.Countdown)
}

func TestUnsubscribe(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	var count int32
	unsubscribe := h.mgr.Subscribe(func(Snapshot) { atomic.AddInt32(&count, 1) })

	_, err := h.mgr.Start("t")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))

	unsubscribe()
	h.clock.Tick(1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestUpdatesChannelKeepsLatest(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	updates, cancel := h.mgr.Updates()

	_, err := h.mgr.Start("t")
	require.NoError(t, err)
	h.clock.Tick(2)

	s := <-updates
	assert.Equal(t, 2, s.Elapsed)
	select {
	case <-updates:
		t.Fatal("expected only the latest snapshot to be buffered")
	default:
	}

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)

	// no send on a closed channel after cancel
	assert.NotPanics(t, func() { h.clock.Tick(1) })
}

func TestSnapshotHelpers(t *testing.T) {
	h := newHarness(t, testCatalog(t))
	snap, err := h.mgr.Start("t")
	require.NoError(t, err)

	ex, ok := snap.CurrentExercise()
	require.True(t, ok)
	assert.Equal(t, "a", ex.ID)
	assert.Zero(t, snap.Progress())
	assert.False(t, snap.Resting())

	h.clock.Tick(3)
	s := h.current(t)
	assert.True(t, s.Resting())
	assert.InDelta(t, 1.0/3.0, s.Progress(), 1e-9)
	assert.Equal(t, "REST", s.Phase.String())
}
