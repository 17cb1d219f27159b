package progress

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/trainr/internal/kv"
	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/store"
)

var fixedNow = time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC)

// bookFailStore rejects writes to the achievement and record books only.
type bookFailStore struct {
	kv.Store
}

func (b bookFailStore) Set(ctx context.Context, key string, value []byte) error {
	if key == AchievementsKey || key == RecordsKey {
		return errors.New("quota exceeded")
	}
	return b.Store.Set(ctx, key, value)
}

func newTracker(backend kv.Store) *Tracker {
	now := func() time.Time { return fixedNow }
	return NewTracker(ledger.New(backend).WithClock(now), backend).WithClock(now)
}

func fourMileRun(date string, miles float64) ledger.Entry {
	return ledger.Entry{
		Date:      date,
		Week:      2,
		Day:       3,
		Type:      ledger.TypeWorkout,
		Activity:  "4-Mile Run",
		Measures:  ledger.Measures{Distance: ledger.Float(miles), Duration: ledger.Float(36)},
		Completed: true,
	}
}

func TestLogUnlocksAndRecords(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(kv.NewMemory())

	res, err := tr.Log(ctx, fourMileRun("2026-10-10", 4))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Entry.ID)
	require.NotNil(t, res.Record)
	assert.Nil(t, res.Record.PreviousRecord)

	var ids []string
	for _, a := range res.Unlocked {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, "first-workout")
}

func TestPersonalRecordReplacement(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(kv.NewMemory())

	_, err := tr.Log(ctx, fourMileRun("2026-10-10", 4))
	require.NoError(t, err)

	res, err := tr.Log(ctx, fourMileRun("2026-10-12", 4.3))
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	require.NotNil(t, res.Record.PreviousRecord)
	assert.Equal(t, 4.0, *res.Record.PreviousRecord)

	res, err = tr.Log(ctx, fourMileRun("2026-10-14", 4.3))
	require.NoError(t, err)
	assert.Nil(t, res.Record, "a tie must not replace the record")

	records := tr.PersonalRecords()
	require.Len(t, records, 1)
	assert.Equal(t, 4.3, records[0].Value)
	assert.Equal(t, "2026-10-12", records[0].Date)
}

func TestAchievementUnlockDateIsStable(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(kv.NewMemory())

	_, err := tr.Log(ctx, fourMileRun("2026-10-10", 4))
	require.NoError(t, err)

	tr.now = func() time.Time { return fixedNow.Add(48 * time.Hour) }
	res, err := tr.Log(ctx, ledger.Entry{
		Date: "2026-10-12", Week: 2, Day: 5, Type: ledger.TypeRecovery,
		Measures: ledger.Measures{SleepHours: ledger.Float(6)},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Unlocked)

	for _, a := range tr.Achievements() {
		if a.ID == "first-workout" {
			require.True(t, a.Unlocked())
			assert.Equal(t, fixedNow, *a.UnlockedAt)
		}
	}
}

func TestBooksSurviveReload(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewMemory()
	require.NoError(t, err)
	defer db.Close()

	tr := newTracker(db)
	_, err = tr.Log(ctx, fourMileRun("2026-10-10", 4))
	require.NoError(t, err)

	reloaded := NewTracker(ledger.New(db), db)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 1, reloaded.Ledger().Len())
	require.Len(t, reloaded.PersonalRecords(), 1)

	var unlocked int
	for _, a := range reloaded.Achievements() {
		if a.Unlocked() {
			unlocked++
			assert.True(t, fixedNow.Equal(*a.UnlockedAt))
		}
	}
	assert.Positive(t, unlocked)
}

func TestBookPersistFailureDoesNotFailLog(t *testing.T) {
	tr := newTracker(bookFailStore{kv.NewMemory()})
	res, err := tr.Log(context.Background(), fourMileRun("2026-10-10", 4))
	require.NoError(t, err)
	assert.NotNil(t, res.Record)
	assert.Equal(t, 1, tr.Ledger().Len())
}

func TestInvalidEntryIsRejected(t *testing.T) {
	tr := newTracker(kv.NewMemory())
	_, err := tr.Log(context.Background(), ledger.Entry{Date: "2026-10-10", Week: 2, Day: 1, Type: ledger.TypeWorkout})
	assert.ErrorIs(t, err, ledger.ErrInvalidEntry)
	assert.Empty(t, tr.PersonalRecords())
}

func TestDeleteRebuildsRecords(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(kv.NewMemory())

	_, err := tr.Log(ctx, fourMileRun("2026-10-10", 4))
	require.NoError(t, err)
	best, err := tr.Log(ctx, fourMileRun("2026-10-12", 6))
	require.NoError(t, err)

	require.NoError(t, tr.Delete(ctx, best.Entry.ID))
	records := tr.PersonalRecords()
	require.Len(t, records, 1)
	assert.Equal(t, 4.0, records[0].Value)
	assert.Nil(t, records[0].PreviousRecord)

	// achievements never re-lock
	for _, a := range tr.Achievements() {
		if a.ID == "first-workout" {
			assert.True(t, a.Unlocked())
		}
	}

	assert.ErrorIs(t, tr.Delete(ctx, "missing"), ledger.ErrNotFound)
}

func TestUpdateRebuildsRecords(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(kv.NewMemory())

	res, err := tr.Log(ctx, fourMileRun("2026-10-10", 4))
	require.NoError(t, err)

	e := res.Entry
	e.Activity = strings.Replace(e.Activity, "Run", "Ruck", 1)
	_, err = tr.Update(ctx, e)
	require.NoError(t, err)

	records := tr.PersonalRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "ruck", records[0].Discipline)
}
