package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimm-developers/BreakTime/internal/storage"
)

// Monday Jan 1, 2024
var monday = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const message = "Time to take a break!"

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, time.UTC)
}

func TestGetWeekStart(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
	}{
		{"Monday", monday},
		{"Tuesday", monday.AddDate(0, 0, 1)},
		{"Wednesday", monday.AddDate(0, 0, 2)},
		{"Thursday", monday.AddDate(0, 0, 3)},
		{"Friday", monday.AddDate(0, 0, 4)},
		{"Saturday", monday.AddDate(0, 0, 5)},
		{"Sunday", monday.AddDate(0, 0, 6)},
	}

	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, getWeekStart(tt.input).Equal(want), "getWeekStart(%v)", tt.input)
		})
	}
}

func TestNewDefaultsToLocal(t *testing.T) {
	assert.Equal(t, time.Local, New(nil, nil).loc)
}

func TestDaySummary(t *testing.T) {
	tr := newTestTracker(t)
	nine := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, tr.RecordArmed(nine, nine.Add(time.Hour), 60, "startup"))
	require.NoError(t, tr.RecordFired(nine.Add(time.Hour), message))
	require.NoError(t, tr.RecordArmed(nine.Add(time.Hour), nine.Add(2*time.Hour), 60, "fired"))
	require.NoError(t, tr.RecordFired(nine.Add(2*time.Hour), message))
	require.NoError(t, tr.RecordArmed(nine.Add(2*time.Hour), nine.Add(3*time.Hour), 60, "fired"))
	// Next day, must not count.
	require.NoError(t, tr.RecordFired(nine.AddDate(0, 0, 1), message))

	summary, err := tr.DaySummary(monday)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Reminders)
	assert.Equal(t, 3, summary.Rearms)
	require.NotNil(t, summary.LastFired)
	assert.True(t, summary.LastFired.Equal(nine.Add(2*time.Hour)))
	require.NotNil(t, summary.NextFire)
	assert.True(t, summary.NextFire.Equal(nine.Add(3*time.Hour)))
	assert.Len(t, summary.Entries, 5)
}

func TestDaySummaryIdleClearsNextFire(t *testing.T) {
	tr := newTestTracker(t)
	nine := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, tr.RecordArmed(nine, nine.Add(time.Hour), 60, "startup"))
	require.NoError(t, tr.RecordIdle(nine.Add(time.Minute), "config-changed"))

	tr.now = func() time.Time { return monday }
	summary, err := tr.TodaySummary()
	require.NoError(t, err)

	assert.Nil(t, summary.NextFire)
	assert.Equal(t, 1, summary.IdleTransitions)
}

func TestWeekSummary(t *testing.T) {
	tr := newTestTracker(t)

	fires := []time.Time{
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC),
		// Following Monday.
		time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		// Previous Sunday.
		time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC),
	}
	for _, at := range fires {
		require.NoError(t, tr.RecordFired(at, message))
	}

	summary, err := tr.WeekSummary(monday.AddDate(0, 0, 3))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Reminders)
	assert.Equal(t, 3, summary.DaysWithReminders)
	assert.Equal(t, 2, summary.PerDay["2024-01-01"])
}

func TestLastReminder(t *testing.T) {
	tr := newTestTracker(t)

	last, err := tr.LastReminder()
	require.NoError(t, err)
	assert.Nil(t, last)

	ten := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, tr.RecordFired(ten, message))
	require.NoError(t, tr.RecordFired(ten.Add(time.Hour), message))
	require.NoError(t, tr.RecordArmed(ten.Add(2*time.Hour), ten.Add(3*time.Hour), 60, "fired"))

	last, err = tr.LastReminder()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(ten.Add(time.Hour)))
}

func TestCountRemindersAndPrune(t *testing.T) {
	tr := newTestTracker(t)

	for day := 0; day < 5; day++ {
		at := time.Date(2024, 1, 1+day, 10, 0, 0, 0, time.UTC)
		require.NoError(t, tr.RecordFired(at, message))
		require.NoError(t, tr.RecordArmed(at, at.Add(time.Hour), 60, "fired"))
	}

	n, err := tr.CountReminders(monday.AddDate(0, 0, -1), monday.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	removed, err := tr.Prune(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	n, err = tr.CountReminders(monday.AddDate(0, 0, -7), monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
