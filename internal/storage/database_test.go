package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndQueryEntries(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	fireAt := base.Add(time.Hour)

	armed := &Entry{Kind: KindArmed, At: base, FireAt: &fireAt, DelayMinutes: 60, Reason: "startup"}
	require.NoError(t, db.InsertEntry(armed))
	assert.NotEmpty(t, armed.ID)

	fired := &Entry{Kind: KindFired, At: fireAt, Message: "Time to take a break!"}
	require.NoError(t, db.InsertEntry(fired))

	entries, err := db.EntriesInRange(base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, KindArmed, entries[0].Kind)
	assert.Equal(t, base, entries[0].At)
	require.NotNil(t, entries[0].FireAt)
	assert.Equal(t, fireAt, *entries[0].FireAt)
	assert.Equal(t, 60, entries[0].DelayMinutes)
	assert.Equal(t, "startup", entries[0].Reason)

	assert.Equal(t, KindFired, entries[1].Kind)
	assert.Nil(t, entries[1].FireAt)
	assert.Equal(t, "Time to take a break!", entries[1].Message)
}

func TestEntriesStoredInUTC(t *testing.T) {
	db := setupTestDB(t)
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2024, 1, 1, 11, 0, 0, 0, loc)

	require.NoError(t, db.InsertEntry(&Entry{Kind: KindFired, At: local}))

	entries, err := db.EntriesInRange(local.Add(-time.Minute), local.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].At.Equal(local))
}

func TestLastEntry(t *testing.T) {
	db := setupTestDB(t)

	last, err := db.LastEntry(KindFired)
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.InsertEntry(&Entry{Kind: KindFired, At: base.Add(time.Duration(i) * time.Hour)}))
	}
	require.NoError(t, db.InsertEntry(&Entry{Kind: KindIdle, At: base.Add(5 * time.Hour)}))

	last, err = db.LastEntry(KindFired)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, base.Add(2*time.Hour), last.At)
}

func TestCountAndDelete(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, db.InsertEntry(&Entry{Kind: KindFired, At: base.AddDate(0, 0, i)}))
	}

	n, err := db.CountInRange(KindFired, base, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := db.DeleteBefore(base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err = db.CountInRange(KindFired, base, base.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInMemoryDatabase(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.InsertEntry(&Entry{Kind: KindIdle}))
	last, err := db.LastEntry(KindIdle)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestDeleteInRangeAndOldest(t *testing.T) {
	db := setupTestDB(t)

	oldest, err := db.OldestEntryTime()
	require.NoError(t, err)
	assert.Nil(t, oldest)

	jan := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.InsertEntry(&Entry{Kind: KindFired, At: feb}))
	require.NoError(t, db.InsertEntry(&Entry{Kind: KindFired, At: jan}))

	oldest, err = db.OldestEntryTime()
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.Equal(t, jan, *oldest)

	removed, err := db.DeleteInRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	oldest, err = db.OldestEntryTime()
	require.NoError(t, err)
	assert.Equal(t, feb, *oldest)
}
