package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimm-developers/BreakTime/internal/storage"
)

func setup(t *testing.T) (*Archiver, *storage.Database, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	history := filepath.Join(dir, "history")
	a := New(db, history, time.UTC)
	a.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return a, db, history
}

func insert(t *testing.T, db *storage.Database, kind storage.EntryKind, at time.Time) {
	t.Helper()
	e := &storage.Entry{Kind: kind, At: at}
	if kind == storage.KindFired {
		e.Message = "Time to take a break!"
	}
	require.NoError(t, db.InsertEntry(e))
}

func TestArchiveMonth(t *testing.T) {
	a, db, history := setup(t)

	insert(t, db, storage.KindArmed, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	insert(t, db, storage.KindFired, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	insert(t, db, storage.KindFired, time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC))
	insert(t, db, storage.KindFired, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC))
	insert(t, db, storage.KindIdle, time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC))
	insert(t, db, storage.KindFired, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, a.ArchiveMonth(2024, time.January, false))

	data, err := os.ReadFile(filepath.Join(history, "2024-01.md"))
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "# January 2024")
	assert.Contains(t, md, "| Reminders | 3 |")
	assert.Contains(t, md, "| Days With Reminders | 2 |")
	assert.Contains(t, md, "| Daily Average | 1.50 |")
	assert.Contains(t, md, "| Idle Periods | 1 |")
	assert.Contains(t, md, "| 2024-01-02 | 2 |")
	assert.Contains(t, md, "| 2024-01-03 | 10:00 | Time to take a break! |")
	assert.Contains(t, md, "*Archived: 2024-03-10 12:00*")

	// Without clean the entries stay.
	n, err := db.CountInRange(storage.KindFired, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	content, err := a.ReadArchive(2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, md, content)
}

func TestArchiveMonthEmpty(t *testing.T) {
	a, _, _ := setup(t)

	err := a.ArchiveMonth(2024, time.January, true)
	assert.True(t, errors.Is(err, ErrNoEntries), "got %v", err)

	_, err = a.ReadArchive(2024, time.January)
	assert.Error(t, err)
}

func TestAutoArchivePastMonths(t *testing.T) {
	a, db, history := setup(t)

	insert(t, db, storage.KindFired, time.Date(2023, 12, 5, 10, 0, 0, 0, time.UTC))
	// January is empty.
	insert(t, db, storage.KindFired, time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC))
	// Current month is never archived.
	insert(t, db, storage.KindFired, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	archived, err := a.AutoArchivePastMonths()
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12.md", "2024-02.md"}, archived)

	list, err := a.ListArchives()
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12.md", "2024-02.md"}, list)

	oldest, err := db.OldestEntryTime()
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), *oldest)

	// A second run has nothing left to do.
	archived, err = a.AutoArchivePastMonths()
	require.NoError(t, err)
	assert.Empty(t, archived)
	_, err = os.Stat(filepath.Join(history, "2024-01.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestListArchivesMissingDir(t *testing.T) {
	a, _, _ := setup(t)
	list, err := a.ListArchives()
	require.NoError(t, err)
	assert.Nil(t, list)
}
