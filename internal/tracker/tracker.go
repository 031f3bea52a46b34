package tracker

import (
	"time"

	"github.com/wimm-developers/BreakTime/internal/storage"
	"github.com/wimm-developers/BreakTime/internal/work"
)

// Tracker writes scheduler transitions to the reminder log and summarises
// them per day and week.
type Tracker struct {
	db  *storage.Database
	loc *time.Location
	now func() time.Time
}

func New(db *storage.Database, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{
		db:  db,
		loc: loc,
		now: time.Now,
	}
}

func (t *Tracker) RecordArmed(at, fireAt time.Time, delay work.Delay, reason string) error {
	return t.db.InsertEntry(&storage.Entry{
		Kind:         storage.KindArmed,
		At:           at,
		FireAt:       &fireAt,
		DelayMinutes: delay.Minutes(),
		Reason:       reason,
	})
}

func (t *Tracker) RecordFired(at time.Time, message string) error {
	return t.db.InsertEntry(&storage.Entry{
		Kind:    storage.KindFired,
		At:      at,
		Message: message,
	})
}

func (t *Tracker) RecordIdle(at time.Time, reason string) error {
	return t.db.InsertEntry(&storage.Entry{
		Kind:   storage.KindIdle,
		At:     at,
		Reason: reason,
	})
}

func (t *Tracker) TodaySummary() (*DaySummary, error) {
	return t.DaySummary(t.now())
}

// DaySummary reports the calendar day containing day, in the tracker's zone.
func (t *Tracker) DaySummary(day time.Time) (*DaySummary, error) {
	start := startOfDay(day.In(t.loc))
	end := start.AddDate(0, 0, 1).Add(-time.Second)

	entries, err := t.db.EntriesInRange(start, end)
	if err != nil {
		return nil, err
	}

	summary := &DaySummary{
		Date:    start,
		Entries: entries,
	}

	for i := range entries {
		e := &entries[i]
		switch e.Kind {
		case storage.KindFired:
			summary.Reminders++
			at := e.At.In(t.loc)
			summary.LastFired = &at
		case storage.KindArmed:
			summary.Rearms++
			if e.FireAt != nil {
				next := e.FireAt.In(t.loc)
				summary.NextFire = &next
			}
		case storage.KindIdle:
			summary.IdleTransitions++
			summary.NextFire = nil
		}
	}

	return summary, nil
}

// WeekSummary counts delivered reminders per day of the week containing now.
func (t *Tracker) WeekSummary(now time.Time) (*WeekSummary, error) {
	weekStart := getWeekStart(now.In(t.loc))
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Second)

	entries, err := t.db.EntriesInRange(weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	summary := &WeekSummary{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		PerDay:    make(map[string]int),
	}
	for _, e := range entries {
		if e.Kind != storage.KindFired {
			continue
		}
		summary.Reminders++
		summary.PerDay[e.At.In(t.loc).Format("2006-01-02")]++
	}
	summary.DaysWithReminders = len(summary.PerDay)

	return summary, nil
}

// History returns raw log entries in [start, end].
func (t *Tracker) History(start, end time.Time) ([]storage.Entry, error) {
	return t.db.EntriesInRange(start, end)
}

// LastReminder returns when the most recent reminder was delivered, or nil
// when none ever was.
func (t *Tracker) LastReminder() (*time.Time, error) {
	e, err := t.db.LastEntry(storage.KindFired)
	if err != nil || e == nil {
		return nil, err
	}
	at := e.At.In(t.loc)
	return &at, nil
}

func (t *Tracker) CountReminders(start, end time.Time) (int, error) {
	return t.db.CountInRange(storage.KindFired, start, end)
}

// Prune drops log entries recorded before cutoff.
func (t *Tracker) Prune(cutoff time.Time) (int64, error) {
	return t.db.DeleteBefore(cutoff)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// getWeekStart returns midnight of the Monday on or before t.
func getWeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return startOfDay(t.AddDate(0, 0, -weekday+1))
}

type DaySummary struct {
	Date            time.Time
	Reminders       int
	Rearms          int
	IdleTransitions int
	LastFired       *time.Time
	NextFire        *time.Time
	Entries         []storage.Entry
}

type WeekSummary struct {
	WeekStart         time.Time
	WeekEnd           time.Time
	Reminders         int
	PerDay            map[string]int
	DaysWithReminders int
}
