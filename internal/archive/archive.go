package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wimm-developers/BreakTime/internal/storage"
)

// ErrNoEntries is returned when a month has nothing to archive.
var ErrNoEntries = errors.New("no reminder entries")

// Archiver exports the reminder log month by month to markdown files.
type Archiver struct {
	db          *storage.Database
	historyPath string
	loc         *time.Location
	now         func() time.Time
}

func New(db *storage.Database, historyPath string, loc *time.Location) *Archiver {
	if loc == nil {
		loc = time.Local
	}
	return &Archiver{
		db:          db,
		historyPath: historyPath,
		loc:         loc,
		now:         time.Now,
	}
}

// MonthSummary contains archived month data
type MonthSummary struct {
	Month        time.Time
	Reminders    int
	Rearms       int
	IdlePeriods  int
	DaysActive   int
	DayBreakdown map[string]int
	Fired        []ReminderRecord
}

// ReminderRecord is one delivered reminder.
type ReminderRecord struct {
	Date    string
	Time    string
	Message string
}

// ArchiveMonth writes history/YYYY-MM.md and, when clean is set, removes the
// month from the database.
func (a *Archiver) ArchiveMonth(year int, month time.Month, clean bool) error {
	monthStart, monthEnd := a.monthBounds(year, month)

	entries, err := a.db.EntriesInRange(monthStart, monthEnd)
	if err != nil {
		return fmt.Errorf("failed to get entries: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s %d: %w", month, year, ErrNoEntries)
	}

	summary := a.buildSummary(monthStart, entries)

	if err := os.MkdirAll(a.historyPath, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	if err := os.WriteFile(a.filePath(year, month), []byte(a.generateMarkdown(summary)), 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	if clean {
		if _, err := a.db.DeleteInRange(monthStart, monthEnd); err != nil {
			return fmt.Errorf("failed to clean database: %w", err)
		}
	}

	return nil
}

func (a *Archiver) monthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, a.loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Second)
}

func (a *Archiver) filePath(year int, month time.Month) string {
	return filepath.Join(a.historyPath, fileName(year, month))
}

func fileName(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d.md", year, month)
}

func (a *Archiver) buildSummary(monthStart time.Time, entries []storage.Entry) *MonthSummary {
	summary := &MonthSummary{
		Month:        monthStart,
		DayBreakdown: make(map[string]int),
	}

	for _, e := range entries {
		switch e.Kind {
		case storage.KindArmed:
			summary.Rearms++
		case storage.KindIdle:
			summary.IdlePeriods++
		case storage.KindFired:
			at := e.At.In(a.loc)
			day := at.Format("2006-01-02")
			summary.Reminders++
			summary.DayBreakdown[day]++
			summary.Fired = append(summary.Fired, ReminderRecord{
				Date:    day,
				Time:    at.Format("15:04"),
				Message: e.Message,
			})
		}
	}

	summary.DaysActive = len(summary.DayBreakdown)
	return summary
}

func (a *Archiver) generateMarkdown(summary *MonthSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", summary.Month.Format("January 2006")))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Reminders | %d |\n", summary.Reminders))
	sb.WriteString(fmt.Sprintf("| Days With Reminders | %d |\n", summary.DaysActive))
	sb.WriteString(fmt.Sprintf("| Daily Average | %.2f |\n", float64(summary.Reminders)/float64(max(summary.DaysActive, 1))))
	sb.WriteString(fmt.Sprintf("| Timer Arms | %d |\n", summary.Rearms))
	sb.WriteString(fmt.Sprintf("| Idle Periods | %d |\n", summary.IdlePeriods))
	sb.WriteString("\n")

	sb.WriteString("## Daily Breakdown\n\n")
	sb.WriteString("| Day | Reminders |\n")
	sb.WriteString("|-----|-----------|\n")

	days := make([]string, 0, len(summary.DayBreakdown))
	for d := range summary.DayBreakdown {
		days = append(days, d)
	}
	sort.Strings(days)

	for _, d := range days {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", d, summary.DayBreakdown[d]))
	}
	sb.WriteString("\n")

	sb.WriteString("## Reminders\n\n")
	sb.WriteString("| Date | Time | Message |\n")
	sb.WriteString("|------|------|---------|\n")

	for _, r := range summary.Fired {
		msg := r.Message
		if len(msg) > 40 {
			msg = msg[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", r.Date, r.Time, msg))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("---\n*Archived: %s*\n", a.now().In(a.loc).Format("2006-01-02 15:04")))

	return sb.String()
}

// AutoArchivePastMonths archives every complete month that has entries and
// no archive file yet. It returns the names of the files written.
func (a *Archiver) AutoArchivePastMonths() ([]string, error) {
	now := a.now().In(a.loc)
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, a.loc)

	oldest, err := a.db.OldestEntryTime()
	if err != nil {
		return nil, err
	}
	if oldest == nil {
		return nil, nil
	}

	var archived []string
	o := oldest.In(a.loc)
	for monthStart := time.Date(o.Year(), o.Month(), 1, 0, 0, 0, 0, a.loc); monthStart.Before(currentMonth); monthStart = monthStart.AddDate(0, 1, 0) {
		year, month := monthStart.Year(), monthStart.Month()

		if _, err := os.Stat(a.filePath(year, month)); err == nil {
			continue
		}

		if err := a.ArchiveMonth(year, month, true); err != nil {
			if errors.Is(err, ErrNoEntries) {
				continue
			}
			return archived, err
		}
		archived = append(archived, fileName(year, month))
	}

	return archived, nil
}

// ListArchives returns list of archived months
func (a *Archiver) ListArchives() ([]string, error) {
	entries, err := os.ReadDir(a.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var archives []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			archives = append(archives, e.Name())
		}
	}

	sort.Strings(archives)
	return archives, nil
}

// ReadArchive reads a specific month's archive
func (a *Archiver) ReadArchive(year int, month time.Month) (string, error) {
	data, err := os.ReadFile(a.filePath(year, month))
	if err != nil {
		return "", fmt.Errorf("archive not found: %s", fileName(year, month))
	}
	return string(data), nil
}
