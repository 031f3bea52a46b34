package work

import (
	"fmt"
	"time"
)

// Moment is the local point in time a calculation runs at.
type Moment struct {
	MinuteOfDay int
	Weekday     time.Weekday
}

// MomentOf decomposes t in its own location.
func MomentOf(t time.Time) Moment {
	return Moment{
		MinuteOfDay: t.Hour()*60 + t.Minute(),
		Weekday:     t.Weekday(),
	}
}

func (m Moment) String() string {
	return fmt.Sprintf("%s %s", m.Weekday.String()[:3], FormatMinute(m.MinuteOfDay))
}

// Delay is the number of minutes until the next reminder should fire.
type Delay int

// Minutes returns the delay as a plain int.
func (d Delay) Minutes() int {
	return int(d)
}

// Duration converts the delay for timer APIs.
func (d Delay) Duration() time.Duration {
	return time.Duration(d) * time.Minute
}

func (d Delay) String() string {
	return d.Duration().String()
}

// NextReminderDelay returns how many minutes from now the next break
// reminder should fire. It is a pure function of its inputs and must be
// called fresh for every (re)arm.
//
// It returns ErrDisabled when the schedule is switched off and a
// *ConfigurationError when the schedule is invalid.
func NextReminderDelay(s Schedule, now Moment) (Delay, error) {
	if !s.Enabled {
		return 0, ErrDisabled
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if !validMinute(now.MinuteOfDay) {
		return 0, &ConfigurationError{Field: "now", Value: now.MinuteOfDay, Reason: "must be within 0..1439"}
	}

	minutes := s.minutesToNextBreak(now.MinuteOfDay)
	switch s.Skip {
	case SkipCalendar:
		minutes += s.calendarSkipDays(now, minutes) * MinutesPerDay
	default:
		minutes += MinutesToNextWorkDay(now.Weekday, s.WorkDays)
	}
	return Delay(minutes), nil
}

// NextReminderAt returns the instant the next reminder fires when the
// calculation runs at t. The delay is counted from the start of t's minute so
// that repeated re-arming does not drift by the seconds elapsed.
func NextReminderAt(s Schedule, t time.Time) (time.Time, error) {
	d, err := NextReminderDelay(s, MomentOf(t))
	if err != nil {
		return time.Time{}, err
	}
	return truncateMinute(t).Add(d.Duration()), nil
}

// Upcoming returns the next n reminder instants after from, each one derived
// from the previous fire instant exactly like the scheduler re-arms.
func Upcoming(s Schedule, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]time.Time, 0, n)
	at := from
	for i := 0; i < n; i++ {
		next, err := NextReminderAt(s, at)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		at = next
	}
	return out, nil
}

func truncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}
