package work

import "time"

// =============================================================================
// WORK DAY RULES
// =============================================================================
// The work days policy decides which weekdays carry reminders:
//
//	MonFri (1): Monday to Friday
//	MonSat (2): Monday to Saturday
//	MonSun (3): every day
//
// SkipCoarse only looks at the day the calculation runs on and assumes the
// next reminder lands on the following calendar day at most once. SkipCalendar
// walks forward a day at a time instead.
// =============================================================================

// IsWorkDay returns true if day is a work day under policy w.
func IsWorkDay(day time.Weekday, w WorkDays) bool {
	switch w {
	case MonFri:
		return day >= time.Monday && day <= time.Friday
	case MonSat:
		return day != time.Sunday
	case MonSun:
		return true
	}
	return false
}

// DaysToNextWorkDay returns the whole days to add on top of the next break
// offset when the calculation runs on day.
//
//	MonFri: Friday -> 2 (skip Saturday and Sunday), otherwise 0
//	MonSat: Saturday -> 1 (skip Sunday), otherwise 0
//	MonSun: always 0
func DaysToNextWorkDay(day time.Weekday, w WorkDays) int {
	switch {
	case w == MonFri && day == time.Friday:
		return 2
	case w == MonSat && day == time.Saturday:
		return 1
	}
	return 0
}

// MinutesToNextWorkDay is DaysToNextWorkDay expressed in minutes.
func MinutesToNextWorkDay(day time.Weekday, w WorkDays) int {
	return DaysToNextWorkDay(day, w) * MinutesPerDay
}

// calendarSkipDays returns the days a reminder landing offset minutes after
// now must be postponed so that the shift owning it starts on a work day.
// A tick before the window start of a night shift belongs to the shift that
// opened the previous evening.
func (s Schedule) calendarSkipDays(now Moment, offset int) int {
	landing := now.MinuteOfDay + offset
	dayOffset := landing / MinutesPerDay
	if !s.IsDayShift() && s.StartMinute != s.EndMinute && landing%MinutesPerDay < s.StartMinute {
		dayOffset--
	}

	for skip := 0; skip < 7; skip++ {
		owner := time.Weekday((int(now.Weekday) + dayOffset + skip + 7*2) % 7)
		if IsWorkDay(owner, s.WorkDays) {
			return skip
		}
	}
	// Unreachable for valid policies: every policy has at least five work days.
	return 0
}
