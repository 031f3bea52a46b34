// Package work computes when the next break reminder is due.
//
// Everything here is a pure function of a Schedule and a point in time:
// no clock, no I/O, no logging. The scheduler calls NextReminderDelay at
// startup, after every settings change and after every fired reminder.
//
// # Shifts
//
// A window with StartMinute < EndMinute is a day shift. StartMinute >
// EndMinute wraps through midnight (night shift). Equal values mean the
// window covers the whole day.
package work
