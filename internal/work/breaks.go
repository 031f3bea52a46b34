package work

// =============================================================================
// BREAK GRID
// =============================================================================
// Reminders fire on a grid anchored at the window start:
//
//	start, start+interval, start+2*interval, ...
//
// The opening instant itself never fires, so the first reminder of a work day
// is start+interval. The interval does not have to divide the window length,
// which leaves a "tail gap" between the last grid tick and the window end.
// =============================================================================

// LastBreakMinute returns the last grid tick at or before the window end.
// For night shifts and for long intervals the value can be below zero; it is
// only ever compared against minutes of the current day.
func (s Schedule) LastBreakMinute() int {
	return s.EndMinute - s.WindowLength()%s.BreakInterval
}

// FirstBreakMinute returns the first reminder of a work day.
func (s Schedule) FirstBreakMinute() int {
	return s.StartMinute + s.BreakInterval
}

// MinutesToNextBreak returns the minutes from now (a minute of the current
// day) to the next grid tick. The result may reach past midnight; whether the
// landing day is a work day is decided by the workday skip.
func (s Schedule) MinutesToNextBreak(now int) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if !validMinute(now) {
		return 0, &ConfigurationError{Field: "now", Value: now, Reason: "must be within 0..1439"}
	}
	return s.minutesToNextBreak(now), nil
}

func (s Schedule) minutesToNextBreak(now int) int {
	interval := s.BreakInterval

	if s.InWindow(now) {
		// Tail gap: past the last tick of today's grid but before the window
		// closes, so the next tick is the first one of the next work day.
		if now > s.LastBreakMinute() && now < s.EndMinute {
			if s.IsDayShift() {
				return s.FirstBreakMinute() + (MinutesPerDay - now)
			}
			return s.FirstBreakMinute() - now
		}
		if s.IsDayShift() {
			return interval - (now-s.StartMinute)%interval
		}
		return interval - (now+(MinutesPerDay-s.StartMinute))%interval
	}

	// After close on a day shift: tomorrow's first tick.
	if s.IsDayShift() && now > s.EndMinute {
		return (MinutesPerDay - now) + s.StartMinute + interval
	}
	// Before the window opens, on either kind of shift.
	return s.StartMinute - now + interval
}
