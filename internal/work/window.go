package work

// IsDayShift reports whether the work window stays within one calendar day.
// A window with StartMinute == EndMinute is a full day and is handled with
// the wrapping (night shift) arithmetic.
func (s Schedule) IsDayShift() bool {
	return s.StartMinute < s.EndMinute
}

// WindowLength returns the length of the work window in minutes, wrapping
// through midnight for night shifts. A full-day window is 1440 minutes long.
func (s Schedule) WindowLength() int {
	if s.IsDayShift() {
		return s.EndMinute - s.StartMinute
	}
	return s.EndMinute + MinutesPerDay - s.StartMinute
}

// InWindow reports whether minuteOfDay falls inside the work window.
// Both window edges are inclusive.
func (s Schedule) InWindow(minuteOfDay int) bool {
	switch {
	case s.StartMinute == s.EndMinute:
		return true
	case s.IsDayShift():
		return minuteOfDay >= s.StartMinute && minuteOfDay <= s.EndMinute
	default:
		// wrap: [start..1440) U [0..end]
		return minuteOfDay >= s.StartMinute || minuteOfDay <= s.EndMinute
	}
}
