package work

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the modular day all break arithmetic runs on.
const MinutesPerDay = 24 * 60

// MaxBreakInterval keeps every delay below eight days.
const MaxBreakInterval = MinutesPerDay

// ErrDisabled is returned by NextReminderDelay when reminders are switched off.
// It is the "do not arm a timer" signal and never means a zero delay.
var ErrDisabled = errors.New("break reminders are disabled")

// WorkDays selects which weekdays count as work days.
// The numeric values match the settings codes 1, 2 and 3.
type WorkDays int

const (
	MonFri WorkDays = iota + 1
	MonSat
	MonSun
)

func (w WorkDays) String() string {
	switch w {
	case MonFri:
		return "mon-fri"
	case MonSat:
		return "mon-sat"
	case MonSun:
		return "mon-sun"
	default:
		return "unknown"
	}
}

// Valid reports whether w is one of the known policies.
func (w WorkDays) Valid() bool {
	return w >= MonFri && w <= MonSun
}

// ParseWorkDays accepts the policy names ("mon-fri", "Mon-Sat", "mon-sun")
// as well as the numeric codes "1", "2" and "3".
func ParseWorkDays(s string) (WorkDays, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, err := strconv.Atoi(s); err == nil {
		w := WorkDays(code)
		if !w.Valid() {
			return 0, fmt.Errorf("unknown work days code: %d", code)
		}
		return w, nil
	}
	switch strings.ReplaceAll(s, "_", "-") {
	case "mon-fri", "monfri":
		return MonFri, nil
	case "mon-sat", "monsat":
		return MonSat, nil
	case "mon-sun", "monsun", "all":
		return MonSun, nil
	}
	return 0, fmt.Errorf("unknown work days policy: %q", s)
}

// SkipStrategy decides how a reminder landing on a non-work day is pushed forward.
type SkipStrategy int

const (
	// SkipCoarse adds a whole-day count derived only from the day the
	// calculation runs on (Friday/Saturday rules).
	SkipCoarse SkipStrategy = iota
	// SkipCalendar advances one day at a time until the shift owning the
	// reminder starts on a work day.
	SkipCalendar
)

func (s SkipStrategy) String() string {
	switch s {
	case SkipCoarse:
		return "coarse"
	case SkipCalendar:
		return "calendar"
	default:
		return "unknown"
	}
}

// ParseSkipStrategy parses "coarse" or "calendar". Empty input means coarse.
func ParseSkipStrategy(s string) (SkipStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "coarse":
		return SkipCoarse, nil
	case "calendar":
		return SkipCalendar, nil
	}
	return 0, fmt.Errorf("unknown workday skip strategy: %q", s)
}

// Schedule is the immutable work-schedule value every calculation receives.
// Build a new one whenever the settings change.
type Schedule struct {
	Enabled bool
	// StartMinute and EndMinute are minutes since local midnight (0..1439).
	// Equal values mean a full 24 hour window.
	StartMinute   int
	EndMinute     int
	WorkDays      WorkDays
	BreakInterval int // minutes between reminders, anchored at StartMinute
	Skip          SkipStrategy
}

// Defaults match the values the settings screen shipped with.
const (
	DefaultEnabled       = true
	DefaultStartMinute   = 9 * 60
	DefaultEndMinute     = 17 * 60
	DefaultWorkDays      = MonFri
	DefaultBreakInterval = 60
)

// DefaultSchedule returns the schedule used when no settings exist.
func DefaultSchedule() Schedule {
	return Schedule{
		Enabled:       DefaultEnabled,
		StartMinute:   DefaultStartMinute,
		EndMinute:     DefaultEndMinute,
		WorkDays:      DefaultWorkDays,
		BreakInterval: DefaultBreakInterval,
		Skip:          SkipCoarse,
	}
}

// ConfigurationError is returned when a Schedule violates a precondition of
// the calculator. Callers are expected to sanitize before scheduling.
type ConfigurationError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid schedule: %s=%d: %s", e.Field, e.Value, e.Reason)
}

// Validate checks the calculator preconditions.
func (s Schedule) Validate() error {
	if s.BreakInterval <= 0 {
		return &ConfigurationError{Field: "BreakInterval", Value: s.BreakInterval, Reason: "must be positive"}
	}
	if s.BreakInterval > MaxBreakInterval {
		return &ConfigurationError{Field: "BreakInterval", Value: s.BreakInterval, Reason: "must be at most 1440"}
	}
	if !validMinute(s.StartMinute) {
		return &ConfigurationError{Field: "StartMinute", Value: s.StartMinute, Reason: "must be within 0..1439"}
	}
	if !validMinute(s.EndMinute) {
		return &ConfigurationError{Field: "EndMinute", Value: s.EndMinute, Reason: "must be within 0..1439"}
	}
	if !s.WorkDays.Valid() {
		return &ConfigurationError{Field: "WorkDays", Value: int(s.WorkDays), Reason: "must be 1 (Mon-Fri), 2 (Mon-Sat) or 3 (Mon-Sun)"}
	}
	if s.Skip != SkipCoarse && s.Skip != SkipCalendar {
		return &ConfigurationError{Field: "Skip", Value: int(s.Skip), Reason: "unknown skip strategy"}
	}
	return nil
}

func validMinute(m int) bool {
	return m >= 0 && m < MinutesPerDay
}

// FormatMinute renders a minute-of-day as HH:MM.
func FormatMinute(m int) string {
	m = ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseMinute parses "HH:MM" (or "H:MM") into minutes since midnight.
func ParseMinute(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
