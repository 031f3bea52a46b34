package scheduler

import (
	"context"
	"time"

	"github.com/wimm-developers/BreakTime/internal/work"
)

// Settings is the subset of configuration the scheduler acts on.
type Settings struct {
	Schedule work.Schedule
	Location *time.Location
	Message  string
}

// ConfigSource supplies the current settings. It is read fresh on every
// (re)arm so that edits take effect without restarting.
type ConfigSource interface {
	Settings() (Settings, error)
}

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// TimerArmer owns the single pending one-shot timer. Arm replaces any
// outstanding timer; Cancel is a no-op when nothing is pending.
type TimerArmer interface {
	Arm(d time.Duration, fn func())
	Cancel()
}

// NotificationSink delivers a break reminder to the user.
type NotificationSink interface {
	Notify(ctx context.Context, message string) error
}

// Recorder persists scheduler transitions. The tracker implements it.
type Recorder interface {
	RecordArmed(at, fireAt time.Time, delay work.Delay, reason string) error
	RecordFired(at time.Time, message string) error
	RecordIdle(at time.Time, reason string) error
}

type nopRecorder struct{}

func (nopRecorder) RecordArmed(time.Time, time.Time, work.Delay, string) error { return nil }
func (nopRecorder) RecordFired(time.Time, string) error                      { return nil }
func (nopRecorder) RecordIdle(time.Time, string) error                       { return nil }
