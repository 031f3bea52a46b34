package scheduler

import (
	"sync"
	"time"
)

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// AfterFuncTimer arms reminders with time.AfterFunc.
type AfterFuncTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func NewAfterFuncTimer() *AfterFuncTimer {
	return &AfterFuncTimer{}
}

func (a *AfterFuncTimer) Arm(d time.Duration, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(d, fn)
}

// Cancel stops the pending timer. A callback that already started still
// runs; the scheduler discards it by generation.
func (a *AfterFuncTimer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
