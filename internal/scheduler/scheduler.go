package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wimm-developers/BreakTime/internal/work"
)

// State tells whether a reminder timer is pending.
type State string

const (
	Idle  State = "idle"
	Armed State = "armed"
)

// Reasons passed to Reschedule and recorded with every transition.
const (
	ReasonStartup       = "startup"
	ReasonConfigChanged = "config-changed"
	ReasonFired         = "fired"
	ReasonManual        = "manual"
)

type eventKind int

const (
	eventConfigChanged eventKind = iota
	eventFired
)

type event struct {
	kind eventKind
	gen  uint64
}

// Status is a snapshot of the scheduler.
type Status struct {
	State        State      `json:"state"`
	FireAt       *time.Time `json:"fire_at,omitempty"`
	DelayMinutes int        `json:"delay_minutes,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	LastFired    *time.Time `json:"last_fired,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	Generation   uint64     `json:"generation"`
}

type Options struct {
	Source   ConfigSource
	Timer    TimerArmer
	Sink     NotificationSink
	Clock    Clock
	Recorder Recorder
	Logger   zerolog.Logger
}

// Scheduler keeps exactly one break reminder pending while reminders are
// enabled. Every cancel, compute and arm sequence runs under mu.
type Scheduler struct {
	source   ConfigSource
	timer    TimerArmer
	sink     NotificationSink
	clock    Clock
	recorder Recorder
	log      zerolog.Logger

	events chan event
	done   chan struct{}

	mu        sync.Mutex
	state     State
	gen       uint64
	fireAt    time.Time
	delay     work.Delay
	reason    string
	message   string
	lastFired time.Time
	lastErr   error
}

func New(opts Options) *Scheduler {
	log := opts.Logger.With().Str("component", "scheduler").Logger()

	s := &Scheduler{
		source:   opts.Source,
		timer:    opts.Timer,
		sink:     opts.Sink,
		clock:    opts.Clock,
		recorder: opts.Recorder,
		log:      log,
		events:   make(chan event, 8),
		done:     make(chan struct{}),
		state:    Idle,
	}
	if s.timer == nil {
		s.timer = NewAfterFuncTimer()
	}
	if s.sink == nil {
		s.sink = NewLogSink(opts.Logger)
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

// Run arms the first reminder and then serves fire and settings-change
// events until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)

	s.log.Info().Msg("Scheduler started")
	if _, err := s.Reschedule(ReasonStartup); err != nil {
		s.log.Error().Err(err).Msg("Initial schedule failed")
	}

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			s.log.Info().Msg("Scheduler stopped")
			return
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

// ConfigChanged asks the scheduler to recompute with fresh settings.
func (s *Scheduler) ConfigChanged() {
	s.post(event{kind: eventConfigChanged})
}

func (s *Scheduler) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Scheduler) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case eventConfigChanged:
		s.log.Info().Msg("Settings changed")
		if _, err := s.Reschedule(ReasonConfigChanged); err != nil {
			s.log.Error().Err(err).Msg("Reschedule after settings change failed")
		}
	case eventFired:
		s.fired(ctx, ev.gen)
	}
}

func (s *Scheduler) fired(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Armed {
		s.mu.Unlock()
		s.log.Debug().Uint64("generation", gen).Msg("Ignoring stale reminder")
		return
	}
	// The timer runs on the monotonic clock; a lagging wall clock must not
	// place the tick before the minute it was armed for.
	due := s.fireAt
	now := s.clock.Now()
	if now.Before(due) {
		now = due
	}
	msg := s.message
	s.lastFired = now
	s.mu.Unlock()

	if err := s.sink.Notify(ctx, msg); err != nil {
		s.log.Error().Err(err).Msg("Failed to deliver reminder")
	}
	if err := s.recorder.RecordFired(now, msg); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record reminder")
	}

	if _, err := s.reschedule(ReasonFired, due); err != nil {
		s.log.Error().Err(err).Msg("Rearm after reminder failed")
	}
}

// Reschedule cancels the pending reminder, reads the settings and arms a
// new one. Disabled settings leave the scheduler Idle without an error.
func (s *Scheduler) Reschedule(reason string) (Status, error) {
	return s.reschedule(reason, time.Time{})
}

// reschedule computes from the later of the clock reading and notBefore.
func (s *Scheduler) reschedule(reason string, notBefore time.Time) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer.Cancel()
	s.gen++
	prev := s.state
	now := s.clock.Now()
	if now.Before(notBefore) {
		now = notBefore
	}

	settings, err := s.source.Settings()
	if err != nil {
		err = fmt.Errorf("load settings: %w", err)
		s.goIdle(now, prev, reason, err)
		return s.statusLocked(), err
	}
	if settings.Location != nil {
		now = now.In(settings.Location)
	}
	s.message = settings.Message

	delay, err := work.NextReminderDelay(settings.Schedule, work.MomentOf(now))
	if errors.Is(err, work.ErrDisabled) {
		s.goIdle(now, prev, reason, nil)
		s.log.Info().Str("reason", reason).Msg("Reminders disabled")
		return s.statusLocked(), nil
	}
	if err != nil {
		err = fmt.Errorf("compute next reminder: %w", err)
		s.goIdle(now, prev, reason, err)
		return s.statusLocked(), err
	}

	fireAt := now.Truncate(time.Minute).Add(delay.Duration())
	gen := s.gen
	s.timer.Arm(fireAt.Sub(now), func() {
		s.post(event{kind: eventFired, gen: gen})
	})

	s.state = Armed
	s.fireAt = fireAt
	s.delay = delay
	s.reason = reason
	s.lastErr = nil

	if err := s.recorder.RecordArmed(now, fireAt, delay, reason); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record armed reminder")
	}
	s.log.Info().
		Str("reason", reason).
		Int("delay_minutes", delay.Minutes()).
		Time("fire_at", fireAt).
		Msg("Reminder armed")

	return s.statusLocked(), nil
}

func (s *Scheduler) goIdle(now time.Time, prev State, reason string, err error) {
	s.state = Idle
	s.fireAt = time.Time{}
	s.delay = 0
	s.reason = reason
	s.lastErr = err

	if prev == Idle && reason != ReasonStartup {
		return
	}
	if rErr := s.recorder.RecordIdle(now, reason); rErr != nil {
		s.log.Warn().Err(rErr).Msg("Failed to record idle transition")
	}
}

func (s *Scheduler) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer.Cancel()
	s.gen++
	s.state = Idle
	s.fireAt = time.Time{}
	s.delay = 0
}

// Status returns the current state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Scheduler) statusLocked() Status {
	st := Status{
		State:      s.state,
		Reason:     s.reason,
		Generation: s.gen,
	}
	if s.state == Armed {
		fireAt := s.fireAt
		st.FireAt = &fireAt
		st.DelayMinutes = s.delay.Minutes()
	}
	if !s.lastFired.IsZero() {
		lastFired := s.lastFired
		st.LastFired = &lastFired
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
