package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// LogSink reports reminders through the structured logger.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "notifier").Logger()}
}

func (l *LogSink) Notify(_ context.Context, message string) error {
	l.log.Info().Str("message", message).Msg("Break reminder")
	return nil
}

// WriterSink prints reminders as plain lines, e.g. to a terminal.
type WriterSink struct {
	mu    sync.Mutex
	w     io.Writer
	clock Clock
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, clock: SystemClock{}}
}

func (s *WriterSink) Notify(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.w, "[%s] %s\n", s.clock.Now().Format("15:04"), message)
	return err
}

// MultiSink fans a reminder out to every sink and returns the first error.
type MultiSink []NotificationSink

func (m MultiSink) Notify(ctx context.Context, message string) error {
	var first error
	for _, sink := range m {
		if err := sink.Notify(ctx, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
