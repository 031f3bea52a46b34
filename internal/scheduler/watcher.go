package scheduler

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Watcher polls the settings file on a cron schedule and calls onChange
// whenever its content differs from the last poll.
type Watcher struct {
	path     string
	onChange func()
	cron     *cron.Cron
	log      zerolog.Logger

	mu   sync.Mutex
	last string
}

func NewWatcher(path string, onChange func(), log zerolog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		cron:     cron.New(),
		log:      log.With().Str("component", "watcher").Logger(),
	}
}

func (w *Watcher) Name() string {
	return "config-watch"
}

// Start records the current content and registers the poll job.
// Schedule examples: "@every 30s", "*/5 * * * *".
func (w *Watcher) Start(schedule string) error {
	hash, err := w.hash()
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.last = hash
	w.mu.Unlock()

	_, err = w.cron.AddFunc(schedule, func() {
		if err := w.Run(); err != nil {
			w.log.Error().Err(err).Str("job", w.Name()).Msg("Job failed")
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.log.Info().Str("schedule", schedule).Str("path", w.path).Msg("Watching settings")
	return nil
}

func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// Run polls once.
func (w *Watcher) Run() error {
	hash, err := w.hash()
	if err != nil {
		return err
	}

	w.mu.Lock()
	changed := hash != w.last
	w.last = hash
	w.mu.Unlock()

	if changed {
		w.log.Debug().Str("path", w.path).Msg("Settings file changed")
		w.onChange()
	}
	return nil
}

// hash returns "" for a missing file.
func (w *Watcher) hash() (string, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
