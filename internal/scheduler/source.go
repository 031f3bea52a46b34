package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/wimm-developers/BreakTime/internal/config"
)

// FileSource reads the settings file on every call. Invalid fields fall
// back to their defaults with a warning.
type FileSource struct {
	path string
	log  zerolog.Logger
}

// NewFileSource reads path, or the environment-aware default location
// when path is empty.
func NewFileSource(path string, log zerolog.Logger) *FileSource {
	return &FileSource{
		path: path,
		log:  log.With().Str("component", "config").Logger(),
	}
}

func (f *FileSource) load() (*config.Config, error) {
	if f.path == "" {
		return config.Load()
	}
	return config.LoadFile(f.path)
}

func (f *FileSource) Settings() (Settings, error) {
	cfg, err := f.load()
	if err != nil {
		return Settings{}, err
	}

	for _, warning := range cfg.Sanitize() {
		f.log.Warn().Msg(warning)
	}

	schedule, err := cfg.Schedule()
	if err != nil {
		return Settings{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Schedule: schedule,
		Location: loc,
		Message:  cfg.Message,
	}, nil
}
