package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/wimm-developers/BreakTime/internal/work"
)

// DefaultMessage is the fixed reminder text.
const DefaultMessage = "Time to take a break!"

type Config struct {
	// Schedule settings
	Enabled       bool   `yaml:"Enabled"`
	StartTime     string `yaml:"StartTime"` // HH:MM
	EndTime       string `yaml:"EndTime"`   // HH:MM
	WorkDays      string `yaml:"WorkDays"`  // mon-fri | mon-sat | mon-sun (or 1, 2, 3)
	BreakInterval int    `yaml:"BreakInterval"`
	WorkdaySkip   string `yaml:"WorkdaySkip"` // coarse | calendar
	Timezone      string `yaml:"Timezone"`

	Message string `yaml:"Message"`

	// Daemon settings
	DatabasePath  string `yaml:"DatabasePath"`
	LogLevel      string `yaml:"LogLevel"`
	LogPretty     bool   `yaml:"LogPretty"`
	HTTPAddr      string `yaml:"HTTPAddr"`
	WatchSchedule string `yaml:"WatchSchedule"`
}

// envOverrides are read from BREAKTIME_* variables (a .env file is honoured).
type envOverrides struct {
	Config       string `envconfig:"CONFIG"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	DatabasePath string `envconfig:"DATABASE_PATH"`
	Timezone     string `envconfig:"TIMEZONE"`
	HTTPAddr     string `envconfig:"HTTP_ADDR"`
}

func readEnv() (envOverrides, error) {
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process("breaktime", &env); err != nil {
		return env, fmt.Errorf("read environment: %w", err)
	}
	return env, nil
}

// Path returns the settings file location: $BREAKTIME_CONFIG or ~/.breaktime.yaml.
func Path() string {
	env, _ := readEnv()
	return pathFrom(env)
}

func pathFrom(env envOverrides) string {
	if env.Config != "" {
		return expandHome(env.Config)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".breaktime.yaml")
}

// Load reads the settings file at Path and applies environment overrides.
func Load() (*Config, error) {
	env, err := readEnv()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFile(pathFrom(env))
	if err != nil {
		return nil, err
	}

	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.DatabasePath != "" {
		cfg.DatabasePath = expandHome(env.DatabasePath)
	}
	if env.Timezone != "" {
		cfg.Timezone = env.Timezone
	}
	if env.HTTPAddr != "" {
		cfg.HTTPAddr = env.HTTPAddr
	}
	return cfg, nil
}

// LoadFile reads one settings file. A missing file yields the defaults;
// keys absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.DatabasePath = expandHome(cfg.DatabasePath)
	return cfg, nil
}

// Save writes cfg to Path.
func Save(cfg *Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes cfg as YAML, creating the parent directory if needed.
func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Default returns the documented default settings.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Enabled:       work.DefaultEnabled,
		StartTime:     work.FormatMinute(work.DefaultStartMinute),
		EndTime:       work.FormatMinute(work.DefaultEndMinute),
		WorkDays:      work.DefaultWorkDays.String(),
		BreakInterval: work.DefaultBreakInterval,
		WorkdaySkip:   work.SkipCoarse.String(),
		Timezone:      "Local",
		Message:       DefaultMessage,
		DatabasePath:  filepath.Join(home, ".breaktime", "data.db"),
		LogLevel:      "info",
		LogPretty:     true,
		WatchSchedule: "@every 30s",
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// Validate checks the configuration and reports the first problem found.
func (c *Config) Validate() error {
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if c.DatabasePath == "" {
		return &ValidationError{Field: "DatabasePath", Message: "Database path is required"}
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if _, err := work.ParseMinute(c.StartTime); err != nil {
		return &ValidationError{Field: "StartTime", Message: err.Error()}
	}
	if _, err := work.ParseMinute(c.EndTime); err != nil {
		return &ValidationError{Field: "EndTime", Message: err.Error()}
	}
	if _, err := work.ParseWorkDays(c.WorkDays); err != nil {
		return &ValidationError{Field: "WorkDays", Message: err.Error()}
	}
	if c.BreakInterval <= 0 || c.BreakInterval > work.MaxBreakInterval {
		return &ValidationError{Field: "BreakInterval", Message: "Break interval must be between 1 and 1440 minutes"}
	}
	if _, err := work.ParseSkipStrategy(c.WorkdaySkip); err != nil {
		return &ValidationError{Field: "WorkdaySkip", Message: err.Error()}
	}
	if _, err := c.Location(); err != nil {
		return &ValidationError{Field: "Timezone", Message: err.Error()}
	}
	return nil
}

// Sanitize replaces every invalid schedule setting with its default and
// returns one warning per replaced field. After Sanitize, Schedule never fails.
func (c *Config) Sanitize() []string {
	def := Default()
	var warnings []string
	reset := func(field, bad, good string) {
		warnings = append(warnings, fmt.Sprintf("%s %q is invalid, using %q", field, bad, good))
	}

	if _, err := work.ParseMinute(c.StartTime); err != nil {
		reset("StartTime", c.StartTime, def.StartTime)
		c.StartTime = def.StartTime
	}
	if _, err := work.ParseMinute(c.EndTime); err != nil {
		reset("EndTime", c.EndTime, def.EndTime)
		c.EndTime = def.EndTime
	}
	if _, err := work.ParseWorkDays(c.WorkDays); err != nil {
		reset("WorkDays", c.WorkDays, def.WorkDays)
		c.WorkDays = def.WorkDays
	}
	if c.BreakInterval <= 0 || c.BreakInterval > work.MaxBreakInterval {
		reset("BreakInterval", fmt.Sprint(c.BreakInterval), fmt.Sprint(def.BreakInterval))
		c.BreakInterval = def.BreakInterval
	}
	if _, err := work.ParseSkipStrategy(c.WorkdaySkip); err != nil {
		reset("WorkdaySkip", c.WorkdaySkip, def.WorkdaySkip)
		c.WorkdaySkip = def.WorkdaySkip
	}
	if _, err := c.Location(); err != nil {
		reset("Timezone", c.Timezone, def.Timezone)
		c.Timezone = def.Timezone
	}
	if strings.TrimSpace(c.Message) == "" {
		c.Message = def.Message
	}
	return warnings
}

// Schedule converts the settings into the immutable value the calculator uses.
func (c *Config) Schedule() (work.Schedule, error) {
	if err := c.validateSchedule(); err != nil {
		return work.Schedule{}, err
	}
	start, _ := work.ParseMinute(c.StartTime)
	end, _ := work.ParseMinute(c.EndTime)
	days, _ := work.ParseWorkDays(c.WorkDays)
	skip, _ := work.ParseSkipStrategy(c.WorkdaySkip)

	return work.Schedule{
		Enabled:       c.Enabled,
		StartMinute:   start,
		EndMinute:     end,
		WorkDays:      days,
		BreakInterval: c.BreakInterval,
		Skip:          skip,
	}, nil
}

// Location resolves Timezone. Empty and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
