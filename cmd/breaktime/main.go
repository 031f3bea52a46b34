package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wimm-developers/BreakTime/internal/config"
	"github.com/wimm-developers/BreakTime/internal/logger"
	"github.com/wimm-developers/BreakTime/internal/storage"
	"github.com/wimm-developers/BreakTime/internal/tracker"
)

// noDB marks commands that never touch the reminder log.
const noDB = "breaktime/no-db"

var (
	cfg            *config.Config
	loc            *time.Location
	db             *storage.Database
	trackerService *tracker.Tracker
	log            zerolog.Logger
	configPath     string
)

var rootCmd = &cobra.Command{
	Use:   "breaktime",
	Short: "Break reminders during working hours",
	Long: `BreakTime reminds you to take a break at a fixed interval while your work
window is open, and stays quiet outside it and on days off.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if err := os.Setenv("BREAKTIME_CONFIG", configPath); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
		for _, warning := range cfg.Sanitize() {
			log.Warn().Msg(warning)
		}
		loc, err = cfg.Location()
		if err != nil {
			return err
		}

		if cmd.Annotations[noDB] == "true" {
			return nil
		}
		db, err = storage.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open reminder log: %w", err)
		}
		trackerService = tracker.New(db, loc)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func historyPath() string {
	return filepath.Join(filepath.Dir(cfg.DatabasePath), "history")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Settings file (default $BREAKTIME_CONFIG or ~/.breaktime.yaml)")

	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
