package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wimm-developers/BreakTime/internal/config"
	"github.com/wimm-developers/BreakTime/internal/visualization"
	"github.com/wimm-developers/BreakTime/internal/work"
)

// parseAt reads the --at override, or returns the current time in loc.
func parseAt(cmd *cobra.Command) (time.Time, error) {
	atStr, _ := cmd.Flags().GetString("at")
	if atStr == "" {
		return time.Now().In(loc), nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, atStr, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time: %s (use YYYY-MM-DD HH:MM)", atStr)
}

func formatDelay(d work.Delay) string {
	m := d.Minutes()
	switch {
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m%60 == 0:
		return fmt.Sprintf("%dh", m/60)
	default:
		return fmt.Sprintf("%dh%02dm", m/60, m%60)
	}
}

var nextCmd = &cobra.Command{
	Use:         "next",
	Aliases:     []string{"n"},
	Short:       "Show when the next break reminder fires",
	Long:        `Compute the next reminder from the current settings. Use --at to ask about another moment.`,
	Annotations: map[string]string{noDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := parseAt(cmd)
		if err != nil {
			return err
		}
		schedule, err := cfg.Schedule()
		if err != nil {
			return err
		}

		delay, err := work.NextReminderDelay(schedule, work.MomentOf(now))
		if errors.Is(err, work.ErrDisabled) {
			fmt.Println("Break reminders are disabled")
			return nil
		}
		if err != nil {
			return err
		}

		fireAt, err := work.NextReminderAt(schedule, now)
		if err != nil {
			return err
		}
		fmt.Printf("Next reminder: %s (in %s, %d min)\n",
			fireAt.Format("Mon Jan 2 15:04"), formatDelay(delay), delay.Minutes())
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:         "preview",
	Aliases:     []string{"p"},
	Short:       "Preview upcoming reminders",
	Long:        `List the next reminders as the daemon would fire them, or draw this week's plan as SVG with --svg.`,
	Annotations: map[string]string{noDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := parseAt(cmd)
		if err != nil {
			return err
		}
		schedule, err := cfg.Schedule()
		if err != nil {
			return err
		}
		if !schedule.Enabled {
			fmt.Println("Break reminders are disabled")
			return nil
		}

		v := visualization.New()

		svgPath, _ := cmd.Flags().GetString("svg")
		if svgPath != "" {
			plan, err := visualization.NewWeekPlan(schedule, now)
			if err != nil {
				return err
			}
			if err := os.WriteFile(svgPath, []byte(v.GenerateWeekSVG(plan)), 0644); err != nil {
				return err
			}
			fmt.Printf("Wrote %d reminders for the week of %s to %s\n",
				len(plan.Reminders), plan.WeekStart.Format("Jan 2"), svgPath)
			return nil
		}

		count, _ := cmd.Flags().GetInt("count")
		if count < 1 {
			return fmt.Errorf("count must be positive")
		}
		reminders, err := work.Upcoming(schedule, now, count)
		if err != nil {
			return err
		}
		fmt.Print(v.TextTimeline(now, reminders))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show current configuration",
	Long:        `Display the effective settings after environment overrides and defaults.`,
	Annotations: map[string]string{noDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule, err := cfg.Schedule()
		if err != nil {
			return err
		}

		shift := "day shift"
		if !schedule.IsDayShift() {
			shift = "night shift"
		}
		enabled := "on"
		if !schedule.Enabled {
			enabled = "off"
		}
		httpAddr := cfg.HTTPAddr
		if httpAddr == "" {
			httpAddr = "off"
		}

		fmt.Printf("File: %s\n", config.Path())
		fmt.Printf("Schedule: %s | %s-%s (%s) | Work days: %s | Every %dmin | Skip: %s\n",
			enabled, cfg.StartTime, cfg.EndTime, shift, schedule.WorkDays, schedule.BreakInterval, schedule.Skip)
		fmt.Printf("Message: %s\n", cfg.Message)
		fmt.Printf("Daemon: DB=%s | Timezone=%s | Log=%s | HTTP=%s | Watch=%s\n",
			cfg.DatabasePath, cfg.Timezone, cfg.LogLevel, httpAddr, cfg.WatchSchedule)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a settings file with the defaults",
	Annotations: map[string]string{noDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.SaveFile(path, config.Default()); err != nil {
			return err
		}
		fmt.Printf("Wrote default settings to %s\n", path)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h", "log"},
	Short:   "Show delivered reminders",
	Long:    `Summarise today's and this week's reminders. Use --entries to list the raw log of the last N days.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().In(loc)

		day, err := trackerService.TodaySummary()
		if err != nil {
			return err
		}
		week, err := trackerService.WeekSummary(now)
		if err != nil {
			return err
		}

		next := "none"
		if day.NextFire != nil {
			next = day.NextFire.Format("15:04")
		}
		last := "none"
		if day.LastFired != nil {
			last = day.LastFired.Format("15:04")
		} else {
			ever, err := trackerService.LastReminder()
			if err != nil {
				return err
			}
			if ever != nil {
				last = ever.Format("Mon Jan 2 15:04")
			}
		}
		fmt.Printf("Today: %s | Reminders: %d | Last: %s | Next: %s\n",
			day.Date.Format("Monday, Jan 2"), day.Reminders, last, next)
		fmt.Printf("Week: %s - %s | Reminders: %d | Days: %d\n",
			week.WeekStart.Format("Jan 2"), week.WeekEnd.Format("Jan 2"), week.Reminders, week.DaysWithReminders)

		days, _ := cmd.Flags().GetInt("entries")
		if days <= 0 {
			return nil
		}
		since := now.AddDate(0, 0, -days)
		entries, err := trackerService.History(since, now)
		if err != nil {
			return err
		}
		delivered, err := trackerService.CountReminders(since, now)
		if err != nil {
			return err
		}
		fmt.Printf("\nLast %d days: %d reminders, %d log entries\n", days, delivered, len(entries))
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-5s", e.At.In(loc).Format("2006-01-02 15:04"), e.Kind)
			if e.FireAt != nil {
				line += fmt.Sprintf("  -> %s (%dmin)", e.FireAt.In(loc).Format("15:04"), e.DelayMinutes)
			}
			if e.Reason != "" {
				line += "  " + e.Reason
			}
			fmt.Println(line)
		}
		return nil
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for breaktime.

To load completions:

Bash:
  $ source <(breaktime completion bash)

Zsh:
  $ breaktime completion zsh > "${fpath[1]}/_breaktime"

Fish:
  $ breaktime completion fish > ~/.config/fish/completions/breaktime.fish

PowerShell:
  PS> breaktime completion powershell > breaktime.ps1
  PS> . breaktime.ps1
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.ExactValidArgs(1),
	Annotations:           map[string]string{noDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletion(os.Stdout)
		}
		return nil
	},
}

func init() {
	nextCmd.Flags().String("at", "", "Compute as if it were this time (YYYY-MM-DD HH:MM)")

	previewCmd.Flags().String("at", "", "Start the preview at this time (YYYY-MM-DD HH:MM)")
	previewCmd.Flags().IntP("count", "n", 10, "Number of reminders to list")
	previewCmd.Flags().String("svg", "", "Write this week's plan as SVG to the given file")

	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing settings file")
	configCmd.AddCommand(configInitCmd)

	historyCmd.Flags().Int("entries", 0, "Also list raw log entries of the last N days")
}
