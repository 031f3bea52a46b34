package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wimm-developers/BreakTime/internal/archive"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive old months to markdown",
	Long: `Archive past months of the reminder log to markdown files next to the
database, in history/YYYY-MM.md. This keeps SQLite lean.`,
}

var archiveAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Auto-archive all past months",
	Long:  `Archive every complete month before the current one that has no archive yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		archived, err := archive.New(db, historyPath(), loc).AutoArchivePastMonths()
		if err != nil {
			return err
		}

		if len(archived) == 0 {
			fmt.Println("No months to archive (current month or already archived)")
		} else {
			fmt.Printf("Archived %d month(s):\n", len(archived))
			for _, f := range archived {
				fmt.Printf("  - %s\n", f)
			}
		}

		pruneDays, _ := cmd.Flags().GetInt("prune-days")
		if pruneDays <= 0 {
			return nil
		}
		cutoff := time.Now().In(loc).AddDate(0, 0, -pruneDays)
		removed, err := trackerService.Prune(cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d log entries before %s\n", removed, cutoff.Format("2006-01-02"))
		return nil
	},
}

var archiveMonthCmd = &cobra.Command{
	Use:   "month <YYYY-MM>",
	Short: "Archive a specific month",
	Long:  `Archive a specific month to markdown. Use format YYYY-MM (e.g., 2025-01).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := time.Parse("2006-01", args[0])
		if err != nil {
			return fmt.Errorf("invalid format, use YYYY-MM (e.g., 2025-01)")
		}

		clean, _ := cmd.Flags().GetBool("clean")
		if err := archive.New(db, historyPath(), loc).ArchiveMonth(t.Year(), t.Month(), clean); err != nil {
			return err
		}

		fmt.Printf("Archived %s to %s/%d-%02d.md\n", t.Format("January 2006"), historyPath(), t.Year(), t.Month())
		if clean {
			fmt.Println("Database cleaned for this month")
		}
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived months",
	RunE: func(cmd *cobra.Command, args []string) error {
		archives, err := archive.New(db, historyPath(), loc).ListArchives()
		if err != nil {
			return err
		}

		if len(archives) == 0 {
			fmt.Println("No archives found")
			return nil
		}

		fmt.Println("Archived months:")
		for _, a := range archives {
			fmt.Printf("  %s\n", a)
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <YYYY-MM>",
	Short: "Show archived month data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := time.Parse("2006-01", args[0])
		if err != nil {
			return fmt.Errorf("invalid format, use YYYY-MM (e.g., 2025-01)")
		}

		content, err := archive.New(db, historyPath(), loc).ReadArchive(t.Year(), t.Month())
		if err != nil {
			return err
		}

		fmt.Println(content)
		return nil
	},
}

func init() {
	archiveCmd.AddCommand(archiveAutoCmd)
	archiveCmd.AddCommand(archiveMonthCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)

	archiveAutoCmd.Flags().Int("prune-days", 0, "Also drop log entries older than N days")
	archiveMonthCmd.Flags().Bool("clean", false, "Remove archived data from database")
}
