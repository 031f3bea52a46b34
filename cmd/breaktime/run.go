package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wimm-developers/BreakTime/internal/archive"
	"github.com/wimm-developers/BreakTime/internal/config"
	"github.com/wimm-developers/BreakTime/internal/scheduler"
	"github.com/wimm-developers/BreakTime/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder daemon",
	Long: `Arm the next break reminder and keep re-arming after every reminder.
Edits to the settings file are picked up by the watcher or on SIGHUP.
With HTTPAddr set, a status API is served as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		quiet, _ := cmd.Flags().GetBool("quiet")
		sinks := scheduler.MultiSink{scheduler.NewLogSink(log)}
		if !quiet {
			sinks = append(sinks, scheduler.NewWriterSink(os.Stdout))
		}

		source := scheduler.NewFileSource("", log)
		sched := scheduler.New(scheduler.Options{
			Source:   source,
			Sink:     sinks,
			Recorder: trackerService,
			Logger:   log,
		})

		watcher := scheduler.NewWatcher(config.Path(), sched.ConfigChanged, log)
		if err := watcher.Start(cfg.WatchSchedule); err != nil {
			return fmt.Errorf("start settings watcher: %w", err)
		}
		defer watcher.Stop()

		go reloadOnHangup(ctx, sched)

		tasks := []func(context.Context){
			func(context.Context) { autoArchive() },
		}
		if cfg.HTTPAddr != "" {
			srv := server.New(server.Config{
				Addr:      cfg.HTTPAddr,
				Log:       log,
				Scheduler: sched,
				Source:    source,
			})
			tasks = append(tasks, func(ctx context.Context) {
				if err := srv.Start(ctx); err != nil {
					log.Error().Err(err).Msg("HTTP server failed")
				}
			})
		}

		runAlongside(ctx, sched.Run, tasks...)
		return nil
	},
}

// runAlongside runs fn and the background tasks, and returns only after
// every task has finished, so nothing outlives the reminder log.
func runAlongside(ctx context.Context, fn func(context.Context), tasks ...func(context.Context)) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task func(context.Context)) {
			defer wg.Done()
			task(ctx)
		}(task)
	}

	fn(ctx)
	wg.Wait()
}

func reloadOnHangup(ctx context.Context, sched *scheduler.Scheduler) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			log.Info().Msg("SIGHUP received, reloading settings")
			sched.ConfigChanged()
		}
	}
}

func autoArchive() {
	archiver := archive.New(db, historyPath(), loc)
	archived, err := archiver.AutoArchivePastMonths()
	if err != nil {
		log.Warn().Err(err).Msg("Auto-archive failed")
		return
	}
	if len(archived) > 0 {
		log.Info().Int("months", len(archived)).Str("path", historyPath()).Msg("Auto-archived past months")
	}
}

func init() {
	runCmd.Flags().BoolP("quiet", "q", false, "Only log reminders, do not print them to stdout")
}
