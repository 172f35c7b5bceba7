package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/liweiyi88/pgbackup/config"
	"github.com/liweiyi88/pgbackup/jobresult"
	"github.com/liweiyi88/pgbackup/logger"
	"github.com/liweiyi88/pgbackup/notifier/console"
	"github.com/liweiyi88/pgbackup/runner"
)

var file, cronExpr string
var verbose bool

var rootCmd = &cobra.Command{
	Use:          "pgbackup -f /path/to/config.yaml",
	Short:        "Dump every PostgreSQL database into a verified tar.gz archive with retention.",
	Args:         cobra.ExactArgs(0),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup()
		if err != nil {
			return err
		}

		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backupRunner := runner.NewBackupRunner(cfg)

		if cronExpr != "" {
			return runCron(ctx, cfg, backupRunner)
		}

		result := backupRunner.Run(ctx)
		notify(cfg, result)

		return result.Error
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config and installs the run logger. The returned cleanup
// flushes and closes the log file.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load(file)
	if err != nil {
		return nil, nil, err
	}

	closeLogger, err := logger.Setup(cfg.LogFile, verbose)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := closeLogger(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	return cfg, cleanup, nil
}

// runCron keeps running backups on the given cron schedule until the
// process is interrupted.
func runCron(ctx context.Context, cfg *config.Config, backupRunner *runner.BackupRunner) error {
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Cron(cronExpr).Do(func() {
		result := backupRunner.Run(ctx)
		notify(cfg, result)

		if result.Error != nil {
			slog.Error("scheduled backup failed", slog.Any("error", result.Error))
		}
	})

	if err != nil {
		return fmt.Errorf("fail to schedule backup with expression %s, error: %w", cronExpr, err)
	}

	slog.Info("backup scheduled", slog.Any("cron", cronExpr))
	scheduler.StartAsync()

	<-ctx.Done()
	scheduler.Stop()
	slog.Info("scheduler stopped")

	return nil
}

func notify(cfg *config.Config, result *jobresult.RunResult) {
	if err := console.New().Notify(result); err != nil {
		slog.Error("fail to print result", slog.Any("error", err))
	}

	for _, s := range cfg.Notifier.Slack {
		if err := s.Notify(result); err != nil {
			slog.Error("fail to send slack notification", slog.Any("error", err))
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&file, "file", "f", "", "config yaml file path.")
	rootCmd.MarkPersistentFlagRequired("file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug details of each stage. (optional)")

	rootCmd.Flags().StringVarP(&cronExpr, "cron", "c", "", "run backups periodically on a cron schedule instead of once. (optional)")
}
