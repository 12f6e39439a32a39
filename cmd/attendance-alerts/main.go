package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/app"
	"github.com/noah-isme/terreiro-erp-api/pkg/config"
	"github.com/noah-isme/terreiro-erp-api/pkg/logger"
)

var (
	runTimeout   time.Duration
	referenceDay string
)

var rootCmd = &cobra.Command{
	Use:   "attendance-alerts",
	Short: "Absence alerts and session reminders for the house",
	Long: `attendance-alerts runs the notification sweeps outside the HTTP server.

Use "run" and "reminders" from an external scheduler, or "serve" to keep a
process alive that triggers both on their configured cron schedules.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the attendance alert sweep once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()
			report, err := c.Alerts.RunAttendanceSweep(ctx)
			return printReport(cmd, report, err)
		})
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send reminders for the sessions a few days ahead",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		if referenceDay != "" {
			day, err := time.ParseInLocation("2006-01-02", referenceDay, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			now = day
		}
		return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()
			report, err := c.Reminders.RunSessionReminders(ctx, now)
			return printReport(cmd, report, err)
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Trigger both sweeps on their cron schedules until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
			scheduler, err := newScheduler(ctx, c)
			if err != nil {
				return err
			}
			scheduler.Start()
			c.Logger.Info("scheduler started",
				zap.String("alerts_schedule", c.Config.Alerts.Schedule),
				zap.String("reminders_schedule", c.Config.Reminders.Schedule),
			)
			<-ctx.Done()
			<-scheduler.Stop().Done()
			c.Logger.Info("scheduler stopped")
			return nil
		})
	},
}

func newScheduler(ctx context.Context, c *app.Container) (*cron.Cron, error) {
	cronLog := logger.Cron(c.Logger)
	scheduler := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))

	if _, err := scheduler.AddFunc(c.Config.Alerts.Schedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()
		if _, err := c.Alerts.RunAttendanceSweep(jobCtx); err != nil {
			c.Logger.Error("scheduled attendance sweep failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule attendance sweep: %w", err)
	}

	if _, err := scheduler.AddFunc(c.Config.Reminders.Schedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()
		if _, err := c.Reminders.RunSessionReminders(jobCtx, time.Now()); err != nil {
			c.Logger.Error("scheduled session reminders failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule session reminders: %w", err)
	}

	return scheduler, nil
}

func withContainer(parent context.Context, fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg, "attendance-alerts")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	container, err := app.Build(parent, cfg, logr, "terreiro-alerts")
	if err != nil {
		return err
	}
	defer container.Close()

	return fn(parent, container)
}

// printReport writes the report even when the run stopped early, so failures
// already recorded stay visible next to the returned error.
func printReport[T any](cmd *cobra.Command, report *T, runErr error) error {
	if report == nil {
		return runErr
	}
	if err := printJSON(cmd, report); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "Timeout of a single sweep")
	remindersCmd.Flags().StringVar(&referenceDay, "date", "", "Reference day (YYYY-MM-DD) instead of today")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
