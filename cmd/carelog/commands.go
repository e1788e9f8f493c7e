package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/carelog/internal/types"
)

// withApp loads configuration, opens the app for the duration of fn and
// routes logs to stderr so that stdout carries only command output.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.Log.Level, "text"))

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(cmd.Context(), a)
}

var eldersCmd = &cobra.Command{
	Use:   "elders",
	Short: "List registered elders",
	Args:  cobra.NoArgs,
	RunE:  runElders,
}

func runElders(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		elders, err := a.journal.ListElders(ctx)
		if err != nil {
			return fmt.Errorf("list elders: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"elders": elders,
				"total":  len(elders),
			})
		}

		if len(elders) == 0 {
			fmt.Fprintln(out, "No elders found.")
			return nil
		}

		w := newTabWriter(out)
		fmt.Fprintln(w, "ID\tNAME\tBIRTH DATE\tGENDER\tCARE LEVEL")
		for _, e := range elders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.BirthDate, e.Gender, e.CareLevel)
		}
		return w.Flush()
	})
}

var (
	taskYear int
	taskWeek int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Recompute and show weekly tasks",
	Long: "Recompute every elder's task for a week and print it. Without --year and\n" +
		"--week the current ISO week is used.",
	Args: cobra.NoArgs,
	RunE: runTasks,
}

func init() {
	tasksCmd.Flags().IntVar(&taskYear, "year", 0, "Year of the week")
	tasksCmd.Flags().IntVar(&taskWeek, "week", 0, "Week number (Monday-based, 0-53)")
	tasksCmd.MarkFlagsRequiredTogether("year", "week")
}

func runTasks(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		var (
			tasks []types.Task
			err   error
		)
		if cmd.Flags().Changed("year") {
			tasks, err = a.journal.WeeklyTasks(ctx, taskYear, taskWeek)
		} else {
			tasks, err = a.journal.ThisWeekTasks(ctx)
		}
		if err != nil {
			return fmt.Errorf("weekly tasks: %w", err)
		}
		return printTasks(cmd.OutOrStdout(), tasks)
	})
}

var (
	reportElder int64
	reportYear  int
	reportWeek  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage weekly reports",
}

var reportBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build (or rebuild) an elder's weekly report",
	Args:  cobra.NoArgs,
	RunE:  runReportBuild,
}

var reportShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a stored weekly report",
	Args:  cobra.NoArgs,
	RunE:  runReportShow,
}

func init() {
	for _, c := range []*cobra.Command{reportBuildCmd, reportShowCmd} {
		c.Flags().Int64Var(&reportElder, "elder", 0, "Elder ID")
		c.Flags().IntVar(&reportYear, "year", 0, "Year of the week")
		c.Flags().IntVar(&reportWeek, "week", 0, "Week number (Monday-based, 0-53)")
		c.MarkFlagRequired("elder")
		c.MarkFlagRequired("year")
		c.MarkFlagRequired("week")
		reportCmd.AddCommand(c)
	}
}

func runReportBuild(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		report, err := a.journal.BuildReport(ctx, reportElder, reportYear, reportWeek)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		return printReport(cmd.OutOrStdout(), report)
	})
}

func runReportShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		report, err := a.journal.Report(ctx, reportElder, reportYear, reportWeek)
		if err != nil {
			return fmt.Errorf("get report: %w", err)
		}
		return printReport(cmd.OutOrStdout(), report)
	})
}
