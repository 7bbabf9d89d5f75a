package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/campaignops/routeflow/internal/config"
	"github.com/campaignops/routeflow/internal/logging"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View pipeline run logs",
	Long: `View and filter structured logs from pipeline runs.

Requires file logging (logging.dir in config). Logs are JSON lines;
this command aggregates, filters, and optionally exports them.

Examples:
  # Show the last 50 entries
  routeflow logs

  # Entries for one run
  routeflow logs --run 04d5b9e2-...

  # Warnings and errors from the routing stage in the last hour
  routeflow logs --level warn --stage routing --since 1h

  # Export everything matching a filter to CSV
  routeflow logs --level error --export errors.csv --format csv`,
	RunE: runLogsCmd,
}

var (
	logsTail       int
	logsLevel      string
	logsRunID      string
	logsStage      string
	logsSpecialist string
	logsSince      string
	logsGrep       string
	logsExport     string
	logsFormat     string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsRunID, "run", "", "Filter by run ID")
	logsCmd.Flags().StringVar(&logsStage, "stage", "", "Filter by pipeline stage")
	logsCmd.Flags().StringVar(&logsSpecialist, "specialist", "", "Filter by specialist")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter entries whose message contains a substring")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "Export matching entries to a file instead of printing")
	logsCmd.Flags().StringVar(&logsFormat, "format", "json", "Export format: json, text, or csv")
}

func runLogsCmd(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cfg.Logging.Dir == "" {
		return fmt.Errorf("file logging is not configured; set logging.dir in %s", config.ConfigFile())
	}

	filter, err := buildLogFilter()
	if err != nil {
		return err
	}

	entries, err := logging.AggregateLogs(cfg.Logging.Dir)
	if err != nil {
		return err
	}
	entries = logging.FilterLogs(entries, filter)

	if logsExport != "" {
		if err := logging.ExportLogEntries(entries, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), logsExport)
		return nil
	}

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	out := cmd.OutOrStdout()
	for _, entry := range entries {
		printLogEntry(out, entry)
	}
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d entries", len(entries))))
	return nil
}

func buildLogFilter() (logging.LogFilter, error) {
	filter := logging.LogFilter{
		Level:           logsLevel,
		RunID:           logsRunID,
		Stage:           logsStage,
		Specialist:      logsSpecialist,
		MessageContains: logsGrep,
	}

	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return logging.LogFilter{}, fmt.Errorf("invalid --since duration %q: %w", logsSince, err)
		}
		filter.StartTime = time.Now().Add(-d)
	}

	return filter, nil
}

func printLogEntry(out io.Writer, entry logging.LogEntry) {
	levelStyled := entry.Level
	switch entry.Level {
	case logging.LevelError:
		levelStyled = errorStyle.Render(entry.Level)
	case logging.LevelWarn:
		levelStyled = warnStyle.Render(entry.Level)
	case logging.LevelDebug:
		levelStyled = mutedStyle.Render(entry.Level)
	}

	line := fmt.Sprintf("%s %s %s", entry.Timestamp.Format("15:04:05.000"), levelStyled, entry.Message)
	if entry.RunID != "" {
		line += mutedStyle.Render(" run=" + shortID(entry.RunID))
	}
	if entry.Stage != "" {
		line += mutedStyle.Render(" stage=" + entry.Stage)
	}
	if entry.Specialist != "" {
		line += mutedStyle.Render(" specialist=" + entry.Specialist)
	}
	fmt.Fprintln(out, line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
