package cmd

import (
	"fmt"
	"strings"

	"github.com/campaignops/routeflow/internal/config"
	"github.com/campaignops/routeflow/internal/history"
	"github.com/campaignops/routeflow/internal/logging"
	"github.com/campaignops/routeflow/internal/pipeline"
	"github.com/campaignops/routeflow/internal/reasoning"
	"github.com/campaignops/routeflow/internal/specialist"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Run a query through the analysis pipeline",
	Long: `Run a natural-language campaign question through the pipeline and
print the analysis.

The reasoning backend comes from config (reasoning.backend). With the
"http" backend the API key is read from the environment variable named
by reasoning.api_key_env; without a usable backend the pipeline falls
back to deterministic keyword routing.

Conversation history lives in memory for the lifetime of the process,
so each ask invocation starts fresh. The session ID labels the run in
logs and groups turns for embedders that keep a pipeline alive across
queries.

Examples:
  # Ask about budget pacing
  routeflow ask "what is the budget status for the Quiz campaign"

  # Label the run with a session ID
  routeflow ask -s mysession "how is campaign performance"

  # Show per-stage provenance
  routeflow ask -v "why is delivery behind plan"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askSessionID string
	askUserID    string
	askPlain     bool
	askVerbose   bool
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVarP(&askSessionID, "session", "s", "default", "Session ID recorded on the run")
	askCmd.Flags().StringVarP(&askUserID, "user", "u", "", "User ID recorded on the run")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "Disable styled output")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "Show per-stage provenance and timings")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := config.Get()

	log, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer log.Close()

	completer, err := reasoning.NewFromConfig(cfg.Reasoning)
	if err != nil {
		// Keyword routing and the deterministic fallbacks still work.
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(
			fmt.Sprintf("Reasoning backend unavailable (%v); using keyword routing", err)))
		completer = nil
	}

	p, err := pipeline.New(cfg.Pipeline, specialist.DemoRegistry(), completer,
		pipeline.WithLogger(log),
		pipeline.WithHistory(history.NewStore(cfg.History.MaxTurns), cfg.Routing.HistoryTurns),
		pipeline.WithExtraKeywords(cfg.Routing.ExtraKeywords),
	)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	result, err := p.Execute(cmd.Context(), query, askSessionID, askUserID)
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *pipeline.Result) {
	out := cmd.OutOrStdout()

	if askPlain {
		fmt.Fprintln(out, result.Response)
	} else {
		fmt.Fprintln(out, responseBox.Render(result.Response))
	}

	meta := result.Metadata
	summary := fmt.Sprintf("run %s  confidence %.2f  %dms", result.RunID, result.Confidence, meta.ExecutionTimeMS)
	if len(meta.AgentsInvoked) > 0 {
		names := make([]string, len(meta.AgentsInvoked))
		for i, id := range meta.AgentsInvoked {
			names[i] = string(id)
		}
		summary += "  agents: " + strings.Join(names, ", ")
	}
	if askPlain {
		fmt.Fprintln(out, summary)
	} else {
		fmt.Fprintln(out, mutedStyle.Render(summary))
		if meta.Severity != "" {
			fmt.Fprintln(out, severityStyle(string(meta.Severity)).Render("severity: "+string(meta.Severity)))
		}
	}

	if askVerbose {
		fmt.Fprintln(out)
		for _, step := range result.Provenance {
			fmt.Fprintln(out, mutedStyle.Render("  "+step))
		}
		for _, timing := range meta.StageTimings {
			fmt.Fprintln(out, mutedStyle.Render(
				fmt.Sprintf("  %s: %dms", timing.Stage, timing.Duration.Milliseconds())))
		}
	}
}

// buildLogger creates the run logger from config: rotated file logging when
// a log directory is configured, stderr otherwise.
func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	if cfg.Logging.Dir == "" {
		return logging.NewLogger("", cfg.Logging.Level)
	}
	return logging.NewLoggerWithRotation(cfg.Logging.Dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}
