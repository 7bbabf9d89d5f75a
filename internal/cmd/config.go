package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/campaignops/routeflow/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify RouteFlow configuration",
	Long: `View or modify RouteFlow configuration.

Without arguments, displays the current configuration.
Use subcommands to create a config file or show its location.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/routeflow/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Pipeline:")
	fmt.Fprintf(out, "  run_timeout_seconds:        %d\n", cfg.Pipeline.RunTimeoutSeconds)
	fmt.Fprintf(out, "  specialist_timeout_seconds: %d\n", cfg.Pipeline.SpecialistTimeoutSeconds)
	fmt.Fprintf(out, "  max_specialists:            %d\n", cfg.Pipeline.MaxSpecialists)
	fmt.Fprintf(out, "  recommendation_cap:         %d\n", cfg.Pipeline.RecommendationCap)
	fmt.Fprintf(out, "  min_query_tokens:           %d\n", cfg.Pipeline.MinQueryTokens)
	fmt.Fprintf(out, "  clarification_threshold:    %.2f\n", cfg.Pipeline.ClarificationThreshold)
	fmt.Fprintf(out, "  block_confidence_threshold: %.2f\n", cfg.Pipeline.BlockConfidenceThreshold)
	fmt.Fprintf(out, "  diagnosis_shortcut:         %t\n", cfg.Pipeline.DiagnosisShortcut)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Reasoning:")
	fmt.Fprintf(out, "  backend:         %s\n", cfg.Reasoning.Backend)
	fmt.Fprintf(out, "  endpoint:        %s\n", cfg.Reasoning.Endpoint)
	fmt.Fprintf(out, "  model:           %s\n", cfg.Reasoning.Model)
	fmt.Fprintf(out, "  api_key_env:     %s\n", cfg.Reasoning.APIKeyEnv)
	fmt.Fprintf(out, "  timeout_seconds: %d\n", cfg.Reasoning.TimeoutSeconds)
	fmt.Fprintf(out, "  max_tokens:      %d\n", cfg.Reasoning.MaxTokens)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Routing:")
	fmt.Fprintf(out, "  history_turns: %d\n", cfg.Routing.HistoryTurns)
	if len(cfg.Routing.ExtraKeywords) > 0 {
		fmt.Fprintln(out, "  extra_keywords:")
		for id, patterns := range cfg.Routing.ExtraKeywords {
			fmt.Fprintf(out, "    %s: %s\n", id, strings.Join(patterns, ", "))
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "History:")
	fmt.Fprintf(out, "  max_turns: %d\n", cfg.History.MaxTurns)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Logging:")
	fmt.Fprintf(out, "  enabled:     %t\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level:       %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  dir:         %s\n", cfg.Logging.Dir)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)
	fmt.Fprintf(out, "  compress:    %t\n", cfg.Logging.Compress)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigFile()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile())
	return nil
}

const defaultConfigYAML = `# RouteFlow configuration
# Values shown are the defaults; uncomment to override.

pipeline:
  # run_timeout_seconds: 45
  # specialist_timeout_seconds: 15
  # max_specialists: 3
  # recommendation_cap: 7
  # min_query_tokens: 3
  # clarification_threshold: 0.4
  # block_confidence_threshold: 0.6
  # diagnosis_shortcut: true

reasoning:
  # backend: http          # http or static
  # endpoint: https://api.anthropic.com/v1/messages
  # model: claude-sonnet-4-20250514
  # api_key_env: ANTHROPIC_API_KEY
  # timeout_seconds: 30
  # max_tokens: 1024

routing:
  # history_turns: 6
  # extra_keywords:
  #   budget_risk: ["burn*", "runway"]

history:
  # max_turns: 20

logging:
  # enabled: true
  # level: info
  # dir: ""                # empty logs to stderr
  # max_size_mb: 10
  # max_backups: 3
  # compress: false
`
