package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete RouteFlow configuration
type Config struct {
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Reasoning ReasoningConfig `mapstructure:"reasoning"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	History   HistoryConfig   `mapstructure:"history"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PipelineConfig controls the pipeline executor and its stages
type PipelineConfig struct {
	// RunTimeoutSeconds is the overall deadline for a single run
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds"`
	// SpecialistTimeoutSeconds is the per-specialist invocation timeout,
	// nested inside the run deadline
	SpecialistTimeoutSeconds int `mapstructure:"specialist_timeout_seconds"`
	// MaxSpecialists caps how many specialists the gate approves per run
	MaxSpecialists int `mapstructure:"max_specialists"`
	// RecommendationCap is the maximum number of recommendations returned
	// after validation (valid range: 1-7)
	RecommendationCap int `mapstructure:"recommendation_cap"`
	// MinQueryTokens is the minimum word count before the gate warns about
	// a very short query
	MinQueryTokens int `mapstructure:"min_query_tokens"`
	// ClarificationThreshold is the routing confidence below which the
	// router asks for clarification instead of selecting specialists
	ClarificationThreshold float64 `mapstructure:"clarification_threshold"`
	// BlockConfidenceThreshold is the routing confidence below which a
	// too-short query is blocked by the gate
	BlockConfidenceThreshold float64 `mapstructure:"block_confidence_threshold"`
	// DiagnosisShortcut enables skipping the reasoning call for
	// single-specialist informational queries
	DiagnosisShortcut bool `mapstructure:"diagnosis_shortcut"`
}

// ReasoningConfig controls the reasoning (LLM) backend
type ReasoningConfig struct {
	// Backend selects the completer implementation
	// Options: "http", "static"
	Backend string `mapstructure:"backend"`
	// Endpoint is the messages API endpoint for the http backend
	Endpoint string `mapstructure:"endpoint"`
	// Model is the model identifier sent to the http backend
	Model string `mapstructure:"model"`
	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `mapstructure:"api_key_env"`
	// TimeoutSeconds bounds a single completion call
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MaxTokens caps completion length
	MaxTokens int `mapstructure:"max_tokens"`
}

// RoutingConfig controls the routing stage
type RoutingConfig struct {
	// ExtraKeywords adds glob patterns per specialist to the fallback
	// keyword catalog, e.g. {"budget_risk": ["underspend*", "pacing*"]}
	ExtraKeywords map[string][]string `mapstructure:"extra_keywords"`
	// HistoryTurns is how many recent conversation turns are included as
	// routing context
	HistoryTurns int `mapstructure:"history_turns"`
}

// HistoryConfig controls conversation history retention
type HistoryConfig struct {
	// MaxTurns is the maximum number of turns kept per session
	MaxTurns int `mapstructure:"max_turns"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is active
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Dir is the log directory; empty logs to stderr
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the log rotation threshold in megabytes
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files
	Compress bool `mapstructure:"compress"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			RunTimeoutSeconds:        45,
			SpecialistTimeoutSeconds: 15,
			MaxSpecialists:           3,
			RecommendationCap:        7,
			MinQueryTokens:           3,
			ClarificationThreshold:   0.4,
			BlockConfidenceThreshold: 0.6,
			DiagnosisShortcut:        true,
		},
		Reasoning: ReasoningConfig{
			Backend:        "http",
			Endpoint:       "https://api.anthropic.com/v1/messages",
			Model:          "claude-sonnet-4-20250514",
			APIKeyEnv:      "ANTHROPIC_API_KEY",
			TimeoutSeconds: 30,
			MaxTokens:      1024,
		},
		Routing: RoutingConfig{
			ExtraKeywords: map[string][]string{},
			HistoryTurns:  6,
		},
		History: HistoryConfig{
			MaxTurns: 20,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// RunTimeout returns the overall run deadline as a time.Duration
func (c *PipelineConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// SpecialistTimeout returns the per-specialist timeout as a time.Duration
func (c *PipelineConfig) SpecialistTimeout() time.Duration {
	return time.Duration(c.SpecialistTimeoutSeconds) * time.Second
}

// Timeout returns the completion call timeout as a time.Duration
func (c *ReasoningConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Pipeline defaults
	viper.SetDefault("pipeline.run_timeout_seconds", defaults.Pipeline.RunTimeoutSeconds)
	viper.SetDefault("pipeline.specialist_timeout_seconds", defaults.Pipeline.SpecialistTimeoutSeconds)
	viper.SetDefault("pipeline.max_specialists", defaults.Pipeline.MaxSpecialists)
	viper.SetDefault("pipeline.recommendation_cap", defaults.Pipeline.RecommendationCap)
	viper.SetDefault("pipeline.min_query_tokens", defaults.Pipeline.MinQueryTokens)
	viper.SetDefault("pipeline.clarification_threshold", defaults.Pipeline.ClarificationThreshold)
	viper.SetDefault("pipeline.block_confidence_threshold", defaults.Pipeline.BlockConfidenceThreshold)
	viper.SetDefault("pipeline.diagnosis_shortcut", defaults.Pipeline.DiagnosisShortcut)

	// Reasoning defaults
	viper.SetDefault("reasoning.backend", defaults.Reasoning.Backend)
	viper.SetDefault("reasoning.endpoint", defaults.Reasoning.Endpoint)
	viper.SetDefault("reasoning.model", defaults.Reasoning.Model)
	viper.SetDefault("reasoning.api_key_env", defaults.Reasoning.APIKeyEnv)
	viper.SetDefault("reasoning.timeout_seconds", defaults.Reasoning.TimeoutSeconds)
	viper.SetDefault("reasoning.max_tokens", defaults.Reasoning.MaxTokens)

	// Routing defaults
	viper.SetDefault("routing.extra_keywords", defaults.Routing.ExtraKeywords)
	viper.SetDefault("routing.history_turns", defaults.Routing.HistoryTurns)

	// History defaults
	viper.SetDefault("history.max_turns", defaults.History.MaxTurns)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load unmarshals the current viper state into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Get returns the loaded configuration, falling back to Default when
// loading fails.
func Get() *Config {
	if cfg, err := Load(); err == nil {
		return cfg
	}
	return Default()
}

// ConfigDir returns the user's config directory, honoring XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "routeflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".routeflow"
	}
	return filepath.Join(home, ".config", "routeflow")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidReasoningBackends returns the list of valid reasoning backend values
func ValidReasoningBackends() []string {
	return []string{"http", "static"}
}

// IsValidReasoningBackend checks if the given backend is valid
func IsValidReasoningBackend(backend string) bool {
	for _, valid := range ValidReasoningBackends() {
		if backend == valid {
			return true
		}
	}
	return false
}
