package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError is one rejected config value, identified by its dotted
// field path such as "pipeline.max_specialists".
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every failure found in one Validate pass so a
// user can fix their config file in a single round.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Pipeline config
	errors = append(errors, c.validatePipeline()...)

	// Validate Reasoning config
	errors = append(errors, c.validateReasoning()...)

	// Validate Routing config
	errors = append(errors, c.validateRouting()...)

	// Validate History config
	errors = append(errors, c.validateHistory()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validatePipeline validates the PipelineConfig
func (c *Config) validatePipeline() []ValidationError {
	var errors []ValidationError

	// Timeout validation
	const maxRunTimeoutSeconds = 600 // 10 minutes

	if c.Pipeline.RunTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.run_timeout_seconds",
			Value:   c.Pipeline.RunTimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Pipeline.RunTimeoutSeconds > maxRunTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "pipeline.run_timeout_seconds",
			Value:   c.Pipeline.RunTimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxRunTimeoutSeconds),
		})
	}
	if c.Pipeline.SpecialistTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.specialist_timeout_seconds",
			Value:   c.Pipeline.SpecialistTimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Pipeline.RunTimeoutSeconds > 0 && c.Pipeline.SpecialistTimeoutSeconds > c.Pipeline.RunTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "pipeline.specialist_timeout_seconds",
			Value:   c.Pipeline.SpecialistTimeoutSeconds,
			Message: "cannot exceed pipeline.run_timeout_seconds",
		})
	}

	// Specialist bound validation
	const maxSpecialistsLimit = 10

	if c.Pipeline.MaxSpecialists < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.max_specialists",
			Value:   c.Pipeline.MaxSpecialists,
			Message: "must be at least 1",
		})
	}
	if c.Pipeline.MaxSpecialists > maxSpecialistsLimit {
		errors = append(errors, ValidationError{
			Field:   "pipeline.max_specialists",
			Value:   c.Pipeline.MaxSpecialists,
			Message: fmt.Sprintf("exceeds maximum of %d", maxSpecialistsLimit),
		})
	}

	// Recommendation cap validation
	const maxRecommendationCap = 7

	if c.Pipeline.RecommendationCap < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.recommendation_cap",
			Value:   c.Pipeline.RecommendationCap,
			Message: "must be at least 1",
		})
	}
	if c.Pipeline.RecommendationCap > maxRecommendationCap {
		errors = append(errors, ValidationError{
			Field:   "pipeline.recommendation_cap",
			Value:   c.Pipeline.RecommendationCap,
			Message: fmt.Sprintf("exceeds maximum of %d", maxRecommendationCap),
		})
	}

	if c.Pipeline.MinQueryTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.min_query_tokens",
			Value:   c.Pipeline.MinQueryTokens,
			Message: "must be at least 1",
		})
	}

	// Confidence thresholds live in [0, 1]
	if c.Pipeline.ClarificationThreshold < 0 || c.Pipeline.ClarificationThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.clarification_threshold",
			Value:   c.Pipeline.ClarificationThreshold,
			Message: "must be between 0 and 1",
		})
	}
	if c.Pipeline.BlockConfidenceThreshold < 0 || c.Pipeline.BlockConfidenceThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.block_confidence_threshold",
			Value:   c.Pipeline.BlockConfidenceThreshold,
			Message: "must be between 0 and 1",
		})
	}

	return errors
}

// validateReasoning validates the ReasoningConfig
func (c *Config) validateReasoning() []ValidationError {
	var errors []ValidationError

	if !IsValidReasoningBackend(c.Reasoning.Backend) {
		errors = append(errors, ValidationError{
			Field:   "reasoning.backend",
			Value:   c.Reasoning.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidReasoningBackends(), ", ")),
		})
	}

	if c.Reasoning.Backend == "http" && c.Reasoning.Endpoint == "" {
		errors = append(errors, ValidationError{
			Field:   "reasoning.endpoint",
			Value:   c.Reasoning.Endpoint,
			Message: "cannot be empty when backend is http",
		})
	}

	if c.Reasoning.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "reasoning.timeout_seconds",
			Value:   c.Reasoning.TimeoutSeconds,
			Message: "must be positive",
		})
	}

	const maxTokensLimit = 64000
	if c.Reasoning.MaxTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "reasoning.max_tokens",
			Value:   c.Reasoning.MaxTokens,
			Message: "must be at least 1",
		})
	}
	if c.Reasoning.MaxTokens > maxTokensLimit {
		errors = append(errors, ValidationError{
			Field:   "reasoning.max_tokens",
			Value:   c.Reasoning.MaxTokens,
			Message: fmt.Sprintf("exceeds maximum of %d", maxTokensLimit),
		})
	}

	return errors
}

// validateRouting validates the RoutingConfig
func (c *Config) validateRouting() []ValidationError {
	var errors []ValidationError

	// Every extra keyword must be a compilable glob pattern
	for specialist, patterns := range c.Routing.ExtraKeywords {
		if specialist == "" {
			errors = append(errors, ValidationError{
				Field:   "routing.extra_keywords",
				Value:   specialist,
				Message: "specialist name cannot be empty",
			})
			continue
		}
		for _, pattern := range patterns {
			if _, err := glob.Compile(pattern); err != nil {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("routing.extra_keywords.%s", specialist),
					Value:   pattern,
					Message: fmt.Sprintf("invalid glob pattern: %v", err),
				})
			}
		}
	}

	if c.Routing.HistoryTurns < 0 {
		errors = append(errors, ValidationError{
			Field:   "routing.history_turns",
			Value:   c.Routing.HistoryTurns,
			Message: "must be non-negative (0 disables routing context)",
		})
	}

	return errors
}

// validateHistory validates the HistoryConfig
func (c *Config) validateHistory() []ValidationError {
	var errors []ValidationError

	if c.History.MaxTurns < 1 {
		errors = append(errors, ValidationError{
			Field:   "history.max_turns",
			Value:   c.History.MaxTurns,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 1 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be at least 1",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative (0 keeps no backups)",
		})
	}

	return errors
}
