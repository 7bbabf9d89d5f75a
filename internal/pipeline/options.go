package pipeline

import (
	"github.com/campaignops/routeflow/internal/history"
	"github.com/campaignops/routeflow/internal/logging"
	"github.com/campaignops/routeflow/internal/specialist"
)

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	logger        *logging.Logger
	history       *history.Store
	historyTurns  int
	profiles      []specialist.Profile
	extraKeywords map[string][]string
}

// WithLogger sets the logger used for run and stage events.
func WithLogger(logger *logging.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// WithHistory attaches a conversation store. Recent turns (up to turns) are
// included as routing context, and each completed run is recorded.
func WithHistory(store *history.Store, turns int) Option {
	return func(c *pipelineConfig) {
		c.history = store
		c.historyTurns = turns
	}
}

// WithProfiles overrides the specialist routing profiles. Defaults to
// specialist.Profiles().
func WithProfiles(profiles []specialist.Profile) Option {
	return func(c *pipelineConfig) {
		c.profiles = profiles
	}
}

// WithExtraKeywords adds per-specialist glob patterns to the fallback
// keyword catalog.
func WithExtraKeywords(extra map[string][]string) Option {
	return func(c *pipelineConfig) {
		c.extraKeywords = extra
	}
}
