package reasoning

import (
	"fmt"

	"github.com/campaignops/routeflow/internal/config"
)

// ErrUnknownBackend is returned when the configured backend is unsupported.
var ErrUnknownBackend = fmt.Errorf("unknown reasoning backend")

// NewFromConfig builds a Completer from configuration.
func NewFromConfig(cfg config.ReasoningConfig) (Completer, error) {
	switch cfg.Backend {
	case "http", "":
		return NewHTTPCompleter(cfg)
	case "static":
		return &StaticCompleter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
