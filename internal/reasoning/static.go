package reasoning

import (
	"context"
	"sync"

	rferrors "github.com/campaignops/routeflow/internal/errors"
)

// StaticCompleter returns a fixed reply to every prompt. It backs the
// "static" reasoning backend, which keeps the pipeline usable without any
// API access: stages receive an unparsable reply and take their
// deterministic fallbacks.
type StaticCompleter struct {
	Reply string
	Err   error
}

func (s *StaticCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	if s.Reply == "" {
		return "", rferrors.NewReasoningError("no reply configured", rferrors.ErrReasoningEmpty)
	}
	return s.Reply, nil
}

// ScriptedCompleter returns queued replies in order, then fails. Intended
// for tests that drive multi-stage runs through specific reasoning output.
type ScriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	// Prompts records every prompt received, in call order.
	Prompts []string
}

// NewScriptedCompleter queues the given replies.
func NewScriptedCompleter(replies ...string) *ScriptedCompleter {
	return &ScriptedCompleter{replies: replies}
}

func (s *ScriptedCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	if len(s.replies) == 0 {
		return "", rferrors.NewReasoningError("script exhausted", rferrors.ErrReasoningUnavailable)
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

// Calls returns how many completions have been requested so far.
func (s *ScriptedCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

var (
	_ Completer = (*StaticCompleter)(nil)
	_ Completer = (*ScriptedCompleter)(nil)
)
