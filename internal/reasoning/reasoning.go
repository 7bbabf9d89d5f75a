// Package reasoning provides the language-model capability the pipeline
// stages call for routing, diagnosis, and recommendation generation. Every
// caller must tolerate completion failure; stages fall back to
// deterministic behavior when the completer is unavailable.
package reasoning

import "context"

// Completer produces a text completion for a prompt. Implementations must
// be safe for concurrent use.
type Completer interface {
	// Complete returns the model's reply to prompt. system may be empty.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Func adapts a function to the Completer interface.
type Func func(ctx context.Context, system, prompt string) (string, error)

func (f Func) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}
