package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// earlyExitStage decides, from deterministic rules only, whether the run
// can terminate without generating recommendations.
type earlyExitStage struct{}

func (e *earlyExitStage) Name() Stage { return StageEarlyExit }

func (e *earlyExitStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	decision := shouldExitEarly(state)

	signal := SignalContinue
	step := fmt.Sprintf("Continuing to recommendations: %s", decision.Reason)
	if decision.Exit {
		signal = SignalExit
		step = fmt.Sprintf("Early exit: %s", decision.Reason)
	}

	return Update{
		EarlyExit:      decision,
		ReasoningSteps: []string{step},
	}, signal, nil
}

func shouldExitEarly(state *RunState) *EarlyExitDecision {
	diag := state.Diagnosis
	if diag == nil {
		return &EarlyExitDecision{Reason: "No diagnosis available, recommendations needed"}
	}

	// High and critical findings always flow through to recommendations.
	if diag.Severity.Urgent() {
		return &EarlyExitDecision{
			Reason: fmt.Sprintf("Severity is %s, recommendations needed", diag.Severity),
		}
	}

	// Nothing actionable was found. When the diagnosis shortcut fired, the
	// summary already is the specialist's own answer, so it stands as the
	// terminal text; otherwise an explicit all-clear is built.
	if len(diag.Issues) == 0 && len(diag.RootCauses) == 0 {
		response := ""
		if !diag.Skipped {
			response = buildNoIssuesResponse(state)
		}
		return &EarlyExitDecision{
			Exit:     true,
			Reason:   "No actionable issues found",
			Response: response,
		}
	}

	// Informational queries with minor findings are answered by the
	// diagnosis summary itself.
	if isInformationalQuery(state.Query) && len(diag.Issues) <= 2 {
		return &EarlyExitDecision{
			Exit:   true,
			Reason: "Informational query answered, minimal issues",
		}
	}

	return &EarlyExitDecision{Reason: "Issues found, recommendations needed"}
}

func buildNoIssuesResponse(state *RunState) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Based on your query: %q\n\n", state.Query)
	sb.WriteString("I've analyzed the data and found no significant issues.\n")

	for _, id := range state.InvokedSpecialists() {
		fmt.Fprintf(&sb, "\n**%s**: All metrics within acceptable ranges.\n", displayName(id))
	}

	sb.WriteString("\nEverything looks good! No immediate action required.")
	return sb.String()
}
