package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// earlyExitConfidence is reported for early-exit responses.
const earlyExitConfidence = 0.8

// maxResponseWarnings bounds how many validation warnings surface in the
// response text.
const maxResponseWarnings = 3

// respondStage assembles the user-facing result from whatever state exists
// when it runs, regardless of which branch brought the run here. Precedence:
// clarification, then gate block, then early exit, then the full report.
type respondStage struct{}

func (r *respondStage) Name() Stage { return StageResponse }

func (r *respondStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	response, confidence := buildResponse(state)

	return Update{
		FinalResponse:  ptr(response),
		Confidence:     ptr(confidence),
		ReasoningSteps: []string{"Generated final response"},
	}, SignalContinue, nil
}

func buildResponse(state *RunState) (string, float64) {
	if state.Routing != nil && state.Routing.ClarificationNeeded {
		return state.Routing.ClarificationMessage, 0
	}

	if state.Gate != nil && !state.Gate.Valid {
		return fmt.Sprintf("Unable to process query: %s", state.Gate.Reason), 0
	}

	if state.EarlyExit != nil && state.EarlyExit.Exit {
		text := state.EarlyExit.Response
		if text == "" && state.Diagnosis != nil {
			text = state.Diagnosis.Summary
		}
		return text, earlyExitConfidence
	}

	confidence := 0.8
	if state.RecommendationConfidence != nil {
		confidence = *state.RecommendationConfidence
	}
	return buildReport(state), confidence
}

// buildReport renders the full markdown analysis.
func buildReport(state *RunState) string {
	var parts []string

	parts = append(parts, "# Analysis Results\n")
	parts = append(parts, fmt.Sprintf("**Query**: %s\n", state.Query))

	if diag := state.Diagnosis; diag != nil {
		parts = append(parts, "\n## Diagnosis")
		parts = append(parts, fmt.Sprintf("**Severity**: %s", strings.ToUpper(string(diag.Severity))))
		if diag.Summary != "" {
			parts = append(parts, fmt.Sprintf("\n%s\n", diag.Summary))
		}
		if len(diag.RootCauses) > 0 {
			parts = append(parts, "\n**Root Causes**:")
			for _, cause := range diag.RootCauses {
				parts = append(parts, fmt.Sprintf("- %s", cause))
			}
		}
	}

	if len(state.Validated) > 0 {
		parts = append(parts, "\n## Recommendations")
		for i, rec := range state.Validated {
			parts = append(parts, fmt.Sprintf("\n### %d. [%s] %s",
				i+1, strings.ToUpper(string(rec.Priority)), rec.Action))
			parts = append(parts, fmt.Sprintf("**Why**: %s", rec.Reason))
			if rec.ExpectedImpact != "" {
				parts = append(parts, fmt.Sprintf("**Expected Impact**: %s", rec.ExpectedImpact))
			}
		}
	}

	if len(state.ValidationWarnings) > 0 {
		parts = append(parts, "\n## Notes")
		warnings := state.ValidationWarnings
		if len(warnings) > maxResponseWarnings {
			warnings = warnings[:maxResponseWarnings]
		}
		for _, warning := range warnings {
			parts = append(parts, fmt.Sprintf("- %s", warning))
		}
	}

	return strings.Join(parts, "\n")
}

// displayName renders a specialist identifier for user-facing text, e.g.
// "budget_risk" becomes "Budget Risk".
func displayName[T ~string](id T) string {
	words := strings.Split(string(id), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
