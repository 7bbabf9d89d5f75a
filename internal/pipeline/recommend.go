package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/campaignops/routeflow/internal/reasoning"
)

const recommendationSystemPrompt = "You are a recommendation expert for advertising campaign optimization."

// fallbackRecommendationConfidence is reported when recommendations had to
// be extracted without the reasoning capability.
const fallbackRecommendationConfidence = 0.6

// recommendStage turns the diagnosis into prioritized action items via the
// reasoning capability, with a deterministic extraction fallback.
type recommendStage struct {
	completer reasoning.Completer
}

func newRecommendStage(completer reasoning.Completer) *recommendStage {
	return &recommendStage{completer: completer}
}

func (r *recommendStage) Name() Stage { return StageRecommendation }

func (r *recommendStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	recs, confidence, actionPlan := r.generate(ctx, state)

	return Update{
		Recommendations:          recs,
		RecommendationConfidence: ptr(confidence),
		ActionPlan:               ptr(actionPlan),
		ReasoningSteps: []string{fmt.Sprintf("Generated %d recommendations with confidence %.2f",
			len(recs), confidence)},
	}, SignalContinue, nil
}

func (r *recommendStage) generate(ctx context.Context, state *RunState) ([]Recommendation, float64, string) {
	if r.completer == nil {
		return r.fallback(state)
	}

	reply, err := r.completer.Complete(ctx, recommendationSystemPrompt, buildRecommendationPrompt(state))
	if err != nil {
		return r.fallback(state)
	}

	recs, confidence, actionPlan := parseRecommendationReply(reply)
	if len(recs) == 0 {
		return r.fallback(state)
	}
	if actionPlan == "" {
		actionPlan = "Follow the recommendations in priority order"
	}
	return recs, confidence, actionPlan
}

func buildRecommendationPrompt(state *RunState) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "User query: %q\n\nDiagnosis:\n", state.Query)

	diag := state.Diagnosis
	if diag == nil {
		diag = &Diagnosis{Severity: SeverityMedium}
	}
	fmt.Fprintf(&sb, "- Severity: %s\n", diag.Severity)
	rootCauses := diag.RootCauses
	if len(rootCauses) > 5 {
		rootCauses = rootCauses[:5]
	}
	if len(rootCauses) > 0 {
		fmt.Fprintf(&sb, "- Root Causes: %s\n", strings.Join(rootCauses, ", "))
	} else {
		sb.WriteString("- Root Causes: None identified\n")
	}

	// A couple of specialist findings give the model grounding without
	// inflating the prompt.
	invoked := state.InvokedSpecialists()
	if len(invoked) > 2 {
		invoked = invoked[:2]
	}
	if len(invoked) > 0 {
		sb.WriteString("\nAgent Findings:\n")
		for _, id := range invoked {
			fmt.Fprintf(&sb, "- %s: %s\n", id, truncateRunes(state.Outcomes[id].Response, outcomePreviewRunes))
		}
	}

	sb.WriteString(`
Task: Generate 3-4 prioritized, actionable recommendations that address the root causes.

Format:
RECOMMENDATION 1:
Priority: [high/medium/low]
Action: [Specific action]
Reason: [Why this helps]
Expected Impact: [What improves]

(Continue for 3-4 recommendations)

CONFIDENCE: [0.0-1.0]
ACTION_PLAN: [2-3 sentence summary]

Your recommendations:`)

	return sb.String()
}

// parseRecommendationReply extracts recommendations from the line protocol.
// Entries missing an action, reason, or priority are dropped.
func parseRecommendationReply(reply string) ([]Recommendation, float64, string) {
	var recs []Recommendation
	confidence := 0.8
	actionPlan := ""

	var current *Recommendation
	currentComplete := func() bool {
		return current != nil && current.Action != "" && current.Reason != "" && current.Priority != ""
	}
	flush := func() {
		if currentComplete() {
			recs = append(recs, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "RECOMMENDATION"):
			flush()
			current = &Recommendation{}
		case strings.HasPrefix(line, "Priority:") && current != nil:
			current.Priority = ParsePriority(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "Priority:"))))
		case strings.HasPrefix(line, "Action:") && current != nil:
			current.Action = strings.TrimSpace(strings.TrimPrefix(line, "Action:"))
		case strings.HasPrefix(line, "Reason:") && current != nil:
			current.Reason = strings.TrimSpace(strings.TrimPrefix(line, "Reason:"))
		case strings.HasPrefix(line, "Expected Impact:") && current != nil:
			current.ExpectedImpact = strings.TrimSpace(strings.TrimPrefix(line, "Expected Impact:"))
		case strings.HasPrefix(line, "CONFIDENCE:"):
			if conf, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")), 64); err == nil {
				confidence = clamp01(conf)
			}
		case strings.HasPrefix(line, "ACTION_PLAN:"):
			actionPlan = strings.TrimSpace(strings.TrimPrefix(line, "ACTION_PLAN:"))
		}
	}
	flush()

	return recs, confidence, actionPlan
}

// fallback derives generic recommendations from the diagnosis root causes
// when the reasoning capability is unavailable.
func (r *recommendStage) fallback(state *RunState) ([]Recommendation, float64, string) {
	var recs []Recommendation

	if state.Diagnosis != nil {
		priority := PriorityMedium
		if state.Diagnosis.Severity.Urgent() {
			priority = PriorityHigh
		}
		rootCauses := state.Diagnosis.RootCauses
		if len(rootCauses) > 5 {
			rootCauses = rootCauses[:5]
		}
		for _, cause := range rootCauses {
			recs = append(recs, Recommendation{
				Priority: priority,
				Action:   fmt.Sprintf("Investigate and address: %s", cause),
				Reason:   "Identified as a root cause during diagnosis",
			})
		}
	}

	return recs, fallbackRecommendationConfidence, "Review individual specialist findings"
}
