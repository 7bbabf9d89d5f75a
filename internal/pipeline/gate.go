package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/campaignops/routeflow/internal/specialist"
)

// gateStage validates the routing decision with deterministic business
// rules before any specialist is invoked. It never calls the reasoning
// capability.
type gateStage struct {
	registry *specialist.Registry
	// minQueryTokens is the word count below which a query is considered
	// very short.
	minQueryTokens int
	// maxSpecialists caps the approved set.
	maxSpecialists int
	// blockConfidenceThreshold blocks short queries routed with low
	// confidence.
	blockConfidenceThreshold float64
	// lowConfidenceThreshold flags (but does not block) weak routing.
	lowConfidenceThreshold float64
}

func newGateStage(registry *specialist.Registry, minQueryTokens, maxSpecialists int, blockThreshold, lowThreshold float64) *gateStage {
	return &gateStage{
		registry:                 registry,
		minQueryTokens:           minQueryTokens,
		maxSpecialists:           maxSpecialists,
		blockConfidenceThreshold: blockThreshold,
		lowConfidenceThreshold:   lowThreshold,
	}
}

func (g *gateStage) Name() Stage { return StageGate }

func (g *gateStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	routing := state.Routing
	if routing == nil {
		routing = &RoutingDecision{}
	}

	result := g.validate(state.Query, routing.Selected, routing.Confidence)

	signal := SignalContinue
	if !result.Valid {
		signal = SignalBlock
	}

	return Update{
		Gate: result,
		ReasoningSteps: []string{fmt.Sprintf("Gate: approved %d agents, %d warnings",
			len(result.Approved), len(result.Warnings))},
	}, signal, nil
}

func (g *gateStage) validate(query string, selected []specialist.ID, confidence float64) *GateResult {
	var warnings []string
	valid := true
	reason := "Validation passed"

	// Rule 1: very short queries are blocked when routing confidence is
	// also low; otherwise only warned about.
	words := strings.Fields(query)
	if len(words) < g.minQueryTokens {
		warnings = append(warnings, fmt.Sprintf("Query is very short (%d words)", len(words)))
		if confidence < g.blockConfidenceThreshold {
			valid = false
			reason = "Query too vague and routing confidence low"
		}
	}

	// Rule 2: truncate oversized selections, preserving routed order.
	if len(selected) > g.maxSpecialists {
		warnings = append(warnings, fmt.Sprintf("Too many agents selected (%d), limiting to %d",
			len(selected), g.maxSpecialists))
		selected = selected[:g.maxSpecialists]
	}

	// Rule 3: flag low routing confidence without blocking.
	if confidence < g.lowConfidenceThreshold {
		warnings = append(warnings, fmt.Sprintf("Low routing confidence (%.2f)", confidence))
	}

	// Rule 4: drop identifiers with no registered specialist.
	approved := make([]specialist.ID, 0, len(selected))
	var unknown []string
	for _, id := range selected {
		if g.registry.Has(id) {
			approved = append(approved, id)
		} else {
			unknown = append(unknown, string(id))
		}
	}
	if len(unknown) > 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid agent names removed: %s", strings.Join(unknown, ", ")))
	}

	// Rule 5: an empty approved set cannot proceed. There is no default
	// specialist; the block is surfaced to the user instead.
	if valid && len(approved) == 0 {
		valid = false
		reason = "No valid specialists resolved for this query"
		warnings = append(warnings, "No valid agents selected")
	}

	return &GateResult{
		Valid:    valid,
		Reason:   reason,
		Warnings: warnings,
		Approved: approved,
	}
}
