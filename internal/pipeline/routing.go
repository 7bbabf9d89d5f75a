package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/campaignops/routeflow/internal/reasoning"
	"github.com/campaignops/routeflow/internal/specialist"
)

const routingSystemPrompt = "You are a routing assistant that selects specialist agents based on user queries."

const defaultClarificationMessage = "I'm not sure what you're asking about. Could you please clarify?\n\n" +
	"I can help with:\n" +
	"- **Campaign performance** - metrics like CTR, ROAS, conversions\n" +
	"- **Audience targeting** - line item and segment analysis\n" +
	"- **Creative performance** - which ads/sizes are working best\n" +
	"- **Budget pacing** - spend status and risk analysis\n" +
	"- **Delivery health** - impressions, reach, viewability\n\n" +
	"What would you like to know?"

// fallbackConfidence is reported when keyword routing replaces the
// reasoning call.
const fallbackConfidence = 0.6

// routingStage selects candidate specialists for a query. It prefers the
// reasoning capability and falls back to deterministic keyword matching
// when that is unavailable or returns unparsable output; routing never
// fails the run.
type routingStage struct {
	completer reasoning.Completer
	profiles  []specialist.Profile
	matchers  map[specialist.ID][]glob.Glob
	// clarificationThreshold is the confidence below which routing asks
	// for clarification instead of selecting specialists.
	clarificationThreshold float64
}

func newRoutingStage(completer reasoning.Completer, profiles []specialist.Profile, extraKeywords map[string][]string, clarificationThreshold float64) *routingStage {
	matchers := make(map[specialist.ID][]glob.Glob, len(profiles))
	for _, p := range profiles {
		patterns := append([]string{}, p.Keywords...)
		patterns = append(patterns, extraKeywords[string(p.ID)]...)
		for _, pattern := range patterns {
			g, err := glob.Compile(strings.ToLower(pattern))
			if err != nil {
				continue
			}
			matchers[p.ID] = append(matchers[p.ID], g)
		}
	}
	return &routingStage{
		completer:              completer,
		profiles:               profiles,
		matchers:               matchers,
		clarificationThreshold: clarificationThreshold,
	}
}

func (r *routingStage) Name() Stage { return StageRouting }

func (r *routingStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	decision := r.route(ctx, state.Query, state.HistoryContext)

	step := fmt.Sprintf("Routing: selected %s with confidence %.2f",
		joinIDs(decision.Selected), decision.Confidence)
	if decision.ClarificationNeeded {
		step = fmt.Sprintf("Routing: clarification needed (confidence %.2f)", decision.Confidence)
	}

	return Update{
		Routing:        decision,
		ReasoningSteps: []string{step},
	}, SignalContinue, nil
}

func (r *routingStage) route(ctx context.Context, query, historyContext string) *RoutingDecision {
	if r.completer == nil {
		return r.keywordRoute(query)
	}

	reply, err := r.completer.Complete(ctx, routingSystemPrompt, r.buildPrompt(query, historyContext))
	if err != nil {
		return r.keywordRoute(query)
	}

	decision, ok := r.parseReply(reply)
	if !ok {
		return r.keywordRoute(query)
	}

	// Unroutable, low confidence, or the model asked a question itself:
	// surface a clarification instead of a selection.
	if len(decision.Selected) == 0 || decision.Confidence < r.clarificationThreshold || decision.ClarificationMessage != "" {
		msg := decision.ClarificationMessage
		if msg == "" {
			msg = defaultClarificationMessage
		}
		reasonText := decision.Reasoning
		if reasonText == "" {
			reasonText = "Query is unclear or ambiguous"
		}
		return &RoutingDecision{
			Confidence:           decision.Confidence,
			Reasoning:            reasonText,
			ClarificationNeeded:  true,
			ClarificationMessage: msg,
		}
	}

	return decision
}

func (r *routingStage) buildPrompt(query, historyContext string) string {
	var sb strings.Builder

	sb.WriteString("Analyze the user's query and determine which specialist agent(s) should handle it.\n")

	if historyContext != "" {
		sb.WriteString("\nCONVERSATION HISTORY (recent messages for context):\n")
		sb.WriteString(historyContext)
		sb.WriteString("\n\nThe current query may be a follow-up to the conversation above. ")
		sb.WriteString("Short queries like \"budget\" or \"yes\" should be interpreted in context.\n")
	}

	sb.WriteString("\nAvailable agents:\n")
	for _, p := range r.profiles {
		fmt.Fprintf(&sb, "- **%s**: %s\n", p.ID, p.Description)
	}

	fmt.Fprintf(&sb, "\nUser query: %q\n", query)

	sb.WriteString(`
Respond in this exact format:

AGENTS: agent_name_1, agent_name_2 (or NONE if unclear)
REASONING: Brief explanation of why these agents were selected
CONFIDENCE: A score from 0.0 to 1.0
CLARIFICATION: Only include this line if the query is unclear. Ask a specific question.

If the query is vague or ambiguous, set AGENTS to NONE, CONFIDENCE to 0.0, and include a CLARIFICATION line.

Your response:`)

	return sb.String()
}

// parseReply extracts the routing decision from the line protocol. Returns
// ok=false when the reply carries none of the expected lines.
func (r *routingStage) parseReply(reply string) (*RoutingDecision, bool) {
	decision := &RoutingDecision{Confidence: 0.8}
	sawProtocol := false

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "AGENTS:"):
			sawProtocol = true
			agentsPart := strings.TrimSpace(strings.TrimPrefix(line, "AGENTS:"))
			if strings.EqualFold(agentsPart, "NONE") {
				decision.Selected = nil
				continue
			}
			for _, name := range strings.Split(agentsPart, ",") {
				id := specialist.ID(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
				if _, ok := r.matchers[id]; ok {
					decision.Selected = append(decision.Selected, id)
				}
			}

		case strings.HasPrefix(line, "REASONING:"):
			sawProtocol = true
			decision.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))

		case strings.HasPrefix(line, "CONFIDENCE:"):
			sawProtocol = true
			if conf, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")), 64); err == nil {
				decision.Confidence = clamp01(conf)
			}

		case strings.HasPrefix(line, "CLARIFICATION:"):
			value := strings.TrimSpace(strings.TrimPrefix(line, "CLARIFICATION:"))
			if !isNoClarification(value) {
				decision.ClarificationMessage = value
			}
		}
	}

	return decision, sawProtocol
}

// isNoClarification filters reply lines like "CLARIFICATION: None - intent
// is clear" that models emit despite the instructions.
func isNoClarification(value string) bool {
	v := strings.ToLower(value)
	switch v {
	case "", "none", "n/a", "na", "null":
		return true
	}
	for _, prefix := range []string{"none ", "none-", "none,", "n/a ", "not needed", "no clarification"} {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}

// keywordRoute is the deterministic fallback: match query tokens against
// each specialist's keyword globs.
func (r *routingStage) keywordRoute(query string) *RoutingDecision {
	tokens := tokenize(query)

	var selected []specialist.ID
	for _, p := range r.profiles {
		if matchesAny(r.matchers[p.ID], tokens) {
			selected = append(selected, p.ID)
		}
	}

	if len(selected) == 0 {
		return &RoutingDecision{
			Reasoning:            "Query is unclear - no matching keywords found",
			Confidence:           0,
			ClarificationNeeded:  true,
			ClarificationMessage: defaultClarificationMessage,
			UsedFallback:         true,
		}
	}

	return &RoutingDecision{
		Selected:     selected,
		Reasoning:    "Fallback keyword-based routing",
		Confidence:   fallbackConfidence,
		UsedFallback: true,
	}
}

func matchesAny(globs []glob.Glob, tokens []string) bool {
	for _, g := range globs {
		for _, tok := range tokens {
			if g.Match(tok) {
				return true
			}
		}
	}
	return false
}

// tokenize lowercases and splits a query into alphanumeric tokens.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func joinIDs(ids []specialist.ID) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
