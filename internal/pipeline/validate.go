package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// vagueVerbs flag recommendations whose action lacks a concrete step.
var vagueVerbs = []string{"improve", "optimize", "enhance", "review", "consider"}

// conflictPairs lists verb groups whose co-occurrence across two
// recommendations about the same subject indicates a contradiction.
var conflictPairs = [][2][]string{
	{{"increase", "scale", "raise"}, {"decrease", "reduce", "lower"}},
	{{"pause", "stop"}, {"start", "launch", "enable"}},
	{{"expand", "broaden"}, {"narrow", "focus", "limit"}},
}

// validateStage filters and flags recommendations with deterministic rules:
// required fields, conflicts, vagueness, severity alignment, and a hard cap.
type validateStage struct {
	// cap is the maximum number of recommendations returned.
	cap int
}

func newValidateStage(cap int) *validateStage {
	return &validateStage{cap: cap}
}

func (v *validateStage) Name() Stage { return StageValidation }

func (v *validateStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	severity := SeverityMedium
	if state.Diagnosis != nil {
		severity = state.Diagnosis.Severity
	}

	validated, warnings := v.validate(state.Recommendations, severity)

	return Update{
		Validated:          validated,
		ValidationWarnings: warnings,
		ReasoningSteps: []string{fmt.Sprintf("Validation: %d recommendations validated, %d warnings",
			len(validated), len(warnings))},
	}, SignalContinue, nil
}

func (v *validateStage) validate(recs []Recommendation, severity Severity) ([]Recommendation, []string) {
	var validated []Recommendation
	var warnings []string

	// Rule 1: required fields. A missing action drops the entry; missing
	// priority or reason only warns.
	for i, rec := range recs {
		if rec.Action == "" {
			warnings = append(warnings, fmt.Sprintf("Recommendation %d: Missing action, dropped", i+1))
			continue
		}
		if rec.Priority == "" {
			warnings = append(warnings, fmt.Sprintf("Recommendation %d: Missing priority, defaulting to medium", i+1))
			rec.Priority = PriorityMedium
		}
		if rec.Reason == "" {
			warnings = append(warnings, fmt.Sprintf("Recommendation %d: Missing reason", i+1))
		}
		validated = append(validated, rec)
	}

	// Rule 2: pairwise conflict detection.
	for i := 0; i < len(validated); i++ {
		for j := i + 1; j < len(validated); j++ {
			if areConflicting(validated[i].Action, validated[j].Action) {
				warnings = append(warnings, fmt.Sprintf("Recommendations %d and %d may conflict: %q vs %q",
					i+1, j+1, preview(validated[i].Action), preview(validated[j].Action)))
			}
		}
	}

	// Rule 3: vague actions.
	for i, rec := range validated {
		action := strings.ToLower(rec.Action)
		if len(strings.Fields(action)) < 5 {
			warnings = append(warnings, fmt.Sprintf("Recommendation %d: Action may be too vague", i+1))
		}
		for _, verb := range vagueVerbs {
			if strings.Contains(action, verb) && !strings.Contains(action, "specific") {
				warnings = append(warnings, fmt.Sprintf("Recommendation %d: Consider making action more specific", i+1))
				break
			}
		}
	}

	// Rule 4: severity alignment, both directions.
	highCount := 0
	for _, rec := range validated {
		if rec.Priority == PriorityHigh {
			highCount++
		}
	}
	if severity.Urgent() && highCount == 0 {
		warnings = append(warnings, "Severity is high but no high-priority recommendations - consider prioritizing")
	}
	if !severity.Urgent() && highCount > 2 {
		warnings = append(warnings, "Severity is low/medium but many high-priority recommendations - may be over-reacting")
	}

	// Rule 5: hard cap, keeping the highest priorities. The sort is stable,
	// so entries of equal priority keep their original order.
	if len(validated) > v.cap {
		warnings = append(warnings, fmt.Sprintf("Too many recommendations (%d), limiting to top %d",
			len(validated), v.cap))
		slices.SortStableFunc(validated, func(a, b Recommendation) int {
			return a.Priority.rank() - b.Priority.rank()
		})
		validated = validated[:v.cap]
	}

	return validated, warnings
}

// areConflicting reports whether two actions pull in opposite directions on
// the same subject. Direction comes from the conflict verb pairs; "same
// subject" is approximated by sharing more than two words.
func areConflicting(action1, action2 string) bool {
	a1 := strings.ToLower(action1)
	a2 := strings.ToLower(action2)

	for _, pair := range conflictPairs {
		pos1, neg1 := containsAnyWord(a1, pair[0]), containsAnyWord(a1, pair[1])
		pos2, neg2 := containsAnyWord(a2, pair[0]), containsAnyWord(a2, pair[1])

		if (pos1 && neg2) || (neg1 && pos2) {
			if sharedWordCount(a1, a2) > 2 {
				return true
			}
		}
	}
	return false
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func sharedWordCount(a, b string) int {
	wordsA := make(map[string]bool)
	for _, w := range strings.Fields(a) {
		wordsA[w] = true
	}
	count := 0
	seen := make(map[string]bool)
	for _, w := range strings.Fields(b) {
		if wordsA[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}

func preview(s string) string {
	return truncateRunes(s, 50)
}
