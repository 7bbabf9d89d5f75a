package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/campaignops/routeflow/internal/reasoning"
	"github.com/campaignops/routeflow/internal/specialist"
)

const diagnosisSystemPrompt = "You are a diagnosis expert analyzing advertising campaign data for issues and root causes."

// outcomePreviewRunes bounds how much of each specialist response goes into
// a reasoning prompt.
const outcomePreviewRunes = 300

// diagnosisStage synthesizes a cross-specialist assessment. For a single
// successful specialist answering a purely informational query it skips the
// reasoning call and uses the specialist's text directly.
type diagnosisStage struct {
	completer reasoning.Completer
	// shortcut enables the single-specialist informational bypass.
	shortcut bool
}

func newDiagnosisStage(completer reasoning.Completer, shortcut bool) *diagnosisStage {
	return &diagnosisStage{completer: completer, shortcut: shortcut}
}

func (d *diagnosisStage) Name() Stage { return StageDiagnosis }

func (d *diagnosisStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	// Tolerate a fully failed invocation: report "no data" rather than
	// failing the run.
	if len(state.Outcomes) == 0 {
		diag := &Diagnosis{
			Summary:  "No specialist data is available for this query; all specialist calls failed.",
			Severity: SeverityLow,
		}
		return Update{
			Diagnosis:      diag,
			ReasoningSteps: []string{"Diagnosis: no specialist data available"},
		}, SignalContinue, nil
	}

	if d.shortcut && len(state.ApprovedSpecialists()) == 1 && isInformationalQuery(state.Query) {
		id := state.ApprovedSpecialists()[0]
		summary := "Query processed successfully"
		if out, ok := state.Outcomes[id]; ok {
			summary = out.Response
		}
		diag := &Diagnosis{
			Summary:  summary,
			Severity: SeverityLow,
			Skipped:  true,
		}
		return Update{
			Diagnosis:      diag,
			ReasoningSteps: []string{"Diagnosis skipped: single-agent informational query"},
		}, SignalContinue, nil
	}

	diag := d.diagnose(ctx, state.Query, state.Outcomes, state.InvokedSpecialists())

	return Update{
		Diagnosis: diag,
		ReasoningSteps: []string{fmt.Sprintf("Diagnosis: %d root causes, severity=%s",
			len(diag.RootCauses), diag.Severity)},
	}, SignalContinue, nil
}

func (d *diagnosisStage) diagnose(ctx context.Context, query string, outcomes map[specialist.ID]specialist.Outcome, order []specialist.ID) *Diagnosis {
	if d.completer == nil {
		return fallbackDiagnosis(outcomes, order)
	}

	reply, err := d.completer.Complete(ctx, diagnosisSystemPrompt, buildDiagnosisPrompt(query, outcomes, order))
	if err != nil {
		return fallbackDiagnosis(outcomes, order)
	}

	diag, ok := parseDiagnosisReply(reply)
	if !ok {
		return fallbackDiagnosis(outcomes, order)
	}
	return diag
}

func buildDiagnosisPrompt(query string, outcomes map[specialist.ID]specialist.Outcome, order []specialist.ID) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "User query: %q\n\nSpecialist findings:\n", query)
	for _, id := range order {
		fmt.Fprintf(&sb, "- %s: %s\n", id, truncateRunes(outcomes[id].Response, outcomePreviewRunes))
	}

	sb.WriteString(`
Analyze the findings for issues, root causes, and cross-specialist correlations.

Respond in this exact format:

SEVERITY: [low/medium/high/critical]
SUMMARY: [2-3 sentence overall assessment]
ISSUE: [one issue per line, omit if none]
ROOT_CAUSE: [one root cause per line, omit if none]
CORRELATION: [one cross-specialist correlation per line, omit if none]

Your analysis:`)

	return sb.String()
}

// parseDiagnosisReply extracts a diagnosis from the line protocol. Returns
// ok=false when the reply carries neither a severity nor a summary line.
func parseDiagnosisReply(reply string) (*Diagnosis, bool) {
	diag := &Diagnosis{Severity: SeverityMedium}
	sawProtocol := false

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SEVERITY:"):
			sawProtocol = true
			diag.Severity = ParseSeverity(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "SEVERITY:"))))
		case strings.HasPrefix(line, "SUMMARY:"):
			sawProtocol = true
			diag.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "ISSUE:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "ISSUE:")); v != "" {
				diag.Issues = append(diag.Issues, v)
			}
		case strings.HasPrefix(line, "ROOT_CAUSE:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "ROOT_CAUSE:")); v != "" {
				diag.RootCauses = append(diag.RootCauses, v)
			}
		case strings.HasPrefix(line, "CORRELATION:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "CORRELATION:")); v != "" {
				diag.Correlations = append(diag.Correlations, v)
			}
		}
	}

	return diag, sawProtocol
}

// fallbackDiagnosis summarizes the raw specialist findings without the
// reasoning capability: no issue extraction is attempted, so severity
// stays medium and the lists stay empty.
func fallbackDiagnosis(outcomes map[specialist.ID]specialist.Outcome, order []specialist.ID) *Diagnosis {
	parts := make([]string, 0, len(outcomes))
	for _, id := range order {
		parts = append(parts, truncateRunes(outcomes[id].Response, outcomePreviewRunes))
	}
	return &Diagnosis{
		Summary:  strings.Join(parts, "\n\n"),
		Severity: SeverityMedium,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
