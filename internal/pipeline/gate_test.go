package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/campaignops/routeflow/internal/specialist"
)

func newTestGateStage(t *testing.T) *gateStage {
	t.Helper()
	return newGateStage(specialist.DemoRegistry(), 3, 3, 0.6, 0.4)
}

func TestGateStage_ApprovesValidSelection(t *testing.T) {
	g := newTestGateStage(t)

	result := g.validate("how is my campaign performing this month",
		[]specialist.ID{specialist.PerformanceDiagnosis, specialist.BudgetRisk}, 0.9)

	if !result.Valid {
		t.Fatalf("Valid = false, reason %q", result.Reason)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
	if len(result.Approved) != 2 {
		t.Errorf("Approved = %v, want both specialists", result.Approved)
	}
}

func TestGateStage_ShortQuery(t *testing.T) {
	g := newTestGateStage(t)

	t.Run("blocked with low confidence", func(t *testing.T) {
		result := g.validate("budget status", []specialist.ID{specialist.BudgetRisk}, 0.3)
		if result.Valid {
			t.Fatal("short query with low confidence should block")
		}
		if result.Reason != "Query too vague and routing confidence low" {
			t.Errorf("Reason = %q", result.Reason)
		}
	})

	t.Run("warned with high confidence", func(t *testing.T) {
		result := g.validate("budget status", []specialist.ID{specialist.BudgetRisk}, 0.9)
		if !result.Valid {
			t.Fatal("short query with high confidence should pass")
		}
		if !hasWarningContaining(result.Warnings, "very short") {
			t.Errorf("Warnings = %v, want short-query warning", result.Warnings)
		}
	})
}

func TestGateStage_TruncatesSelection(t *testing.T) {
	g := newTestGateStage(t)

	selected := []specialist.ID{
		specialist.DeliveryOptimization,
		specialist.BudgetRisk,
		specialist.PerformanceDiagnosis,
		specialist.AudienceTargeting,
		specialist.CreativeInventory,
	}
	result := g.validate("full analysis of everything in the account", selected, 0.9)

	if !result.Valid {
		t.Fatalf("Valid = false, reason %q", result.Reason)
	}
	if len(result.Approved) != 3 {
		t.Fatalf("Approved = %v, want 3", result.Approved)
	}
	for i, id := range selected[:3] {
		if result.Approved[i] != id {
			t.Errorf("Approved[%d] = %s, want %s (routed order preserved)", i, result.Approved[i], id)
		}
	}
	if !hasWarningContaining(result.Warnings, "Too many agents") {
		t.Errorf("Warnings = %v, want truncation warning", result.Warnings)
	}
}

func TestGateStage_LowConfidenceWarns(t *testing.T) {
	g := newTestGateStage(t)

	result := g.validate("tell me about the campaign budget pacing",
		[]specialist.ID{specialist.BudgetRisk}, 0.3)

	if !result.Valid {
		t.Fatal("low confidence alone should not block a normal-length query")
	}
	if !hasWarningContaining(result.Warnings, "Low routing confidence") {
		t.Errorf("Warnings = %v, want low-confidence warning", result.Warnings)
	}
}

func TestGateStage_DropsUnregistered(t *testing.T) {
	g := newTestGateStage(t)

	result := g.validate("compare budget and imaginary things please",
		[]specialist.ID{specialist.BudgetRisk, "imaginary_specialist"}, 0.9)

	if !result.Valid {
		t.Fatalf("Valid = false, reason %q", result.Reason)
	}
	if len(result.Approved) != 1 || result.Approved[0] != specialist.BudgetRisk {
		t.Errorf("Approved = %v, want only the registered specialist", result.Approved)
	}
	if !hasWarningContaining(result.Warnings, "imaginary_specialist") {
		t.Errorf("Warnings = %v, want invalid-name warning", result.Warnings)
	}
}

func TestGateStage_BlocksEmptyApprovedSet(t *testing.T) {
	g := newTestGateStage(t)

	t.Run("nothing selected", func(t *testing.T) {
		result := g.validate("some reasonably long query about nothing", nil, 0.9)
		if result.Valid {
			t.Fatal("empty selection must block")
		}
		if result.Reason != "No valid specialists resolved for this query" {
			t.Errorf("Reason = %q", result.Reason)
		}
	})

	t.Run("all names unregistered", func(t *testing.T) {
		result := g.validate("some reasonably long query about nothing",
			[]specialist.ID{"ghost_one", "ghost_two"}, 0.9)
		if result.Valid {
			t.Fatal("selection of only unregistered names must block")
		}
	})
}

func TestGateStage_ApprovedIsSubsetOfSelected(t *testing.T) {
	g := newTestGateStage(t)

	selected := []specialist.ID{specialist.CreativeInventory, "bogus", specialist.DeliveryOptimization}
	result := g.validate("which creatives are delivering the most impressions", selected, 0.8)

	selectedSet := make(map[specialist.ID]bool, len(selected))
	for _, id := range selected {
		selectedSet[id] = true
	}
	for _, id := range result.Approved {
		if !selectedSet[id] {
			t.Errorf("Approved contains %s, which was never selected", id)
		}
	}
}

func TestGateStage_RunSignals(t *testing.T) {
	g := newTestGateStage(t)

	t.Run("block", func(t *testing.T) {
		state := &RunState{
			Query:   "some reasonably long query about nothing",
			Routing: &RoutingDecision{Confidence: 0.9},
		}
		update, signal, err := g.Run(context.Background(), state)
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if signal != SignalBlock {
			t.Errorf("signal = %s, want block", signal)
		}
		if update.Gate == nil || update.Gate.Valid {
			t.Error("update.Gate should carry the block result")
		}
	})

	t.Run("continue", func(t *testing.T) {
		state := &RunState{
			Query: "how is the budget pacing this quarter",
			Routing: &RoutingDecision{
				Selected:   []specialist.ID{specialist.BudgetRisk},
				Confidence: 0.9,
			},
		}
		_, signal, err := g.Run(context.Background(), state)
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if signal != SignalContinue {
			t.Errorf("signal = %s, want continue", signal)
		}
	})
}

func hasWarningContaining(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
