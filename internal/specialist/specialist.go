package specialist

import "context"

// ID identifies a registered specialist.
type ID string

const (
	PerformanceDiagnosis ID = "performance_diagnosis"
	AudienceTargeting    ID = "audience_targeting"
	CreativeInventory    ID = "creative_inventory"
	BudgetRisk           ID = "budget_risk"
	DeliveryOptimization ID = "delivery_optimization"
)

// Request carries the inputs a specialist needs to answer a query.
type Request struct {
	Query     string
	SessionID string
	UserID    string
}

// Outcome is a specialist's successful result.
type Outcome struct {
	// Response is the specialist's answer text.
	Response string
	// Confidence is the specialist's self-reported confidence in [0, 1].
	Confidence float64
	// ToolsUsed lists the data tools the specialist consulted.
	ToolsUsed []string
}

// Specialist is an opaque domain capability. Implementations must be safe
// for concurrent use; the pipeline invokes approved specialists in parallel.
type Specialist interface {
	ID() ID
	Description() string
	Handle(ctx context.Context, req Request) (Outcome, error)
}

// Profile describes a specialist for routing purposes: what it covers and
// which query keywords suggest it. Keywords are glob patterns matched
// case-insensitively against query tokens.
type Profile struct {
	ID          ID
	Description string
	Keywords    []string
}

// Profiles returns the routing profiles for the standard specialist set.
func Profiles() []Profile {
	return []Profile{
		{
			ID:          PerformanceDiagnosis,
			Description: "Analyzes campaign performance at insertion order level: overall campaign metrics, spend, impressions, clicks, conversions, revenue, CTR, ROAS. Use for top-line campaign performance questions.",
			Keywords:    []string{"performance", "performing", "campaign*", "io", "insertion", "metric*", "ctr", "roas", "conversion*", "optimize", "kpi*"},
		},
		{
			ID:          AudienceTargeting,
			Description: "Analyzes performance at line item level: audience segments, targeting tactics, line item comparison within insertion orders. Use for questions about specific tactics, audiences, or line items.",
			Keywords:    []string{"audience*", "line", "targeting", "segment*", "tactic*", "remarketing", "prospecting"},
		},
		{
			ID:          CreativeInventory,
			Description: "Analyzes creative performance by creative name and ad size or format. Use for questions about which creatives or ad sizes perform best, creative fatigue, or creative optimization.",
			Keywords:    []string{"creative*", "ad", "ads", "banner*", "size*", "format*", "asset*", "fatigue", "300x250", "728x90"},
		},
		{
			ID:          BudgetRisk,
			Description: "Analyzes budget data: budget pacing, risk identification, spend optimization. Use for questions about budgets, pacing, underspend, overspend.",
			Keywords:    []string{"budget*", "pacing", "spend*", "allocation", "forecast*", "risk*", "depletion", "overspend*", "underspend*"},
		},
		{
			ID:          DeliveryOptimization,
			Description: "Analyzes delivery health: impression delivery, reach, frequency, viewability, win rate, inventory availability. Use for questions about whether campaigns are delivering in full.",
			Keywords:    []string{"delivery", "deliver*", "impression*", "reach", "frequency", "viewability", "win", "inventory", "serving"},
		},
	}
}

// ProfileFor returns the profile for the given specialist, if one exists.
func ProfileFor(id ID) (Profile, bool) {
	for _, p := range Profiles() {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// KnownIDs returns the identifiers of the standard specialist set, in
// catalog order.
func KnownIDs() []ID {
	profiles := Profiles()
	ids := make([]ID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}
