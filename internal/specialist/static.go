package specialist

import "context"

// Static is a Specialist backed by a fixed response. It is used for demo
// runs and as a test double; production deployments register specialists
// backed by real data tools.
type Static struct {
	id          ID
	description string
	response    string
	confidence  float64
	toolsUsed   []string
	err         error
}

// NewStatic creates a static specialist that always returns response.
func NewStatic(id ID, description, response string, confidence float64) *Static {
	return &Static{
		id:          id,
		description: description,
		response:    response,
		confidence:  confidence,
	}
}

// NewFailing creates a static specialist that always returns err.
func NewFailing(id ID, err error) *Static {
	return &Static{id: id, err: err}
}

// WithTools sets the tools the static specialist reports using.
func (s *Static) WithTools(tools ...string) *Static {
	s.toolsUsed = tools
	return s
}

func (s *Static) ID() ID { return s.id }

func (s *Static) Description() string { return s.description }

// Handle returns the fixed outcome, honoring context cancellation.
func (s *Static) Handle(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if s.err != nil {
		return Outcome{}, s.err
	}
	return Outcome{
		Response:   s.response,
		Confidence: s.confidence,
		ToolsUsed:  s.toolsUsed,
	}, nil
}

// DemoRegistry returns a registry populated with static specialists that
// produce plausible campaign-analysis answers. Useful for trying the
// pipeline without any data backends configured.
func DemoRegistry() *Registry {
	specialists := make([]Specialist, 0, len(Profiles()))
	for _, p := range Profiles() {
		specialists = append(specialists, NewStatic(p.ID, p.Description, demoResponses[p.ID], 0.85).WithTools("demo_data"))
	}
	return NewRegistry(specialists...)
}

var demoResponses = map[ID]string{
	PerformanceDiagnosis: "Campaign performance summary: the insertion order delivered 2.4M impressions at a 0.14% CTR with a ROAS of 3.2 over the last 7 days. Spend is tracking 4% above plan with conversions up 11% week over week.",
	AudienceTargeting:    "Line item analysis: remarketing segments outperform prospecting by 2.1x on conversion rate. The in-market audience tactic shows declining reach and may need a refreshed segment definition.",
	CreativeInventory:    "Creative analysis: the 300x250 banner set leads on CTR while the 728x90 units show early fatigue, with CTR down 23% over two weeks. Consider rotating fresh assets into the leaderboard placements.",
	BudgetRisk:           "Budget status: month-to-date spend is $48,200 against a $60,000 budget, pacing at 96% of plan. No depletion risk detected; one line item shows mild underspend and can absorb reallocation.",
	DeliveryOptimization: "Delivery health: impression delivery is at 98% of goal with stable win rates. Viewability holds at 71% and frequency is within cap; no inventory constraints observed.",
}
