package pipeline

import (
	"time"

	"github.com/campaignops/routeflow/internal/specialist"
)

// RoutingDecision is the Routing stage's contribution.
type RoutingDecision struct {
	Selected             []specialist.ID
	Confidence           float64
	Reasoning            string
	ClarificationNeeded  bool
	ClarificationMessage string
	// UsedFallback is set when keyword routing replaced the reasoning call.
	UsedFallback bool
}

// GateResult is the Gate stage's contribution.
type GateResult struct {
	Valid    bool
	Reason   string
	Warnings []string
	Approved []specialist.ID
}

// Diagnosis is the Diagnosis stage's contribution.
type Diagnosis struct {
	Summary      string
	Severity     Severity
	Issues       []string
	RootCauses   []string
	Correlations []string
	// Skipped is set when the single-specialist informational shortcut
	// bypassed the reasoning call.
	Skipped bool
}

// EarlyExitDecision is the Early-Exit stage's contribution.
type EarlyExitDecision struct {
	Exit   bool
	Reason string
	// Response overrides the terminal text when non-empty; otherwise the
	// diagnosis summary is used.
	Response string
}

// RunState is the shared state one run accumulates as stages execute. It is
// run-local: stages never share state across runs, so no synchronization is
// needed outside the Invocation fan-out.
type RunState struct {
	RunID     string
	Query     string
	SessionID string
	UserID    string
	StartTime time.Time
	// HistoryContext is recent conversation history formatted for the
	// routing prompt; empty for fresh sessions.
	HistoryContext string

	Routing   *RoutingDecision
	Gate      *GateResult
	Outcomes  map[specialist.ID]specialist.Outcome
	Failures  map[specialist.ID]error
	Diagnosis *Diagnosis
	EarlyExit *EarlyExitDecision

	Recommendations []Recommendation
	// RecommendationConfidence is nil until the recommendation stage
	// reports one; a set zero is a real zero, not a missing value.
	RecommendationConfidence *float64
	ActionPlan               string

	Validated          []Recommendation
	ValidationWarnings []string

	FinalResponse string
	Confidence    float64

	// ReasoningSteps is the append-only provenance trail: one entry per
	// stage describing what it contributed.
	ReasoningSteps []string
	// StagesRun records execution order.
	StagesRun []Stage
	// Timings records per-stage wall time.
	Timings []StageTiming
}

// Update is a stage's partial output. Merging follows fixed per-field
// rules: pointers and scalars replace the current value when set,
// list fields append, and map fields merge key-wise.
type Update struct {
	Routing   *RoutingDecision
	Gate      *GateResult
	Outcomes  map[specialist.ID]specialist.Outcome
	Failures  map[specialist.ID]error
	Diagnosis *Diagnosis
	EarlyExit *EarlyExitDecision

	Recommendations          []Recommendation
	RecommendationConfidence *float64
	ActionPlan               *string

	Validated          []Recommendation
	ValidationWarnings []string

	FinalResponse *string
	Confidence    *float64

	ReasoningSteps []string
}

// apply merges an update into the state.
func (s *RunState) apply(u Update) {
	if u.Routing != nil {
		s.Routing = u.Routing
	}
	if u.Gate != nil {
		s.Gate = u.Gate
	}
	for id, out := range u.Outcomes {
		if s.Outcomes == nil {
			s.Outcomes = make(map[specialist.ID]specialist.Outcome)
		}
		s.Outcomes[id] = out
	}
	for id, err := range u.Failures {
		if s.Failures == nil {
			s.Failures = make(map[specialist.ID]error)
		}
		s.Failures[id] = err
	}
	if u.Diagnosis != nil {
		s.Diagnosis = u.Diagnosis
	}
	if u.EarlyExit != nil {
		s.EarlyExit = u.EarlyExit
	}
	s.Recommendations = append(s.Recommendations, u.Recommendations...)
	if u.RecommendationConfidence != nil {
		s.RecommendationConfidence = u.RecommendationConfidence
	}
	if u.ActionPlan != nil {
		s.ActionPlan = *u.ActionPlan
	}
	s.Validated = append(s.Validated, u.Validated...)
	s.ValidationWarnings = append(s.ValidationWarnings, u.ValidationWarnings...)
	if u.FinalResponse != nil {
		s.FinalResponse = *u.FinalResponse
	}
	if u.Confidence != nil {
		s.Confidence = *u.Confidence
	}
	s.ReasoningSteps = append(s.ReasoningSteps, u.ReasoningSteps...)
}

// ApprovedSpecialists returns the gate-approved set, or nil before Gate ran.
func (s *RunState) ApprovedSpecialists() []specialist.ID {
	if s.Gate == nil {
		return nil
	}
	return s.Gate.Approved
}

// InvokedSpecialists returns the specialists that produced an outcome, in
// approved order.
func (s *RunState) InvokedSpecialists() []specialist.ID {
	invoked := make([]specialist.ID, 0, len(s.Outcomes))
	for _, id := range s.ApprovedSpecialists() {
		if _, ok := s.Outcomes[id]; ok {
			invoked = append(invoked, id)
		}
	}
	return invoked
}

func ptr[T any](v T) *T { return &v }
