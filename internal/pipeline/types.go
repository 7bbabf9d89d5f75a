package pipeline

import (
	"time"

	"github.com/campaignops/routeflow/internal/specialist"
)

// Stage identifies a pipeline stage.
type Stage string

const (
	StageRouting        Stage = "routing"
	StageGate           Stage = "gate"
	StageInvocation     Stage = "invocation"
	StageDiagnosis      Stage = "diagnosis"
	StageEarlyExit      Stage = "early_exit"
	StageRecommendation Stage = "recommendation"
	StageValidation     Stage = "validation"
	StageResponse       Stage = "response"
)

func (s Stage) String() string { return string(s) }

// Signal is a stage's flow-control verdict. Most stages proceed; the gate
// may block and the early-exit check may terminate the run.
type Signal int

const (
	// SignalContinue advances to the next stage in order.
	SignalContinue Signal = iota
	// SignalBlock skips directly to Response with a gate-blocked result.
	SignalBlock
	// SignalExit skips directly to Response with the early-exit result.
	SignalExit
)

func (s Signal) String() string {
	switch s {
	case SignalContinue:
		return "continue"
	case SignalBlock:
		return "block"
	case SignalExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Severity grades a diagnosis.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity normalizes a severity string, defaulting to medium for
// unrecognized values.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s)
	default:
		return SeverityMedium
	}
}

// Urgent reports whether the severity demands recommendations.
func (s Severity) Urgent() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Priority ranks a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank orders priorities for sorting, highest first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// ParsePriority normalizes a priority string, defaulting to medium.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// Recommendation is one prioritized action item.
type Recommendation struct {
	Priority       Priority
	Action         string
	Reason         string
	ExpectedImpact string
}

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

// Metadata is the structured summary attached to every result.
type Metadata struct {
	ExecutionTimeMS      int64
	AgentsInvoked        []specialist.ID
	Severity             Severity
	RecommendationsCount int
	StageTimings         []StageTiming
}

// Result is the public outcome of a run.
type Result struct {
	RunID      string
	Response   string
	Confidence float64
	// Provenance lists what each stage contributed, in execution order.
	Provenance []string
	Metadata   Metadata
}
