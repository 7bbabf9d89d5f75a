package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campaignops/routeflow/internal/config"
	rferrors "github.com/campaignops/routeflow/internal/errors"
	"github.com/campaignops/routeflow/internal/history"
	"github.com/campaignops/routeflow/internal/logging"
	"github.com/campaignops/routeflow/internal/reasoning"
	"github.com/campaignops/routeflow/internal/specialist"
)

// stage is the contract every pipeline stage satisfies: consume the current
// state, return a partial update and a flow-control signal. A stage error
// degrades the run; it never panics it.
type stage interface {
	Name() Stage
	Run(ctx context.Context, state *RunState) (Update, Signal, error)
}

// Pipeline sequences the stages for ad-campaign analytic queries:
// Routing → Gate → Invocation → Diagnosis → Early-Exit → Recommendation →
// Validation → Response. Each run is independent; a Pipeline is safe for
// concurrent Execute calls.
type Pipeline struct {
	cfg      config.PipelineConfig
	registry *specialist.Registry
	stages   []stage
	respond  *respondStage
	pcfg     pipelineConfig
}

// New creates a Pipeline over the given specialist registry and reasoning
// capability. completer may be nil, in which case every reasoning-backed
// stage uses its deterministic fallback.
func New(cfg config.PipelineConfig, registry *specialist.Registry, completer reasoning.Completer, opts ...Option) (*Pipeline, error) {
	if registry == nil {
		return nil, fmt.Errorf("pipeline: registry is required")
	}

	pc := &pipelineConfig{historyTurns: 6}
	for _, opt := range opts {
		opt(pc)
	}
	if pc.logger == nil {
		pc.logger = logging.NopLogger()
	}

	profiles := pc.profiles
	if profiles == nil {
		profiles = specialist.Profiles()
	}

	return &Pipeline{
		cfg:      cfg,
		registry: registry,
		stages: []stage{
			newRoutingStage(completer, profiles, pc.extraKeywords, cfg.ClarificationThreshold),
			newGateStage(registry, cfg.MinQueryTokens, cfg.MaxSpecialists, cfg.BlockConfidenceThreshold, cfg.ClarificationThreshold),
			newInvokeStage(registry, cfg.SpecialistTimeout()),
			newDiagnosisStage(completer, cfg.DiagnosisShortcut),
			&earlyExitStage{},
			newRecommendStage(completer),
			newValidateStage(cfg.RecommendationCap),
		},
		respond: &respondStage{},
		pcfg:    *pc,
	}, nil
}

// Execute runs one query through the pipeline and always produces a result:
// failures along the way degrade the response rather than replacing it with
// an error. The run is bounded by the configured run timeout.
func (p *Pipeline) Execute(ctx context.Context, query, sessionID, userID string) (result *Result, err error) {
	if strings.TrimSpace(query) == "" {
		return nil, rferrors.NewValidationError("query must not be empty")
	}

	runID := uuid.NewString()
	log := p.pcfg.logger.WithRun(runID)
	start := time.Now()

	// Top-level catch: a panicking stage (or specialist) still yields a
	// degraded answer instead of crashing the caller.
	defer func() {
		if r := recover(); r != nil {
			log.Error("run panicked", "panic", fmt.Sprint(r))
			result = &Result{
				RunID:      runID,
				Response:   "I encountered an internal error while processing your query. Please try again.",
				Confidence: 0,
				Provenance: []string{fmt.Sprintf("Run aborted by internal fault: %v", r)},
				Metadata: Metadata{
					ExecutionTimeMS: time.Since(start).Milliseconds(),
				},
			}
			err = nil
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.RunTimeout())
	defer cancel()

	state := &RunState{
		RunID:     runID,
		Query:     query,
		SessionID: sessionID,
		UserID:    userID,
		StartTime: start,
	}
	if p.pcfg.history != nil {
		state.HistoryContext = p.pcfg.history.RoutingContext(sessionID, p.pcfg.historyTurns)
	}

	log.Info("run started", "query_preview", truncateRunes(query, 50), "user_id", userID)

	p.runStages(runCtx, state, log)

	// Response always runs, detached from the run deadline so a timed-out
	// run still yields a degraded answer from partial state.
	p.runStage(context.WithoutCancel(runCtx), p.respond, state, log)

	if p.pcfg.history != nil && sessionID != "" {
		p.pcfg.history.Append(sessionID, history.RoleUser, query)
		p.pcfg.history.Append(sessionID, history.RoleAssistant, state.FinalResponse)
	}

	result = p.buildResult(state, time.Since(start))
	log.Info("run completed",
		"execution_time_ms", result.Metadata.ExecutionTimeMS,
		"confidence", result.Confidence,
		"stages_run", len(state.StagesRun),
	)
	return result, nil
}

// runStages executes the ordered stage list up to (not including) Response,
// honoring block and exit signals and the run deadline.
func (p *Pipeline) runStages(ctx context.Context, state *RunState, log *logging.Logger) {
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			// Deadline or cancellation: stop sequencing and let Response
			// degrade from partial state.
			log.Warn("run interrupted", "stage", string(st.Name()), "reason", err.Error())
			state.apply(Update{ReasoningSteps: []string{
				fmt.Sprintf("Run interrupted before %s: %v", st.Name(), err),
			}})
			return
		}

		signal := p.runStage(ctx, st, state, log)
		switch signal {
		case SignalBlock:
			log.Warn("gate blocked run", "reason", blockReason(state))
			return
		case SignalExit:
			log.Info("early exit", "reason", exitReason(state))
			return
		}
	}
}

// runStage executes one stage, merges its update, and records timing and
// provenance. A stage error is recorded and the run continues.
func (p *Pipeline) runStage(ctx context.Context, st stage, state *RunState, log *logging.Logger) Signal {
	stageLog := log.WithStage(string(st.Name()))
	stageStart := time.Now()

	update, signal, err := st.Run(ctx, state)
	elapsed := time.Since(stageStart)

	state.StagesRun = append(state.StagesRun, st.Name())
	state.Timings = append(state.Timings, StageTiming{Stage: st.Name(), Duration: elapsed})

	if err != nil {
		stageLog.Error("stage failed", "error", err.Error(), "duration_ms", elapsed.Milliseconds())
		state.apply(Update{ReasoningSteps: []string{
			fmt.Sprintf("%s failed: %v", st.Name(), err),
		}})
		return SignalContinue
	}

	state.apply(update)
	stageLog.Debug("stage completed", "signal", signal.String(), "duration_ms", elapsed.Milliseconds())
	return signal
}

func (p *Pipeline) buildResult(state *RunState, elapsed time.Duration) *Result {
	severity := Severity("")
	if state.Diagnosis != nil {
		severity = state.Diagnosis.Severity
	}

	return &Result{
		RunID:      state.RunID,
		Response:   state.FinalResponse,
		Confidence: state.Confidence,
		Provenance: state.ReasoningSteps,
		Metadata: Metadata{
			ExecutionTimeMS:      elapsed.Milliseconds(),
			AgentsInvoked:        state.InvokedSpecialists(),
			Severity:             severity,
			RecommendationsCount: len(state.Validated),
			StageTimings:         state.Timings,
		},
	}
}

func blockReason(state *RunState) string {
	if state.Gate != nil {
		return state.Gate.Reason
	}
	return ""
}

func exitReason(state *RunState) string {
	if state.EarlyExit != nil {
		return state.EarlyExit.Reason
	}
	return ""
}
