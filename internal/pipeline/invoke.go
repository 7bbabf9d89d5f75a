package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	rferrors "github.com/campaignops/routeflow/internal/errors"
	"github.com/campaignops/routeflow/internal/specialist"
)

// invokeStage fans out to every gate-approved specialist concurrently and
// collects successes and failures into separate maps. A specialist failure,
// panics included, never aborts the others or the run; the union of the two
// maps always equals the approved set.
type invokeStage struct {
	registry *specialist.Registry
	// timeout bounds each specialist call, nested inside the run deadline.
	timeout time.Duration
}

func newInvokeStage(registry *specialist.Registry, timeout time.Duration) *invokeStage {
	return &invokeStage{registry: registry, timeout: timeout}
}

func (s *invokeStage) Name() Stage { return StageInvocation }

func (s *invokeStage) Run(ctx context.Context, state *RunState) (Update, Signal, error) {
	approved := state.ApprovedSpecialists()

	outcomes := make(map[specialist.ID]specialist.Outcome, len(approved))
	failures := make(map[specialist.ID]error)
	var mu sync.Mutex

	// The approved set is already capped by the gate, so the group runs at
	// most that many goroutines.
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(len(approved) + 1)

	for _, id := range approved {
		id := id
		g.Go(func() error {
			outcome, err := s.invokeContained(groupCtx, id, state)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[id] = err
			} else {
				outcomes[id] = outcome
			}
			// Always nil: one specialist's failure must not cancel the
			// group context for the others.
			return nil
		})
	}

	// Err is always nil; Wait is the join barrier.
	_ = g.Wait()

	return Update{
		Outcomes: outcomes,
		Failures: failures,
		ReasoningSteps: []string{fmt.Sprintf("Invoked %d agents successfully, %d failed",
			len(outcomes), len(failures))},
	}, SignalContinue, nil
}

// invokeContained guards a single invocation against a panicking specialist.
// The recover must live in the same goroutine as the call; the executor's
// catch cannot reach across the fan-out.
func (s *invokeStage) invokeContained(ctx context.Context, id specialist.ID, state *RunState) (outcome specialist.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = specialist.Outcome{}
			err = rferrors.NewSpecialistError(fmt.Sprintf("panicked: %v", r), nil).
				WithSpecialist(string(id)).
				WithRetryable(false)
		}
	}()
	return s.invokeOne(ctx, id, state)
}

func (s *invokeStage) invokeOne(ctx context.Context, id specialist.ID, state *RunState) (specialist.Outcome, error) {
	sp, err := s.registry.Get(id)
	if err != nil {
		// Unknown identifiers should have been dropped by the gate; if one
		// slips through, treat it as a specialist failure, not a run failure.
		return specialist.Outcome{}, rferrors.NewSpecialistError("not registered", err).
			WithSpecialist(string(id)).
			WithRetryable(false)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := sp.Handle(callCtx, specialist.Request{
		Query:     state.Query,
		SessionID: state.SessionID,
		UserID:    state.UserID,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return specialist.Outcome{}, rferrors.NewSpecialistError("invocation timed out", rferrors.ErrSpecialistTimeout).
				WithSpecialist(string(id))
		}
		return specialist.Outcome{}, rferrors.NewSpecialistError("invocation failed", err).
			WithSpecialist(string(id))
	}
	return outcome, nil
}
