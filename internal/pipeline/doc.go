// Package pipeline implements the staged execution engine for analytic
// queries over advertising-campaign data.
//
// # Stages
//
// A run flows through a fixed stage order: Routing → Gate → Invocation →
// Diagnosis → Early-Exit → Recommendation → Validation → Response. Each
// stage consumes the shared [RunState] and returns a partial [Update] that
// is merged field by field: pointers and scalars replace, lists append,
// maps merge key-wise. Two stages branch: the Gate can block a run and the
// Early-Exit check can terminate one, both skipping directly to Response.
//
// # Degradation
//
// The engine never turns a partial failure into a hard error. Specialist
// failures are isolated per specialist, reasoning failures fall back to
// deterministic behavior inside each stage, and a run that exceeds its
// deadline still produces a response from whatever state exists. The only
// concurrency is the Invocation fan-out, bounded by the gate's approval cap.
//
// # Usage
//
//	p, _ := pipeline.New(cfg.Pipeline, registry, completer,
//	    pipeline.WithLogger(log),
//	    pipeline.WithHistory(store, cfg.Routing.HistoryTurns),
//	)
//	result, err := p.Execute(ctx, "how is campaign Quiz performing?", sessionID, userID)
package pipeline
