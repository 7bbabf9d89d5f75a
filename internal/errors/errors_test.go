package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// PipelineError Tests
// -----------------------------------------------------------------------------

func TestNewPipelineError(t *testing.T) {
	cause := ErrMalformedUpdate
	err := NewPipelineError("stage returned bad update", cause)

	if err.message != "stage returned bad update" {
		t.Errorf("message = %q, want %q", err.message, "stage returned bad update")
	}
	if err.cause != cause {
		t.Errorf("cause = %v, want %v", err.cause, cause)
	}
	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if err.IsUserFacing() {
		t.Error("IsUserFacing() = true, want false")
	}
}

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want string
	}{
		{
			name: "plain",
			err:  NewPipelineError("boom", nil),
			want: "pipeline error: boom",
		},
		{
			name: "with run and stage",
			err:  NewPipelineError("boom", nil).WithRunID("run-1").WithStage("routing"),
			want: "pipeline error [run=run-1, stage=routing]: boom",
		},
		{
			name: "with cause",
			err:  NewPipelineError("boom", ErrRunCanceled).WithStage("invoke"),
			want: "pipeline error [stage=invoke]: boom: run canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPipelineError_Is(t *testing.T) {
	err := NewPipelineError("boom", ErrRunDeadlineExceeded)

	if !errors.Is(err, ErrRunDeadlineExceeded) {
		t.Error("expected Is(ErrRunDeadlineExceeded) = true")
	}
	if !errors.Is(err, &PipelineError{}) {
		t.Error("expected Is(*PipelineError) = true")
	}
	if errors.Is(err, ErrSpecialistNotFound) {
		t.Error("expected Is(ErrSpecialistNotFound) = false")
	}
}

// -----------------------------------------------------------------------------
// SpecialistError Tests
// -----------------------------------------------------------------------------

func TestNewSpecialistError(t *testing.T) {
	err := NewSpecialistError("invocation failed", ErrSpecialistTimeout).
		WithSpecialist("budget_risk")

	if err.SpecialistID != "budget_risk" {
		t.Errorf("SpecialistID = %q, want %q", err.SpecialistID, "budget_risk")
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	want := "specialist error [specialist=budget_risk]: invocation failed: specialist timed out"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrSpecialistTimeout) {
		t.Error("expected Is(ErrSpecialistTimeout) = true")
	}
}

func TestSpecialistError_WithRetryable(t *testing.T) {
	err := NewSpecialistError("bad contract", nil).WithRetryable(false)
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
}

// -----------------------------------------------------------------------------
// ReasoningError Tests
// -----------------------------------------------------------------------------

func TestReasoningError(t *testing.T) {
	err := NewReasoningError("completion failed", ErrReasoningUnavailable).
		WithOperation("diagnosis")

	want := "reasoning error [op=diagnosis]: completion failed: reasoning capability unavailable"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if !errors.Is(err, ErrReasoningUnavailable) {
		t.Error("expected Is(ErrReasoningUnavailable) = true")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("specialist", "unknown_agent")

	want := "specialist 'unknown_agent' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}

	wrapped := err.WithCause(ErrSpecialistNotFound)
	if !errors.Is(wrapped, ErrSpecialistNotFound) {
		t.Error("expected Is(ErrSpecialistNotFound) = true")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("query too short").
		WithField("query").
		WithValue("hi")

	got := err.Error()
	if !strings.Contains(got, "field=query") {
		t.Errorf("Error() = %q, want containing %q", got, "field=query")
	}
	if !strings.Contains(got, "value=hi") {
		t.Errorf("Error() = %q, want containing %q", got, "value=hi")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected Is(ErrInvalidInput) = true")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("waiting for specialist", 15*time.Second)

	want := "timeout error: waiting for specialist (timeout: 15s)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("expected Is(ErrTimeout) = true")
	}
}

// -----------------------------------------------------------------------------
// Classification Helper Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"timeout error", NewTimeoutError("op", time.Second), true},
		{"wrapped ErrTimeout", fmt.Errorf("outer: %w", ErrTimeout), true},
		{"wrapped ErrSpecialistTimeout", fmt.Errorf("outer: %w", ErrSpecialistTimeout), true},
		{"pipeline error", NewPipelineError("boom", nil), false},
		{"specialist error", NewSpecialistError("boom", nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"validation error", NewValidationError("bad input"), true},
		{"not found error", NewNotFoundError("specialist", "x"), true},
		{"pipeline error", NewPipelineError("boom", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDebug},
		{"plain error", errors.New("boom"), SeverityError},
		{"validation error", NewValidationError("bad"), SeverityWarning},
		{"pipeline critical", NewPipelineError("boom", nil).WithSeverity(SeverityCritical), SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(NewSpecialistError("boom", nil)) {
		t.Error("expected SpecialistError to be a domain error")
	}
	if !IsDomainError(NewReasoningError("boom", nil)) {
		t.Error("expected ReasoningError to be a domain error")
	}
	if IsDomainError(NewValidationError("boom")) {
		t.Error("expected ValidationError to not be a domain error")
	}
	if IsDomainError(nil) {
		t.Error("expected nil to not be a domain error")
	}
}

// -----------------------------------------------------------------------------
// Wrap Tests
// -----------------------------------------------------------------------------

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	err := Wrap(ErrSpecialistNotFound, "looking up handle")
	want := "looking up handle: specialist not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrSpecialistNotFound) {
		t.Error("expected wrapped sentinel to survive Is check")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrReasoningEmpty, "routing query %q", "hello")
	if !strings.Contains(err.Error(), `routing query "hello"`) {
		t.Errorf("Error() = %q, want containing formatted context", err.Error())
	}
	if !errors.Is(err, ErrReasoningEmpty) {
		t.Error("expected wrapped sentinel to survive Is check")
	}
}
