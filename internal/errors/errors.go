// Package errors provides centralized error definitions and error handling
// utilities for the RouteFlow codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and error
// classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - PipelineError: errors raised by the pipeline executor
//   - SpecialistError: errors from specialist invocation
//   - ReasoningError: errors from the reasoning (LLM) capability
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewSpecialistError("invocation failed", errors.ErrSpecialistTimeout)
//
//	// With context
//	err := errors.NewPipelineError("stage returned malformed update", cause).WithStage("diagnosis")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrSpecialistNotFound) { ... }
//
//	var specErr *errors.SpecialistError
//	if errors.As(err, &specErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Standard library re-exports, so callers need only this import for all
// error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity grades an error from debug noise up to critical.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

var severityNames = [...]string{"debug", "info", "warning", "error", "critical"}

// String returns the lowercase name of the severity level.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Pipeline-related sentinel errors
var (
	// ErrRunDeadlineExceeded indicates the overall run deadline elapsed.
	ErrRunDeadlineExceeded = New("run deadline exceeded")
	// ErrRunCanceled indicates the run was canceled before completion.
	ErrRunCanceled = New("run canceled")
	// ErrMalformedUpdate indicates a stage returned an update that violates
	// the run-state merge contract.
	ErrMalformedUpdate = New("malformed stage update")
	// ErrStageAlreadyRan indicates the executor attempted to re-enter a stage.
	ErrStageAlreadyRan = New("stage already ran")
)

// Specialist-related sentinel errors
var (
	// ErrSpecialistNotFound indicates a specialist identifier has no
	// registry entry.
	ErrSpecialistNotFound = New("specialist not found")
	// ErrSpecialistTimeout indicates a specialist exceeded its invocation timeout.
	ErrSpecialistTimeout = New("specialist timed out")
	// ErrSpecialistFailed indicates a specialist returned an internal error.
	ErrSpecialistFailed = New("specialist failed")
)

// Reasoning-related sentinel errors
var (
	// ErrReasoningUnavailable indicates the reasoning capability could not
	// be reached.
	ErrReasoningUnavailable = New("reasoning capability unavailable")
	// ErrReasoningEmpty indicates the reasoning capability returned empty output.
	ErrReasoningEmpty = New("reasoning capability returned empty output")
	// ErrUnparsableReply indicates the reasoning output did not match the
	// expected line protocol.
	ErrUnparsableReply = New("unparsable reasoning reply")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// RouteFlowError is the base interface for all RouteFlow errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type RouteFlowError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }

func (e *baseError) IsRetryable() bool { return e.retryable }

func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// PipelineError represents errors raised by the pipeline executor.
//
// Example:
//
//	err := errors.NewPipelineError("stage failed", cause).WithRunID(id).WithStage("routing")
type PipelineError struct {
	baseError
	RunID string
	Stage string
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(message string, cause error) *PipelineError {
	return &PipelineError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: false,
		},
	}
}

// WithRunID adds a run ID to the error context.
func (e *PipelineError) WithRunID(id string) *PipelineError {
	e.RunID = id
	return e
}

// WithStage adds a stage name to the error context.
func (e *PipelineError) WithStage(stage string) *PipelineError {
	e.Stage = stage
	return e
}

// WithSeverity sets the error severity.
func (e *PipelineError) WithSeverity(s Severity) *PipelineError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *PipelineError) Error() string {
	var parts []string
	if e.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", e.RunID))
	}
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}

	prefix := "pipeline error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("pipeline error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PipelineError) Is(target error) bool {
	if _, ok := target.(*PipelineError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SpecialistError represents errors from specialist invocation.
//
// Example:
//
//	err := errors.NewSpecialistError("invocation failed", cause).WithSpecialist("budget_risk")
type SpecialistError struct {
	baseError
	SpecialistID string
}

// NewSpecialistError creates a new SpecialistError.
func NewSpecialistError(message string, cause error) *SpecialistError {
	return &SpecialistError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithSpecialist adds a specialist identifier to the error context.
func (e *SpecialistError) WithSpecialist(id string) *SpecialistError {
	e.SpecialistID = id
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *SpecialistError) WithRetryable(r bool) *SpecialistError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *SpecialistError) Error() string {
	prefix := "specialist error"
	if e.SpecialistID != "" {
		prefix = fmt.Sprintf("specialist error [specialist=%s]", e.SpecialistID)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SpecialistError) Is(target error) bool {
	if _, ok := target.(*SpecialistError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ReasoningError represents errors from the reasoning capability. These are
// always recoverable at the stage level: every stage that depends on
// reasoning defines a deterministic fallback.
type ReasoningError struct {
	baseError
	Operation string
}

// NewReasoningError creates a new ReasoningError.
func NewReasoningError(message string, cause error) *ReasoningError {
	return &ReasoningError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithOperation adds the reasoning operation (routing, diagnosis, ...) to
// the error context.
func (e *ReasoningError) WithOperation(op string) *ReasoningError {
	e.Operation = op
	return e
}

// WithRetryable overrides whether the error is retryable.
func (e *ReasoningError) WithRetryable(retryable bool) *ReasoningError {
	e.retryable = retryable
	return e
}

// Error returns the formatted error message.
func (e *ReasoningError) Error() string {
	prefix := "reasoning error"
	if e.Operation != "" {
		prefix = fmt.Sprintf("reasoning error [op=%s]", e.Operation)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ReasoningError) Is(target error) bool {
	if _, ok := target.(*ReasoningError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError reports a missing resource, most commonly a specialist
// identifier with no registry entry. Its message is safe to surface.
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a NotFoundError whose message reads
// "specialist 'budget_risk' not found".
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	e := &NotFoundError{ResourceType: resourceType, ResourceID: resourceID}
	e.message = fmt.Sprintf("%s '%s' not found", resourceType, resourceID)
	e.severity = SeverityWarning
	e.userFacing = true
	return e
}

// WithCause attaches the underlying error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError reports invalid input, typically a rejected query.
// It matches ErrInvalidInput, and its message is safe to surface.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a ValidationError with the given message.
// Use WithField and WithValue to name what was rejected.
func NewValidationError(message string) *ValidationError {
	e := &ValidationError{}
	e.message = message
	e.severity = SeverityWarning
	e.userFacing = true
	return e
}

// WithField names the offending input field.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the rejected value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause attaches the underlying error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	prefix := "validation error"
	var tags []string
	if e.Field != "" {
		tags = append(tags, "field="+e.Field)
	}
	if e.Value != nil {
		tags = append(tags, fmt.Sprintf("value=%v", e.Value))
	}
	if len(tags) > 0 {
		prefix += " [" + strings.Join(tags, ", ") + "]"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return prefix + ": " + e.message
}

func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError reports an operation that ran out of time. It matches
// ErrTimeout, is retryable, and its message is safe to surface.
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a TimeoutError for the named operation and
// the timeout that elapsed.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	e := &TimeoutError{Operation: operation, Duration: duration}
	e.message = operation
	e.severity = SeverityWarning
	e.retryable = true
	e.userFacing = true
	return e
}

// WithCause attaches the underlying error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rfErr RouteFlowError
	if As(err, &rfErr) {
		return rfErr.IsRetryable()
	}

	if Is(err, ErrTimeout) || Is(err, ErrSpecialistTimeout) || Is(err, ErrReasoningUnavailable) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end
// users. Internal pipeline faults are not; validation and timeout messages are.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var rfErr RouteFlowError
	if As(err, &rfErr) {
		return rfErr.IsUserFacing()
	}

	var notFound *NotFoundError
	var validation *ValidationError
	var timeout *TimeoutError

	if As(err, &notFound) || As(err, &validation) || As(err, &timeout) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement RouteFlowError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var rfErr RouteFlowError
	if As(err, &rfErr) {
		return rfErr.Severity()
	}

	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (PipelineError, SpecialistError, or ReasoningError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var pipelineErr *PipelineError
	var specialistErr *SpecialistError
	var reasoningErr *ReasoningError

	return As(err, &pipelineErr) || As(err, &specialistErr) || As(err, &reasoningErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to process query")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to invoke specialist %s", id)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
