package model

import "fmt"

// DuplicateFunctionError is fatal: the frontend reported the same
// FunctionId twice during graph construction.
type DuplicateFunctionError struct {
	Id FunctionId
}

func (e *DuplicateFunctionError) Error() string {
	return fmt.Sprintf("duplicate function: %s", e.Id)
}

// UnresolvedCallError is non-fatal: a call site's callee query could not be
// resolved by any of C3's three tiers. The orchestrator logs it and excludes
// the edge from the graph.
type UnresolvedCallError struct {
	Caller FunctionId
	Callee FunctionId
}

func (e *UnresolvedCallError) Error() string {
	return fmt.Sprintf("unresolved call: %s -> %s", e.Caller, e.Callee)
}

// CoverageMalformedError is non-fatal at ingest time: coverage ingestion
// falls back to "no coverage" and the reason is reported once.
type CoverageMalformedError struct {
	Reason string
}

func (e *CoverageMalformedError) Error() string {
	return fmt.Sprintf("malformed coverage input: %s", e.Reason)
}

// InvariantViolationError is fatal and indicates a bug in the engine itself;
// it carries enough context to reproduce.
type InvariantViolationError struct {
	Description string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Description)
}

// CancelledError is non-fatal: the caller's cancellation flag was seen at a
// phase boundary. The orchestrator returns the partial report
// collected so far alongside this error.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "analysis cancelled" }

// ExitError carries a process exit code through the CLI's error-return path.
// The orchestrator and engine packages never construct one; only the CLI
// commands in package cmd do (e.g. a --fail-under threshold not met).
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Message
}
