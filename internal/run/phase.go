// Package run implements the provisioning orchestration engine: the
// phase state machine, the Fatal/Soft error-propagation policy, the
// run summary, and the interrupt controller.
//
// Execution is single-threaded and strictly sequential. Phases run in
// declaration order; steps within a phase run in declaration order. A
// failing Fatal step aborts the whole run; a failing Soft step records
// a warning and the run continues.
package run

import "context"

// Process exit codes.
const (
	// ExitOK is a fully successful run.
	ExitOK = 0
	// ExitFailure is a Fatal step or validation failure.
	ExitFailure = 1
	// ExitInterrupt is a user interrupt (SIGINT/SIGTERM).
	ExitInterrupt = 130
)

// Severity classifies how a step's failure propagates. It is a
// property of the call site, declared at phase-construction time: the
// same underlying operation may be Fatal in one phase and Soft in
// another.
type Severity int

const (
	// Fatal failures abort the entire run immediately. Fatal is the
	// zero value so an undeclared severity fails closed.
	Fatal Severity = iota
	// Soft failures are recorded in the run summary and surfaced as
	// warnings; the run continues.
	Soft
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if s == Soft {
		return "soft"
	}
	return "fatal"
}

// Step is a single named unit of work within a phase. Side effects of
// a failed step are not rolled back; the system has no transactional
// undo, only cleanup of the ephemeral workspace.
type Step struct {
	Name     string
	Severity Severity
	Action   func(ctx context.Context) error
}

// Phase is an ordered list of steps under one top-level stage of the
// run (Preflight, Configuration, Installation, Finalize).
type Phase struct {
	Name  string
	Steps []Step
}

// Result is the terminal outcome of a run.
type Result struct {
	OK bool
	// FailedPhase and FailedStep identify the aborting Fatal step, or
	// are empty on success.
	FailedPhase string
	FailedStep  string
	// Interrupted is true when the run stopped on context
	// cancellation rather than a step failure.
	Interrupted bool
	Summary     *Summary
}
