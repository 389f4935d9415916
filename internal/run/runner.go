package run

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/benchtop-dev/benchtop/internal/report"
)

// StepResult is the classified outcome of one step execution.
type StepResult struct {
	// OK is false only when the step failed and its severity is
	// Fatal; a Soft failure keeps the run going.
	OK  bool
	Err error
}

// StepRunner executes one step at a time, classifies the outcome by
// the step's declared severity, and reports it to the UI sink.
type StepRunner struct {
	reporter report.Reporter
	summary  *Summary
	log      logr.Logger
}

// NewStepRunner creates a runner reporting to r and recording Soft
// failures in summary.
func NewStepRunner(r report.Reporter, summary *Summary, log logr.Logger) *StepRunner {
	return &StepRunner{reporter: r, summary: summary, log: log}
}

// Execute runs a single step. Soft failures are recorded and surfaced
// immediately as warnings, never silently swallowed.
func (sr *StepRunner) Execute(ctx context.Context, step Step) StepResult {
	report.Stepf(sr.reporter, "%s", step.Name)

	err := step.Action(ctx)
	if err == nil {
		report.Successf(sr.reporter, "%s", step.Name)
		return StepResult{OK: true}
	}

	if step.Severity == Soft {
		sr.summary.AddWarning(step.Name, err.Error())
		report.Warningf(sr.reporter, "%s: %v", step.Name, err)
		sr.log.Info("step failed (continuing)", "step", step.Name, "severity", "soft", "error", err.Error())
		return StepResult{OK: true, Err: err}
	}

	report.Errorf(sr.reporter, "%s: %v", step.Name, err)
	sr.log.Info("step failed (aborting)", "step", step.Name, "severity", "fatal", "error", err.Error())
	return StepResult{OK: false, Err: err}
}
