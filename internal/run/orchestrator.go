package run

import (
	"context"
	"errors"

	"github.com/go-logr/logr"

	"github.com/benchtop-dev/benchtop/internal/report"
)

// Orchestrator sequences phases strictly in order and applies the
// Fatal/Soft propagation policy.
type Orchestrator struct {
	runner   *StepRunner
	reporter report.Reporter
	summary  *Summary
	log      logr.Logger
}

// NewOrchestrator creates an orchestrator with a fresh summary.
func NewOrchestrator(r report.Reporter, log logr.Logger) *Orchestrator {
	summary := NewSummary()
	return &Orchestrator{
		runner:   NewStepRunner(r, summary, log),
		reporter: r,
		summary:  summary,
		log:      log,
	}
}

// Summary exposes the run summary for rendering and for the signal
// controller's interrupt report.
func (o *Orchestrator) Summary() *Summary {
	return o.summary
}

// Run executes the phases in order. A Fatal step failure stops
// immediately and skips every later phase. Soft failures never stop a
// phase; the next step runs unconditionally. Context cancellation
// (signal) is observed between steps.
func (o *Orchestrator) Run(ctx context.Context, phases []Phase) Result {
	for _, phase := range phases {
		report.Infof(o.reporter, "--- %s ---", phase.Name)
		before := len(o.summary.Warnings())

		for _, step := range phase.Steps {
			if err := ctx.Err(); err != nil {
				o.log.Info("run interrupted", "phase", phase.Name, "pending", step.Name)
				return Result{
					OK:          false,
					FailedPhase: phase.Name,
					FailedStep:  step.Name,
					Interrupted: true,
					Summary:     o.summary,
				}
			}

			res := o.runner.Execute(ctx, step)
			if !res.OK {
				// A step that failed because the run context was
				// cancelled is an interrupt, not a fatal failure; the
				// exit code must reflect the signal.
				if ctx.Err() != nil || errors.Is(res.Err, context.Canceled) {
					o.log.Info("run interrupted", "phase", phase.Name, "step", step.Name)
					return Result{
						OK:          false,
						FailedPhase: phase.Name,
						FailedStep:  step.Name,
						Interrupted: true,
						Summary:     o.summary,
					}
				}
				o.summary.SetFatal(phase.Name, step.Name, res.Err.Error())
				return Result{
					OK:          false,
					FailedPhase: phase.Name,
					FailedStep:  step.Name,
					Summary:     o.summary,
				}
			}
		}

		// Phase boundary: flush this phase's warnings to the log so
		// partial progress is visible even if a later phase fails.
		for _, w := range o.summary.Warnings()[before:] {
			o.log.Info("phase warning", "phase", phase.Name, "step", w.Step, "message", w.Message)
		}
	}

	return Result{OK: true, Summary: o.summary}
}
