package run

import (
	"sync"

	"github.com/benchtop-dev/benchtop/internal/report"
)

// Warning records one Soft step failure.
type Warning struct {
	Step    string
	Message string
}

// Failure records the Fatal step that aborted the run.
type Failure struct {
	Phase   string
	Step    string
	Message string
}

// Summary accumulates non-fatal warnings and the terminal status of
// one provisioning run. Created at run start, appended to by every
// Soft-failing step, consumed at Finalize to render the completion
// report. Safe for use from the signal-handling goroutine.
type Summary struct {
	mu       sync.Mutex
	warnings []Warning
	fatal    *Failure
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{}
}

// AddWarning appends a warning for a Soft-failed step.
func (s *Summary) AddWarning(step, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{Step: step, Message: message})
}

// Warnings returns a copy of the accumulated warnings in order.
func (s *Summary) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// SetFatal records the aborting Fatal step. The first fatal wins.
func (s *Summary) SetFatal(phase, step, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatal == nil {
		s.fatal = &Failure{Phase: phase, Step: step, Message: message}
	}
}

// Fatal returns the recorded fatal failure, or nil.
func (s *Summary) Fatal() *Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

// Render writes the completion report through the reporter: one
// warning line per Soft failure, then the terminal status.
func (s *Summary) Render(r report.Reporter) {
	s.mu.Lock()
	warnings := make([]Warning, len(s.warnings))
	copy(warnings, s.warnings)
	fatal := s.fatal
	s.mu.Unlock()

	for _, w := range warnings {
		report.Warningf(r, "%s: %s", w.Step, w.Message)
	}

	switch {
	case fatal != nil:
		report.Errorf(r, "setup aborted in %s phase at step %q: %s", fatal.Phase, fatal.Step, fatal.Message)
	case len(warnings) > 0:
		report.Successf(r, "setup completed with %d warning(s)", len(warnings))
	default:
		report.Successf(r, "setup completed")
	}
}
