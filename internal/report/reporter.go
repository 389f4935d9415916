// Package report defines the reporting sink used by the provisioning
// engine. The orchestration core never formats terminal output itself;
// it emits leveled messages through a Reporter, and the concrete
// implementation (plain stream or styled) is chosen at startup.
package report

import "fmt"

// Level classifies a reported message.
type Level int

const (
	// LevelStep announces a unit of work that is about to run.
	LevelStep Level = iota
	// LevelInfo carries neutral progress information.
	LevelInfo
	// LevelSuccess marks a completed unit of work.
	LevelSuccess
	// LevelWarning marks a non-fatal problem the operator should see.
	LevelWarning
	// LevelError marks a fatal problem.
	LevelError
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelStep:
		return "step"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Reporter is the UI reporting sink. Implementations must be safe for
// use from a signal-handling goroutine.
type Reporter interface {
	Report(level Level, msg string)
}

// Stepf reports a formatted step-level message.
func Stepf(r Reporter, format string, args ...any) {
	r.Report(LevelStep, fmt.Sprintf(format, args...))
}

// Infof reports a formatted info-level message.
func Infof(r Reporter, format string, args ...any) {
	r.Report(LevelInfo, fmt.Sprintf(format, args...))
}

// Successf reports a formatted success-level message.
func Successf(r Reporter, format string, args ...any) {
	r.Report(LevelSuccess, fmt.Sprintf(format, args...))
}

// Warningf reports a formatted warning-level message.
func Warningf(r Reporter, format string, args ...any) {
	r.Report(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf reports a formatted error-level message.
func Errorf(r Reporter, format string, args ...any) {
	r.Report(LevelError, fmt.Sprintf(format, args...))
}

// Discard is a Reporter that drops every message. Useful in tests.
type Discard struct{}

// Report implements Reporter.
func (Discard) Report(Level, string) {}
