package report

import (
	"fmt"
	"io"
	"sync"
)

// Plain renders messages as prefixed lines on a writer. It is the
// fallback Reporter for non-interactive runs and dumb terminals.
type Plain struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlain creates a Plain reporter writing to out.
func NewPlain(out io.Writer) *Plain {
	return &Plain{out: out}
}

// Report implements Reporter.
func (p *Plain) Report(level Level, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch level {
	case LevelStep:
		fmt.Fprintf(p.out, "==> %s\n", msg)
	case LevelSuccess:
		fmt.Fprintf(p.out, "ok: %s\n", msg)
	case LevelWarning:
		fmt.Fprintf(p.out, "warning: %s\n", msg)
	case LevelError:
		fmt.Fprintf(p.out, "error: %s\n", msg)
	default:
		fmt.Fprintf(p.out, "    %s\n", msg)
	}
}
