package run

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/benchtop-dev/benchtop/internal/report"
)

// SignalController installs SIGINT/SIGTERM handling for a run. On
// interrupt it cancels the run context, emits the warnings accumulated
// so far, runs the registered cleanup exactly once, and terminates the
// process with exit code 130.
//
// The same cleanup function must also be invoked on the normal and
// fatal-abort exit paths; Cleanup is guarded so the second invocation
// is a no-op regardless of which path wins.
type SignalController struct {
	reporter report.Reporter
	summary  *Summary
	cleanup  func()

	once sync.Once
	stop func()

	// exit is swapped out in tests.
	exit func(code int)
}

// NewSignalController creates a controller. cleanup must be safe to
// run at any point in a step's lifecycle, including mid-download.
func NewSignalController(r report.Reporter, summary *Summary, cleanup func()) *SignalController {
	return &SignalController{
		reporter: r,
		summary:  summary,
		cleanup:  cleanup,
		exit:     os.Exit,
	}
}

// Start installs the handlers and returns a context cancelled on the
// first SIGINT or SIGTERM. The caller should defer Stop.
func (c *SignalController) Start(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	c.stop = func() {
		signal.Stop(ch)
		cancel()
	}

	go func() {
		sig, ok := <-ch
		if !ok {
			return
		}
		cancel()
		c.interrupt(sig)
	}()

	return ctx
}

// Stop uninstalls the handlers (normal and fatal-abort exit paths).
func (c *SignalController) Stop() {
	if c.stop != nil {
		c.stop()
	}
}

// Cleanup runs the registered cleanup exactly once across all exit
// paths.
func (c *SignalController) Cleanup() {
	c.once.Do(c.cleanup)
}

// interrupt is the terminal path for a delivered signal: report the
// interrupt, emit accumulated progress, clean up, exit 130.
func (c *SignalController) interrupt(sig os.Signal) {
	report.Warningf(c.reporter, "received %s, cleaning up", sig)
	for _, w := range c.summary.Warnings() {
		report.Warningf(c.reporter, "%s: %s", w.Step, w.Message)
	}
	c.Cleanup()
	c.exit(ExitInterrupt)
}
