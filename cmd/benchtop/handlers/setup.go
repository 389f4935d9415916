// Package handlers implements command execution for the benchtop CLI.
package handlers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/benchtop-dev/benchtop/internal/fetch"
	"github.com/benchtop-dev/benchtop/internal/platform"
	"github.com/benchtop-dev/benchtop/internal/prefs"
	"github.com/benchtop-dev/benchtop/internal/report"
	"github.com/benchtop-dev/benchtop/internal/run"
	"github.com/benchtop-dev/benchtop/internal/workspace"
)

// SetupOptions are the flag values for the setup command.
type SetupOptions struct {
	// NonInteractive answers every question from stored preferences
	// and fails on any question they cannot answer.
	NonInteractive bool

	// ProfilePath overrides the default machine profile location.
	ProfilePath string

	// Plain disables colored output.
	Plain bool
}

// Setup runs one full provisioning pass and returns the process exit
// code.
func Setup(ctx context.Context, opts SetupOptions) int {
	reporter := newReporter(opts.Plain)
	log := newLogger(reporter)

	// The path contract is checked once at entry; nothing below runs
	// without it.
	paths, err := platform.PathsFromEnv()
	if err != nil {
		report.Errorf(reporter, "%v", err)
		return run.ExitFailure
	}

	lock, err := workspace.Acquire(ctx, filepath.Join(paths.DataDir, "benchtop"))
	if err != nil {
		report.Errorf(reporter, "another setup run appears to be active: %v", err)
		return run.ExitFailure
	}

	ws, err := workspace.New("")
	if err != nil {
		lock.Release()
		report.Errorf(reporter, "%v", err)
		return run.ExitFailure
	}

	orch := run.NewOrchestrator(reporter, log)

	cleanup := func() {
		ws.Cleanup()
		lock.Release()
	}
	signals := run.NewSignalController(reporter, orch.Summary(), cleanup)
	ctx = signals.Start(ctx)
	defer signals.Stop()
	defer signals.Cleanup()

	env := &setupEnv{
		opts:     opts,
		paths:    paths,
		ws:       ws,
		reporter: reporter,
		log:      log,
		detector: platform.NewDetector(),
		store:    prefs.NewStore(filepath.Join(paths.ConfigDir, "benchtop", "prefs.yaml")),
	}
	cache := fetch.NewCache(filepath.Join(paths.CacheDir, "benchtop"), log)
	env.downloader = fetch.NewDownloader(cache, fetch.NewVerifier(log), log)
	env.downloader.SetReporter(reporter)

	result := orch.Run(ctx, env.phases())

	signals.Stop()
	signals.Cleanup()

	switch {
	case result.Interrupted:
		// The signal path already reported the interrupt; rendering
		// the summary here would claim a completed run.
		return run.ExitInterrupt
	case !result.OK:
		result.Summary.Render(reporter)
		return run.ExitFailure
	default:
		result.Summary.Render(reporter)
		return run.ExitOK
	}
}

func newReporter(plain bool) report.Reporter {
	if plain {
		return report.NewPlain(os.Stdout)
	}
	return report.NewStyled(os.Stdout)
}

// newLogger routes structured log lines through the reporter as dim
// info text.
func newLogger(r report.Reporter) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			report.Infof(r, "%s: %s", prefix, args)
			return
		}
		report.Infof(r, "%s", args)
	}, funcr.Options{})
}
