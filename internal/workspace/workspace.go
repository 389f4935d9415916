// Package workspace manages the ephemeral state of one provisioning
// run: a process-scoped staging directory for downloaded artifacts and
// an exclusive run lock.
//
// The staging directory is created once at run start and removed
// exactly once on every exit path. Cleanup is idempotent so the same
// routine can be registered on the normal exit path, the fatal-abort
// path, and the signal handler without coordination.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is the staging directory owned by a single run.
type Workspace struct {
	dir string

	mu      sync.Mutex
	cleaned bool
}

// New creates the staging directory under parent. An empty parent uses
// the system temp directory.
func New(parent string) (*Workspace, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o700); err != nil {
			return nil, fmt.Errorf("create workspace parent: %w", err)
		}
	}

	dir, err := os.MkdirTemp(parent, "benchtop-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{dir: dir}, nil
}

// Path returns the workspace root directory.
func (w *Workspace) Path() string {
	return w.dir
}

// Stage creates (if needed) and returns a named subdirectory for
// staging one component's artifacts.
func (w *Workspace) Stage(name string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cleaned {
		return "", fmt.Errorf("workspace already cleaned up")
	}

	dir := filepath.Join(w.dir, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create stage dir: %w", err)
	}
	return dir, nil
}

// Cleanup removes the workspace directory. It is safe to call from any
// goroutine and any number of times; calls after the first are no-ops.
func (w *Workspace) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cleaned {
		return nil
	}
	w.cleaned = true

	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}
