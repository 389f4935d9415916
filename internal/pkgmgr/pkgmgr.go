// Package pkgmgr abstracts the host's system package manager. The rest
// of the codebase never inspects distro-specific output; a failed
// command propagates as an error and the call site decides how severe
// that is.
package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoManager is returned when no supported package manager is on PATH.
var ErrNoManager = errors.New("no supported package manager found")

// Manager drives the host package manager.
type Manager interface {
	// Name identifies the underlying tool (apt, dnf, pacman).
	Name() string

	// Update refreshes the package index.
	Update(ctx context.Context) error

	// Install installs the named packages non-interactively.
	Install(ctx context.Context, names []string) error

	// Cleanup removes caches and orphaned dependencies.
	Cleanup(ctx context.Context) error
}

// Runner executes a command and returns its combined output on failure.
// Tests substitute a recorder.
type Runner func(ctx context.Context, name string, args ...string) error

func defaultRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// spec describes one supported manager as fixed argument vectors.
type spec struct {
	name    string
	update  []string
	install []string
	cleanup [][]string
}

var specs = []spec{
	{
		name:    "apt-get",
		update:  []string{"update"},
		install: []string{"install", "-y"},
		cleanup: [][]string{{"autoremove", "-y"}, {"clean"}},
	},
	{
		name:    "dnf",
		update:  []string{"makecache"},
		install: []string{"install", "-y"},
		cleanup: [][]string{{"autoremove", "-y"}, {"clean", "all"}},
	},
	{
		name:    "pacman",
		update:  []string{"-Sy"},
		install: []string{"-S", "--noconfirm", "--needed"},
		cleanup: [][]string{{"-Sc", "--noconfirm"}},
	},
}

type manager struct {
	spec spec
	run  Runner
}

// Detect returns the first supported manager found on PATH, probing in
// preference order apt-get, dnf, pacman.
func Detect() (Manager, error) {
	return detect(exec.LookPath, defaultRunner)
}

func detect(lookPath func(string) (string, error), run Runner) (Manager, error) {
	for _, s := range specs {
		if _, err := lookPath(s.name); err == nil {
			return &manager{spec: s, run: run}, nil
		}
	}
	return nil, ErrNoManager
}

func (m *manager) Name() string {
	return m.spec.name
}

func (m *manager) Update(ctx context.Context) error {
	return m.run(ctx, m.spec.name, m.spec.update...)
}

func (m *manager) Install(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	args := append(append([]string(nil), m.spec.install...), names...)
	return m.run(ctx, m.spec.name, args...)
}

func (m *manager) Cleanup(ctx context.Context) error {
	for _, args := range m.spec.cleanup {
		if err := m.run(ctx, m.spec.name, args...); err != nil {
			return err
		}
	}
	return nil
}
