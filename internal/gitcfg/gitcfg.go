// Package gitcfg seeds the operator's git identity and dotfiles
// repository. All operations go through go-git; the system git binary
// is never invoked.
package gitcfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// ErrNotARepo is returned when the dotfiles target exists but is not a
// git repository.
var ErrNotARepo = errors.New("target exists but is not a git repository")

// Identity is the git author identity written to the global config.
type Identity struct {
	Name  string
	Email string
}

// WriteIdentity writes the user section of the git config file at
// path, preserving any other sections already present. A missing file
// is created.
func WriteIdentity(path string, id Identity) error {
	cfg := gitconfig.NewConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := cfg.Unmarshal(data); err != nil {
			return fmt.Errorf("parse git config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read git config: %w", err)
	}

	cfg.User.Name = id.Name
	cfg.User.Email = id.Email

	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("encode git config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write git config: %w", err)
	}
	return nil
}

// Seed makes the dotfiles repository at dir track url. A missing dir
// is cloned; an existing clone is fast-forwarded. Local edits are left
// alone; a pull that cannot fast-forward is an error for the caller to
// report.
func Seed(ctx context.Context, url, dir string) error {
	repo, err := gogit.PlainOpen(dir)
	switch {
	case err == nil:
		return fastForward(ctx, repo)
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		if pathExists(dir) && !isEmptyDir(dir) {
			return fmt.Errorf("%w: %s", ErrNotARepo, dir)
		}
		return clone(ctx, url, dir)
	default:
		return fmt.Errorf("open dotfiles repository: %w", err)
	}
}

func clone(ctx context.Context, url, dir string) error {
	_, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL: url,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

func fastForward(ctx context.Context, repo *gogit.Repository) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("update dotfiles repository: %w", err)
	}
	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isEmptyDir(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) == 0
}
