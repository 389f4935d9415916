// Package prefs persists operator preferences between provisioning
// runs. Preferences are a flat set of named scalar/array values stored
// as YAML; absent keys fall back to the documented defaults.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preferences holds the choices persisted across runs. Keys absent
// from the file default per Defaults.
type Preferences struct {
	// GitUserName and GitUserEmail seed the global git identity.
	GitUserName  string `yaml:"git_user_name,omitempty"`
	GitUserEmail string `yaml:"git_user_email,omitempty"`

	// DotfilesRepo is the seed repository cloned during installation.
	DotfilesRepo string `yaml:"dotfiles_repo,omitempty"`

	// Shell and Editor are the operator's preferred defaults.
	Shell  string `yaml:"shell,omitempty"`
	Editor string `yaml:"editor,omitempty"`

	// Components are the optional component groups to install.
	Components []string `yaml:"components,omitempty"`

	// ExtraPackages are additional distro packages to install.
	ExtraPackages []string `yaml:"extra_packages,omitempty"`
}

// Defaults is the fallback table applied to absent keys.
func Defaults() Preferences {
	return Preferences{
		Shell:      "bash",
		Editor:     "vim",
		Components: []string{"core"},
	}
}

// applyDefaults fills absent keys from the fallback table.
func (p *Preferences) applyDefaults() {
	d := Defaults()
	if p.Shell == "" {
		p.Shell = d.Shell
	}
	if p.Editor == "" {
		p.Editor = d.Editor
	}
	if len(p.Components) == 0 {
		p.Components = append([]string(nil), d.Components...)
	}
}

// Store reads and writes the preferences file.
type Store struct {
	path string
}

// NewStore creates a store over the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the preferences file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads preferences, applying defaults for absent keys. A
// missing file yields the full fallback table.
func (s *Store) Load() (Preferences, error) {
	var p Preferences

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.applyDefaults()
			return p, nil
		}
		return p, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse preferences: %w", err)
	}
	p.applyDefaults()
	return p, nil
}

// Save writes preferences atomically (temp name, then rename).
func (s *Store) Save(p Preferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
