package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchtop-dev/benchtop/internal/platform"
	"github.com/benchtop-dev/benchtop/internal/prefs"
)

func fedoraHost() *platform.Info {
	return &platform.Info{
		OS:   "linux",
		Arch: "amd64",
		Distro: &platform.Distro{
			ID:      "fedora",
			Family:  platform.FamilyFedora,
			Version: "41",
		},
	}
}

func TestEvaluateExtractsOverrides(t *testing.T) {
	o, err := Evaluate(context.Background(), `
		return {
			editor = "helix",
			shell = "zsh",
			components = { "core", "containers" },
			extra_packages = { "ripgrep" },
		}
	`, fedoraHost())
	require.NoError(t, err)
	assert.Equal(t, "helix", o.Editor)
	assert.Equal(t, "zsh", o.Shell)
	assert.Equal(t, []string{"core", "containers"}, o.Components)
	assert.Equal(t, []string{"ripgrep"}, o.ExtraPackages)
	assert.Empty(t, o.GitUserName)
}

func TestEvaluateBranchesOnPlatform(t *testing.T) {
	code := `
		if platform.is_fedora_family then
			return { extra_packages = { "dnf-plugins-core" } }
		end
		return { extra_packages = { "apt-transport-https" } }
	`

	o, err := Evaluate(context.Background(), code, fedoraHost())
	require.NoError(t, err)
	assert.Equal(t, []string{"dnf-plugins-core"}, o.ExtraPackages)

	debian := &platform.Info{
		OS:     "linux",
		Arch:   "amd64",
		Distro: &platform.Distro{ID: "debian", Family: platform.FamilyDebian, Version: "12"},
	}
	o, err = Evaluate(context.Background(), code, debian)
	require.NoError(t, err)
	assert.Equal(t, []string{"apt-transport-https"}, o.ExtraPackages)
}

func TestEvaluateNilReturnIsEmptyOverride(t *testing.T) {
	o, err := Evaluate(context.Background(), `return nil`, fedoraHost())
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Empty(t, o.Editor)
	assert.Nil(t, o.Components)
}

func TestEvaluateRejectsNonTableReturn(t *testing.T) {
	_, err := Evaluate(context.Background(), `return "zsh"`, fedoraHost())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must return a table")
}

func TestEvaluateRejectsNonStringListEntry(t *testing.T) {
	_, err := Evaluate(context.Background(), `return { components = { "core", 42 } }`, fedoraHost())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-string entry")
}

func TestEvaluateReportsSyntaxErrors(t *testing.T) {
	_, err := Evaluate(context.Background(), `return {`, fedoraHost())
	require.Error(t, err)
}

func TestSandboxBlocksHostAccess(t *testing.T) {
	for _, code := range []string{
		`return { editor = os.getenv("EDITOR") }`,
		`io.open("/etc/passwd")`,
		`require("socket")`,
		`dofile("/etc/profile.lua")`,
	} {
		_, err := Evaluate(context.Background(), code, fedoraHost())
		assert.Error(t, err, "expected sandbox violation for %q", code)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	o, err := Load(context.Background(), filepath.Join(t.TempDir(), "profile.lua"), fedoraHost())
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestLoadEvaluatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.lua")
	require.NoError(t, os.WriteFile(path, []byte(`return { shell = "fish" }`), 0o644))

	o, err := Load(context.Background(), path, fedoraHost())
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "fish", o.Shell)
}

func TestApplyOverlaysOnlySetFields(t *testing.T) {
	p := prefs.Defaults()
	p.GitUserName = "Dana"

	o := &Overrides{Editor: "helix", ExtraPackages: []string{"jq"}}
	o.Apply(&p)

	assert.Equal(t, "helix", p.Editor)
	assert.Equal(t, "bash", p.Shell, "unset override leaves stored value")
	assert.Equal(t, "Dana", p.GitUserName)
	assert.Equal(t, []string{"jq"}, p.ExtraPackages)

	var none *Overrides
	none.Apply(&p)
	assert.Equal(t, "helix", p.Editor)
}
