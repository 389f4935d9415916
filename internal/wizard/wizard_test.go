package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchtop-dev/benchtop/internal/prefs"
)

func TestResolveAcceptsCompletePreferences(t *testing.T) {
	seed := prefs.Defaults()
	seed.GitUserName = "Dana Developer"
	seed.GitUserEmail = "dana@example.com"

	got, err := Resolve(seed)
	require.NoError(t, err)
	assert.Equal(t, seed, got)
}

func TestResolveNamesEveryMissingAnswer(t *testing.T) {
	_, err := Resolve(prefs.Defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git_user_name")
	assert.Contains(t, err.Error(), "git_user_email")
}

func TestResolveRejectsMalformedEmail(t *testing.T) {
	seed := prefs.Defaults()
	seed.GitUserName = "Dana"
	seed.GitUserEmail = "not-an-address"

	_, err := Resolve(seed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git_user_email")
}

func TestValidateName(t *testing.T) {
	assert.Error(t, validateName(""))
	assert.Error(t, validateName("   "))
	assert.NoError(t, validateName("Dana"))
}

func TestValidateEmail(t *testing.T) {
	assert.ErrorIs(t, validateEmail(""), errEmailRequired)
	assert.ErrorIs(t, validateEmail("nope"), errEmailInvalid)
	assert.NoError(t, validateEmail("dana@example.com"))
}

func TestPackagesForDeduplicatesAcrossComponents(t *testing.T) {
	pkgs := PackagesFor([]string{"core", "containers"})
	assert.Contains(t, pkgs, "ripgrep")
	assert.Contains(t, pkgs, "podman")

	seen := make(map[string]int)
	for _, p := range pkgs {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "package %s listed %d times", p, n)
	}
}

func TestPackagesForUnknownKeyIsEmpty(t *testing.T) {
	assert.Empty(t, PackagesFor([]string{"nonexistent"}))
	assert.Empty(t, PackagesFor(nil))
}

func TestComponentOptionsDefaults(t *testing.T) {
	options, defaults := componentOptions()
	assert.Len(t, options, len(Components))
	assert.Equal(t, []string{"core"}, defaults)
}
