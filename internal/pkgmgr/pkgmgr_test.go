package pkgmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

func recordingRunner(calls *[]call, fail error) Runner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		return fail
	}
}

func lookPathWith(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestDetectPrefersOrder(t *testing.T) {
	m, err := detect(lookPathWith("pacman", "apt-get"), nil)
	require.NoError(t, err)
	assert.Equal(t, "apt-get", m.Name())

	m, err = detect(lookPathWith("dnf"), nil)
	require.NoError(t, err)
	assert.Equal(t, "dnf", m.Name())
}

func TestDetectNoManager(t *testing.T) {
	_, err := detect(lookPathWith(), nil)
	require.ErrorIs(t, err, ErrNoManager)
}

func TestManagerCommandVectors(t *testing.T) {
	var calls []call
	m, err := detect(lookPathWith("dnf"), recordingRunner(&calls, nil))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Update(ctx))
	require.NoError(t, m.Install(ctx, []string{"ripgrep", "jq"}))
	require.NoError(t, m.Cleanup(ctx))

	require.Len(t, calls, 4)
	assert.Equal(t, []string{"makecache"}, calls[0].args)
	assert.Equal(t, []string{"install", "-y", "ripgrep", "jq"}, calls[1].args)
	assert.Equal(t, []string{"autoremove", "-y"}, calls[2].args)
	assert.Equal(t, []string{"clean", "all"}, calls[3].args)
}

func TestInstallNothingIsNoop(t *testing.T) {
	var calls []call
	m, err := detect(lookPathWith("apt-get"), recordingRunner(&calls, nil))
	require.NoError(t, err)

	require.NoError(t, m.Install(context.Background(), nil))
	assert.Empty(t, calls)
}

func TestFailuresPropagate(t *testing.T) {
	boom := errors.New("exit status 100")
	var calls []call
	m, err := detect(lookPathWith("apt-get"), recordingRunner(&calls, boom))
	require.NoError(t, err)

	assert.ErrorIs(t, m.Update(context.Background()), boom)
	assert.ErrorIs(t, m.Install(context.Background(), []string{"git"}), boom)
	assert.ErrorIs(t, m.Cleanup(context.Background()), boom)
}

func TestCheckToolsNamesMissingRequired(t *testing.T) {
	tools := []Tool{
		{Name: "git", Required: true, Description: "cloning repositories"},
		{Name: "tar", Required: true, Description: "unpacking archives"},
		{Name: "sudo", Required: false, Description: "privilege escalation"},
	}

	r := checkTools(tools, lookPathWith("tar"))
	require.Len(t, r.Results, 3)
	assert.True(t, r.Results[1].Found)
	assert.Equal(t, "/usr/bin/tar", r.Results[1].Path)

	err := r.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git")
	assert.NotContains(t, err.Error(), "sudo", "optional tools never fail the check")
}

func TestCheckToolsAllPresent(t *testing.T) {
	r := checkTools(BaseTools(), lookPathWith("git", "tar", "sudo"))
	assert.NoError(t, r.Err())
	assert.Empty(t, r.Missing)
}
