package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHasCoreCommands(t *testing.T) {
	root := Root()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "setup")
	assert.Contains(t, names, "version")
}

func TestSetupFlags(t *testing.T) {
	cmd := Setup()

	for _, name := range []string{"non-interactive", "profile", "plain"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "n", cmd.Flags().Lookup("non-interactive").Shorthand)
}
