package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	for _, name := range []string{"port", "base-path", "log-encoding", "log-level"} {
		assert.NotNil(t, serve.Flags().Lookup(name), name)
	}
}

func TestServeCommand_RejectsArgs(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"serve", "extra"})

	assert.Error(t, root.Execute())
}
