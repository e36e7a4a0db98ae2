package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDatabaseURL_FlagWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")

	url, err := resolveDatabaseURL("postgres://flag/db")
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/db", url)
}

func TestResolveDatabaseURL_EnvFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")

	url, err := resolveDatabaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", url)
}

func TestResolveDatabaseURL_Missing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := resolveDatabaseURL("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"sync", "sources", "status", "export", "reclassify", "migrate", "token", "serve"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "command %q not registered", name)
	}
}

func TestSyncCommand_RequiresSources(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/docharvest")

	err := runSyncCmd(syncCommand, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sources configured")
}
