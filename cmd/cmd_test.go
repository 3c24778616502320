package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Version: dev\nCommit: unknown\n", out.String())
}

func TestReconcileCommand_RequiresGuild(t *testing.T) {
	rootCmd.SetArgs([]string{"reconcile"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guild")
}

func TestReconcileCommand_InvalidGuild(t *testing.T) {
	rootCmd.SetArgs([]string{"reconcile", "--guild", "not-a-snowflake"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		reconcileGuild = ""
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --guild")
}

func TestSchemaCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "schema-test.db")

	rootCmd.SetArgs([]string{"schema", "--config", "missing.toml"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, "schema-test.db")
}
