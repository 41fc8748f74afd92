package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("SHIFTBOOK_DB", filepath.Join(dir, "data", "ledger.db"))
	t.Cleanup(func() {
		_ = cleanup()
		cfgFile = ""
		rootCmd.SetArgs(nil)
	})
	return dir
}

func TestCalcLeavesLedgerClosed(t *testing.T) {
	dir := setupHome(t)

	rootCmd.SetArgs([]string{"calc", "7:00:00 am", "4:00:00 pm"})
	require.NoError(t, rootCmd.Execute())

	assert.Nil(t, db)
	assert.NoDirExists(t, filepath.Join(dir, "data"))
}

func TestFailedCommandStillClosesLedger(t *testing.T) {
	dir := setupHome(t)

	rootCmd.SetArgs([]string{"slips", "4", "D1001"})
	require.Error(t, rootCmd.Execute())
	assert.NotNil(t, db, "ledger stays open after a failed command until cleanup")
	assert.FileExists(t, filepath.Join(dir, "data", "ledger.db"))

	require.NoError(t, cleanup())
	assert.Nil(t, db)
	assert.NoError(t, cleanup())
}

func TestConfigSetWritesFile(t *testing.T) {
	dir := setupHome(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LogLevel: loud\n"), 0644))

	rootCmd.SetArgs([]string{"--config", path, "config", "set", "LogLevel", "warn"})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "LogLevel: warn")
	assert.NotContains(t, string(data), filepath.Join(dir, "data"), "environment overrides are not persisted")
	assert.NoDirExists(t, filepath.Join(dir, "data"))
}
