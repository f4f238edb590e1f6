package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigManager_WritesDefaults(t *testing.T) {
	dir := t.TempDir()

	cm, err := NewConfigManager(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cm.Config)
	assert.FileExists(t, filepath.Join(dir, configFile))
	assert.FileExists(t, filepath.Join(dir, envFile))
	assert.Equal(t, []string{"development", "production"}, cm.GetAvailableEnvironments())
	assert.Empty(t, cm.History)
	assert.Equal(t, filepath.Join(dir, logFile), cm.LogPath())
}

func TestNewConfigManager_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	cfg := `
theme: latte
timeout: 5
start_expanded: true
watch: false
current_env: staging
log_file: /tmp/custom.log
`
	envs := `
staging:
  variables:
    BASE_URL: https://staging.example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte(cfg), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, envFile), []byte(envs), 0644))

	cm, err := NewConfigManager(dir)
	require.NoError(t, err)

	assert.Equal(t, "latte", cm.Config.Theme)
	assert.Equal(t, 5, cm.Config.Timeout)
	assert.True(t, cm.Config.StartExpanded)
	assert.False(t, cm.Config.Watch)
	assert.True(t, cm.Config.AutoFormatJSON, "unset keys keep their defaults")
	assert.Equal(t, "/tmp/custom.log", cm.LogPath())

	env := cm.getCurrentEnvironment()
	assert.Equal(t, "staging", env.Name, "name is filled from the map key")
	assert.Equal(t, "https://staging.example.com/pets", cm.replaceEnvVars("{{BASE_URL}}/pets"))
}

func TestNewConfigManager_BadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte("theme: [\n"), 0644))

	_, err := NewConfigManager(dir)
	assert.Error(t, err)
}

func TestReplaceEnvVars(t *testing.T) {
	cm, err := NewConfigManager(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/pets", cm.replaceEnvVars("{{BASE_URL}}/pets"))
	assert.Equal(t, "Bearer dev-key-123", cm.replaceEnvVars("Bearer {{API_KEY}}"))
	assert.Equal(t, "{{UNKNOWN}}", cm.replaceEnvVars("{{UNKNOWN}}"))

	require.NoError(t, cm.SetCurrentEnv("production"))
	assert.Equal(t, "https://api.example.com", cm.replaceEnvVars("{{BASE_URL}}"))

	assert.Error(t, cm.SetCurrentEnv("nowhere"))
}

func TestNextEnv(t *testing.T) {
	dir := t.TempDir()
	cm, err := NewConfigManager(dir)
	require.NoError(t, err)

	next, err := cm.NextEnv()
	require.NoError(t, err)
	assert.Equal(t, "production", next)

	next, err = cm.NextEnv()
	require.NoError(t, err)
	assert.Equal(t, "development", next)

	reloaded, err := NewConfigManager(dir)
	require.NoError(t, err)
	assert.Equal(t, "development", reloaded.Config.CurrentEnv, "selection is saved")
}

func TestAddToHistory(t *testing.T) {
	dir := t.TempDir()
	cm, err := NewConfigManager(dir)
	require.NoError(t, err)

	require.NoError(t, cm.addToHistory(RequestItem{EndpointID: "list-pets", Method: "GET", URL: "http://x/pets"}))
	require.NoError(t, cm.addToHistory(RequestItem{EndpointID: "get-pet", Method: "GET", URL: "http://x/pets/1"}))
	require.NoError(t, cm.addToHistory(RequestItem{EndpointID: "list-pets", Method: "GET", URL: "http://x/pets", StatusCode: 401}))

	require.Len(t, cm.History, 2, "repeat moves instead of duplicating")
	assert.Equal(t, "http://x/pets", cm.History[0].URL)
	assert.Equal(t, 401, cm.History[0].StatusCode)
	assert.NotEmpty(t, cm.History[0].ID)
	assert.Len(t, cm.FindHistoryByEndpoint("get-pet"), 1)
	assert.Len(t, cm.RecentHistory(1), 1)
	assert.Len(t, cm.RecentHistory(10), 2)

	reloaded, err := NewConfigManager(dir)
	require.NoError(t, err)
	assert.Len(t, reloaded.History, 2)
}

func TestAddToHistory_RespectsLimitAndSwitch(t *testing.T) {
	dir := t.TempDir()
	cm, err := NewConfigManager(dir)
	require.NoError(t, err)
	cm.Config.HistoryLimit = 2

	for _, u := range []string{"http://x/a", "http://x/b", "http://x/c"} {
		require.NoError(t, cm.addToHistory(RequestItem{Method: "GET", URL: u}))
	}
	require.Len(t, cm.History, 2)
	assert.Equal(t, "http://x/c", cm.History[0].URL)

	cm.Config.SaveHistory = false
	require.NoError(t, cm.addToHistory(RequestItem{Method: "GET", URL: "http://x/d"}))
	reloaded, err := NewConfigManager(dir)
	require.NoError(t, err)
	assert.Len(t, reloaded.History, 2, "nothing is written with save_history off")
}
