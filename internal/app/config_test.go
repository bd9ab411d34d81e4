package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "pexip:\n  base_url: https://mgr.example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1, cfg.Report.DaysBack)
	assert.Equal(t, 5000, cfg.Pexip.PageSize)
	assert.Equal(t, 25, cfg.SMTP.Port)
	assert.Equal(t, "@every 1m", cfg.Sync.RefreshCron)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Neo4j.Enabled())

	hc := cfg.HTTPClientConfig()
	assert.Equal(t, 30*time.Second, hc.Timeout)
	assert.Equal(t, 3, hc.RetryAttempts)
	assert.Equal(t, time.Second, hc.RetryBackoff)
}

func TestLoadConfigExplicitValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
pexip:
  base_url: https://mgr.example.com
  page_size: 100
smtp:
  host: smtp.example.com
  sender: reports@example.com
  recipients: [a@example.com, b@example.com]
report:
  days_back: 0
  display_conferences: true
neo4j:
  uri: bolt://localhost:7687
`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Report.DaysBack)
	assert.True(t, cfg.Report.DisplayConferences)
	assert.Equal(t, 100, cfg.Pexip.PageSize)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.SMTP.Recipients)
	assert.True(t, cfg.Neo4j.Enabled())
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "log:\n  level: debug\n"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = LoadConfig(writeConfig(t, "pexip:\n  base_url: https://x\nreport:\n  days_back: -1\n"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = LoadConfig(writeConfig(t, "pexip: [\n"))
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestReadConfigWithoutFile(t *testing.T) {
	cfg, err := ReadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Report.DaysBack)
	require.Error(t, cfg.Validate())
}
