package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meetdeck.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"meetdeck"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestParseJson_OverlaysSetFields(t *testing.T) {
	path := writeConfigFile(t, `{
		"gateway_base_url": "https://gw.example.com",
		"request_timeout": "5s",
		"online_check_interval": 60000000000
	}`)
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "https://gw.example.com", c.GatewayBaseURL)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, time.Minute, c.OnlineCheckInterval)
	// fields absent from the file keep their defaults
	assert.Equal(t, "meetdeck.db", c.DatabasePath)
	assert.Equal(t, "info", c.LogLevel)
}

func TestParseJson_NoFlagMeansNoFile(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "http://localhost:8080", c.GatewayBaseURL)
}

func TestParseJson_BrokenFilePanics(t *testing.T) {
	path := writeConfigFile(t, `{not json`)
	withArgs(t, "-config", path)

	var c Config
	c.LoadDefaults()
	require.Panics(t, func() { parseJson(&c) })
}
