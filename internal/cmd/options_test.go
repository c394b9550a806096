package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AdguardTeam/golibs/osutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs replaces os.Args for the duration of the test, the same way
// goFlags.Default itself reads os.Args under the hood.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"corebridge"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseConfigAppliesDefaults(t *testing.T) {
	withArgs(t)

	opts, exitCode, err := parseConfig()
	require.NoError(t, err)
	assert.Equal(t, osutil.ExitCodeSuccess, exitCode)
	assert.Equal(t, "127.0.0.1:47890", opts.AdminListenAddr)
	assert.Equal(t, "settings.json", opts.SettingsPath)
	assert.Equal(t, 8080, opts.HTTPProxyPort)
}

func TestParseConfigFlagsOverrideDefaults(t *testing.T) {
	withArgs(t, "--admin-listen=127.0.0.1:9999", "--verbose")

	opts, _, err := parseConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", opts.AdminListenAddr)
	assert.True(t, opts.Verbose)
}

func TestParseConfigFlagsOverrideConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "corebridge.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("admin-listen: 127.0.0.1:1111\nverbose: true\n"), 0o644))

	withArgs(t, "--config-path="+configPath, "--admin-listen=127.0.0.1:2222")

	opts, _, err := parseConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2222", opts.AdminListenAddr)
	assert.True(t, opts.Verbose)
}

func TestParseConfigRejectsMissingConfigFile(t *testing.T) {
	withArgs(t, "--config-path=/nonexistent/corebridge.yaml")

	_, exitCode, err := parseConfig()
	require.Error(t, err)
	assert.Equal(t, osutil.ExitCodeArgumentError, exitCode)
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	withArgs(t, "--not-a-real-flag")

	_, _, err := parseConfig()
	assert.Error(t, err)
}
