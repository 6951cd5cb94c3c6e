package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withValue(t *testing.T, key string, value interface{}) {
	prev := vip.Get(key)
	Set(key, value)
	t.Cleanup(func() { Set(key, prev) })
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"empty datadir", DatadirKey, ""},
		{"unknown db type", DBTypeKey, "postgres"},
		{"empty daemon endpoint", DaemonEndpointKey, ""},
		{"daemon endpoint without scheme", DaemonEndpointKey, "127.0.0.1:11898"},
		{"negative retry interval", RetryIntervalKey, -1},
		{"zero queue size", QueueSizeKey, 0},
		{"zero address prefix", AddressPrefixKey, 0},
		{"missing password file", WalletPasswordFileKey, "/does/not/exist"},
	}

	require.NoError(t, validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withValue(t, tt.key, tt.value)
			require.Error(t, validate())
		})
	}

	t.Run("invalid metrics port", func(t *testing.T) {
		withValue(t, EnableMetricsKey, true)
		withValue(t, MetricsPortKey, 70000)
		require.Error(t, validate())
	})
}

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	withValue(t, DatadirKey, datadir)
	withValue(t, EnableProfilerKey, true)

	require.NoError(t, InitConfig())

	for _, dir := range []string{DbLocation, KeystoreLocation, ProfilerLocation} {
		info, err := os.Stat(filepath.Join(datadir, dir))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}

	require.Equal(t, filepath.Join(datadir, DbLocation), GetDbDir())
	require.Equal(t, filepath.Join(datadir, KeystoreLocation), GetKeystoreDir())

	t.Run("inmemory db", func(t *testing.T) {
		withValue(t, DBTypeKey, "inmemory")
		require.Empty(t, GetDbDir())
	})
}

func TestGetDaemonOptions(t *testing.T) {
	withValue(t, DaemonEndpointKey, "http://node.example.com:11898")
	withValue(t, DaemonRequestTimeoutKey, 1500)
	withValue(t, DaemonRateLimitKey, 20)
	withValue(t, BlockCountKey, 50)

	opts := GetDaemonOptions()
	require.Equal(t, "http://node.example.com:11898", opts.Endpoint)
	require.Equal(t, 1500*time.Millisecond, opts.RequestTimeout)
	require.Equal(t, 20, opts.RateLimit)
	require.Equal(t, uint64(50), opts.BlockCount)
}
