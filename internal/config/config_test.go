package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func parseArgs(t *testing.T, env map[string]string, args ...string) (*Config, error) {
	t.Helper()
	return parse(args, envMap(env), io.Discard)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Interface)
	assert.False(t, cfg.DisableScaling)
	assert.True(t, cfg.ScalingEnabled())
	assert.False(t, cfg.EnableAltPrefix)
	assert.Equal(t, "/tmp", cfg.Prefix)
	assert.Equal(t, "netrate_send_total", cfg.SendTotalFilename)
	assert.Equal(t, "netrate_recv_total", cfg.RecvTotalFilename)
	assert.Equal(t, "netrate_send_interval", cfg.SendIntervalFilename)
	assert.Equal(t, "netrate_recv_interval", cfg.RecvIntervalFilename)
	assert.Equal(t, "netrate_pid", cfg.PIDFilename)
	assert.Equal(t, 5, cfg.IntervalSeconds)
	assert.Equal(t, 5*time.Second, cfg.Interval())
	assert.Equal(t, "/proc/net/dev", cfg.ProcNetDev)
}

func TestParse_Flags(t *testing.T) {
	t.Run("interface only", func(t *testing.T) {
		cfg, err := parseArgs(t, nil, "eth0")
		require.NoError(t, err)

		assert.Equal(t, "eth0", cfg.Interface)
		assert.True(t, cfg.ScalingEnabled())
		assert.Equal(t, DefaultIntervalSeconds, cfg.IntervalSeconds)
	})

	t.Run("short flags", func(t *testing.T) {
		cfg, err := parseArgs(t, nil,
			"-c", "-e", "-u", "su", "-d", "du", "-s", "ss", "-r", "rr", "-i", "pid", "-v", "2", "wlan0")
		require.NoError(t, err)

		assert.Equal(t, "wlan0", cfg.Interface)
		assert.True(t, cfg.DisableScaling)
		assert.False(t, cfg.ScalingEnabled())
		assert.True(t, cfg.EnableAltPrefix)
		assert.Equal(t, "su", cfg.SendTotalFilename)
		assert.Equal(t, "du", cfg.RecvTotalFilename)
		assert.Equal(t, "ss", cfg.SendIntervalFilename)
		assert.Equal(t, "rr", cfg.RecvIntervalFilename)
		assert.Equal(t, "pid", cfg.PIDFilename)
		assert.Equal(t, 2*time.Second, cfg.Interval())
	})

	t.Run("long flags after the interface", func(t *testing.T) {
		cfg, err := parseArgs(t, nil,
			"enp3s0", "--disable-scaling", "--interval-seconds", "10", "--send-total=a", "--recv-interval", "b",
			"--proc-net-dev", "/tmp/dev")
		require.NoError(t, err)

		assert.Equal(t, "enp3s0", cfg.Interface)
		assert.True(t, cfg.DisableScaling)
		assert.Equal(t, 10, cfg.IntervalSeconds)
		assert.Equal(t, "a", cfg.SendTotalFilename)
		assert.Equal(t, "b", cfg.RecvIntervalFilename)
		assert.Equal(t, "/tmp/dev", cfg.ProcNetDev)
	})

	t.Run("explicit prefix enables it", func(t *testing.T) {
		cfg, err := parseArgs(t, nil, "-p", "/var/run/netrate", "eth0")
		require.NoError(t, err)

		assert.True(t, cfg.EnableAltPrefix)
		assert.Equal(t, "/var/run/netrate", cfg.Prefix)
	})

	t.Run("version skips validation", func(t *testing.T) {
		cfg, err := parseArgs(t, nil, "--version")
		require.NoError(t, err)
		assert.True(t, cfg.ShowVersion)
	})

	t.Run("help", func(t *testing.T) {
		_, err := parseArgs(t, nil, "-h")
		assert.ErrorIs(t, err, flag.ErrHelp)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing interface", nil, "interface name is required"},
		{"two interfaces", []string{"eth0", "eth1"}, "expected one interface argument"},
		{"zero interval", []string{"-v", "0", "eth0"}, "at least 1"},
		{"negative interval", []string{"--interval-seconds=-3", "eth0"}, "at least 1"},
		{"interval not a number", []string{"-v", "five", "eth0"}, "invalid value"},
		{"unknown flag", []string{"--bogus", "eth0"}, "flag provided but not defined"},
		{"empty filename", []string{"--send-total=", "eth0"}, "send-total: filename must not be empty"},
		{"filename with separator", []string{"--recv-total", "a/b", "eth0"}, "must not contain a path separator"},
		{"dot dot filename", []string{"--send-interval", "..", "eth0"}, "invalid filename"},
		{"bad pid filename", []string{"--pid-filename", "x/y", "eth0"}, "pid-filename"},
		{"empty prefix", []string{"-e", "-p", "", "eth0"}, "prefix must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(t, nil, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_Environment(t *testing.T) {
	t.Run("values from environment", func(t *testing.T) {
		cfg, err := parseArgs(t, map[string]string{
			"NETRATE_INTERFACE":        "ppp0",
			"NETRATE_DISABLE_SCALING":  "yes",
			"NETRATE_INTERVAL_SECONDS": "3",
			"NETRATE_SEND_TOTAL":       "st",
			"NETRATE_RECV_TOTAL":       "rt",
			"NETRATE_SEND_INTERVAL":    "si",
			"NETRATE_RECV_INTERVAL":    "ri",
			"NETRATE_PID_FILENAME":     "",
			"NETRATE_PROC_NET_DEV":     "/custom/dev",
		})
		require.NoError(t, err)

		assert.Equal(t, "ppp0", cfg.Interface)
		assert.True(t, cfg.DisableScaling)
		assert.Equal(t, 3, cfg.IntervalSeconds)
		assert.Equal(t, "st", cfg.SendTotalFilename)
		assert.Equal(t, "rt", cfg.RecvTotalFilename)
		assert.Equal(t, "si", cfg.SendIntervalFilename)
		assert.Equal(t, "ri", cfg.RecvIntervalFilename)
		assert.Empty(t, cfg.PIDFilename)
		assert.Equal(t, "/custom/dev", cfg.ProcNetDev)
	})

	t.Run("flags override environment", func(t *testing.T) {
		cfg, err := parseArgs(t, map[string]string{
			"NETRATE_INTERFACE":        "ppp0",
			"NETRATE_INTERVAL_SECONDS": "3",
		}, "-v", "7", "tun0")
		require.NoError(t, err)

		assert.Equal(t, "tun0", cfg.Interface)
		assert.Equal(t, 7, cfg.IntervalSeconds)
	})

	t.Run("prefix from environment enables it", func(t *testing.T) {
		cfg, err := parseArgs(t, map[string]string{"NETRATE_PREFIX": "/srv/rate"}, "eth0")
		require.NoError(t, err)

		assert.True(t, cfg.EnableAltPrefix)
		assert.Equal(t, "/srv/rate", cfg.Prefix)
	})

	t.Run("invalid boolean", func(t *testing.T) {
		_, err := parseArgs(t, map[string]string{"NETRATE_ENABLE_ALT_PREFIX": "maybe"}, "eth0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NETRATE_ENABLE_ALT_PREFIX")
	})

	t.Run("invalid interval", func(t *testing.T) {
		_, err := parseArgs(t, map[string]string{"NETRATE_INTERVAL_SECONDS": "soon"}, "eth0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NETRATE_INTERVAL_SECONDS")
	})
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NETRATE_INTERVAL_SECONDS=9\n"), 0600))

	t.Chdir(dir)

	// Registered so the variable set by godotenv is removed afterwards.
	t.Setenv("NETRATE_INTERVAL_SECONDS", "")
	require.NoError(t, os.Unsetenv("NETRATE_INTERVAL_SECONDS"))

	cfg, err := Load([]string{"eth0"})
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.IntervalSeconds)
}

func TestResolvePaths(t *testing.T) {
	t.Run("runtime dir", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Interface = "eth0"

		paths, err := cfg.resolvePaths(func(key string) string {
			if key == RuntimeDirEnv {
				return "/run/user/1000"
			}
			return ""
		})
		require.NoError(t, err)

		assert.Equal(t, "/run/user/1000", paths.Dir)
		assert.Equal(t, "/run/user/1000/netrate_send_total", paths.SendTotal)
		assert.Equal(t, "/run/user/1000/netrate_recv_total", paths.RecvTotal)
		assert.Equal(t, "/run/user/1000/netrate_send_interval", paths.SendInterval)
		assert.Equal(t, "/run/user/1000/netrate_recv_interval", paths.RecvInterval)
		assert.Equal(t, "/run/user/1000/netrate_pid", paths.PID)
	})

	t.Run("runtime dir unset", func(t *testing.T) {
		cfg := DefaultConfig()

		_, err := cfg.resolvePaths(func(string) string { return "" })
		assert.True(t, errors.Is(err, ErrRuntimeDirUnset))
	})

	t.Run("alternate prefix ignores runtime dir", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EnableAltPrefix = true
		cfg.PIDFilename = ""

		paths, err := cfg.resolvePaths(func(string) string { return "/run/user/1000" })
		require.NoError(t, err)

		assert.Equal(t, "/tmp", paths.Dir)
		assert.Equal(t, "/tmp/netrate_send_total", paths.SendTotal)
		assert.Empty(t, paths.PID)
	})

	t.Run("process environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(RuntimeDirEnv, dir)

		paths, err := DefaultConfig().ResolvePaths()
		require.NoError(t, err)
		assert.Equal(t, dir, paths.Dir)
	})
}

func TestPaths_EnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	paths := &Paths{Dir: dir}

	require.NoError(t, paths.EnsureDir())
	assert.DirExists(t, dir)

	// Existing directories are fine.
	require.NoError(t, paths.EnsureDir())
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "y", "on"} {
		b, err := parseBool(v)
		require.NoError(t, err)
		assert.True(t, b, v)
	}
	for _, v := range []string{"0", "false", "no", "n", "off"} {
		b, err := parseBool(v)
		require.NoError(t, err)
		assert.False(t, b, v)
	}
	_, err := parseBool("sometimes")
	assert.Error(t, err)
}
