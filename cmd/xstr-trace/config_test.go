package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurahaupo/libxstr/heap"
)

func parsedFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd.Flags()
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(parsedFlags(t), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, backendGo, cfg.Backend)
	assert.Equal(t, uint32(1), cfg.Pages)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Scenarios)
	assert.False(t, cfg.Interactive)
	assert.False(t, cfg.NoColor)
}

func TestLoadConfig_Flags(t *testing.T) {
	flags := parsedFlags(t,
		"--backend", "linear", "--pages", "3", "--log-level", "debug",
		"--scenario", "relay", "--scenario", "buffer", "-i", "--no-color")
	cfg, err := loadConfig(flags, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, backendLinear, cfg.Backend)
	assert.Equal(t, uint32(3), cfg.Pages)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"relay", "buffer"}, cfg.Scenarios)
	assert.True(t, cfg.Interactive)
	assert.True(t, cfg.NoColor)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("XSTR_BACKEND", "linear")
	t.Setenv("XSTR_LOG_LEVEL", "info")
	t.Setenv("XSTR_NO_COLOR", "true")

	cfg, err := loadConfig(parsedFlags(t), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, backendLinear, cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.NoColor)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := "backend: linear\npages: 4\nscenario:\n  - handoff\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xstr-trace.yaml"), []byte(yaml), 0o644))

	cfg, err := loadConfig(parsedFlags(t), dir)
	require.NoError(t, err)
	assert.Equal(t, backendLinear, cfg.Backend)
	assert.Equal(t, uint32(4), cfg.Pages)
	assert.Equal(t, []string{"handoff"}, cfg.Scenarios)

	// An explicit flag wins over the file.
	cfg, err = loadConfig(parsedFlags(t, "--backend", "go"), dir)
	require.NoError(t, err)
	assert.Equal(t, backendGo, cfg.Backend)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"backend", []string{"--backend", "mmap"}, "unknown backend"},
		{"pages", []string{"--pages", "0"}, "pages"},
		{"log level", []string{"--log-level", "loud"}, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(parsedFlags(t, tt.args...), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_NewAllocator(t *testing.T) {
	ctx := context.Background()

	cfg := &config{Backend: backendGo, Pages: 1}
	a, err := cfg.newAllocator(ctx, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &heap.GoHeap{}, a)
	require.NoError(t, a.Close())

	cfg = &config{Backend: backendLinear, Pages: 2}
	a, err = cfg.newAllocator(ctx, zap.NewNop())
	require.NoError(t, err)
	l, ok := a.(*heap.Linear)
	require.True(t, ok)
	assert.Equal(t, uint32(2*65536), l.Memory().Size())
	require.NoError(t, a.Close())
}
