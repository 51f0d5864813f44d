package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kurahaupo/libxstr/heap"
)

const (
	configFileName = "xstr-trace"
	configFileType = "yaml"
	envPrefix      = "XSTR"

	cfgKeyBackend     = "backend"
	cfgKeyPages       = "pages"
	cfgKeyLogLevel    = "log-level"
	cfgKeyScenario    = "scenario"
	cfgKeyInteractive = "interactive"
	cfgKeyNoColor     = "no-color"

	backendGo     = "go"
	backendLinear = "linear"
)

type config struct {
	Backend     string
	Pages       uint32
	LogLevel    string
	Scenarios   []string
	Interactive bool
	NoColor     bool
}

// loadConfig merges flags, XSTR_* environment variables and an optional
// xstr-trace.yaml in the working directory, in that order of precedence.
func loadConfig(flags *pflag.FlagSet, configDir string) (*config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, backendGo)
	v.SetDefault(cfgKeyPages, 1)
	v.SetDefault(cfgKeyLogLevel, "warn")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := &config{
		Backend:     v.GetString(cfgKeyBackend),
		Pages:       v.GetUint32(cfgKeyPages),
		LogLevel:    v.GetString(cfgKeyLogLevel),
		Scenarios:   v.GetStringSlice(cfgKeyScenario),
		Interactive: v.GetBool(cfgKeyInteractive),
		NoColor:     v.GetBool(cfgKeyNoColor),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	switch c.Backend {
	case backendGo, backendLinear:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, backendGo, backendLinear)
	}
	if c.Pages == 0 {
		return fmt.Errorf("pages must be at least 1")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// newAllocator builds a fresh allocator for one walkthrough.
func (c *config) newAllocator(ctx context.Context, log *zap.Logger) (heap.Allocator, error) {
	opts := []heap.Option{
		heap.WithSites(),
		heap.WithPoison(),
		heap.WithObserver(heap.ObserverFunc(func(e heap.Event) {
			log.Debug("heap",
				zap.Stringer("event", e.Type),
				zap.Uint32("handle", uint32(e.Handle)),
				zap.Int("size", e.Size),
				zap.String("site", e.Site))
		})),
	}
	if c.Backend == backendLinear {
		return heap.NewLinear(ctx, append(opts, heap.WithPages(c.Pages))...)
	}
	return heap.NewGoHeap(opts...), nil
}

// newLogger builds a console logger writing to stderr at the configured level.
func (c *config) newLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	return zc.Build()
}
