package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sherwynjoel/hybridllm/internal/client"
	"github.com/sherwynjoel/hybridllm/internal/collector"
	"github.com/sherwynjoel/hybridllm/internal/config"
	"github.com/sherwynjoel/hybridllm/internal/logging"
	"github.com/sherwynjoel/hybridllm/profiles"
)

// app bundles what every command needs after configuration is resolved.
type app struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	client *client.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if debug {
		cfg.Debug = true
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	c := client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger),
		client.WithCache(cfg.CacheSize),
	)
	logger.Debugw("configuration loaded", "api_url", c.BaseURL(), "profile", cfg.Profile, "cache_size", cfg.CacheSize)
	return &app{cfg: cfg, logger: logger, client: c}, nil
}

// privacyMode resolves the routing flag: --privacy-first when given, then
// the saved setting, then the configured default.
func (a *app) privacyMode(cmd *cobra.Command) (bool, error) {
	if f := cmd.Flags().Lookup("privacy-first"); f != nil && f.Changed {
		return privacyFirst, nil
	}
	return config.PrivacyMode(config.DefaultSettingsPath(), a.cfg.PrivacyFirstMode)
}

// collectOptions merges the selected profile with configured and extra
// exclusions.
func (a *app) collectOptions(profileName string, extraDirs, extraPatterns []string) (collector.Options, error) {
	if profileName == "" {
		profileName = a.cfg.Profile
	}
	p, err := profiles.Get(profileName)
	if err != nil {
		return collector.Options{}, err
	}
	p = profiles.Merge(p, a.cfg.ExcludeDirs, a.cfg.IgnorePatterns)
	p = profiles.Merge(p, extraDirs, extraPatterns)
	opts := p.Options()
	if err := opts.Validate(); err != nil {
		return collector.Options{}, err
	}
	return opts, nil
}

// signalContext is canceled on interrupt so long scans stop between files.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
