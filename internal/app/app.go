package app

import (
	"context"
	"fmt"
	"time"

	"github.com/crobledo/vitrina/internal/catalog"
	"github.com/crobledo/vitrina/internal/config"
	"github.com/crobledo/vitrina/internal/mutate"
	"github.com/crobledo/vitrina/internal/prefs"
	"github.com/crobledo/vitrina/internal/state"
	"github.com/crobledo/vitrina/internal/ui"
)

// Options configure the vitrina application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/vitrina/prefs.toml
	RefreshEvery int    // seconds; zero uses the configured default
}

// Run boots the vitrina TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := catalog.NewClient(cfg.APIBase, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init catalog client: %w", err)
	}

	store := &state.Store{}
	coordinator := mutate.New(client, store)

	interval := cfg.RefreshEvery
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}

	// Start background refresher
	StartPoller(ctx, store, client, interval)

	// Do initial refresh to populate the store before the UI starts
	refresh(ctx, store, client)

	uiOpts := ui.Options{
		Context:     ctx,
		Client:      client,
		Store:       store,
		Coordinator: coordinator,
		ThemeName:   userPrefs.Theme,
		PrefsPath:   opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}
