package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/memlog/internal/config"
	"github.com/felixgeelhaar/memlog/internal/events"
	"github.com/felixgeelhaar/memlog/internal/observe"
	"github.com/felixgeelhaar/memlog/internal/secret"
	"github.com/felixgeelhaar/memlog/internal/store"
	"github.com/spf13/cobra"
)

var errInvalidConfig = errors.New("invalid configuration")

// loadConfig resolves settings in order: defaults, config file,
// MEMLOG_* environment, command-line flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.dbPath != "" {
		cfg.Storage.Path = o.dbPath
	}
	if o.verbose {
		cfg.Log.Verbose = true
	}
	if o.jsonLogs {
		cfg.Log.JSON = true
	}
	return cfg, nil
}

// app bundles what a command needs once configuration is resolved.
type app struct {
	cfg      *config.Config
	obs      *observe.Observer
	store    store.Storage
	bus      *events.Bus
	warnings []string // from config validation
}

// open loads configuration, validates it and opens the store. The caller
// must Close the returned app.
func (o *rootOptions) open(cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	obs := observe.New(cmd.ErrOrStderr(), cfg.Log)

	res := cfg.Validate()
	if !res.Valid {
		return nil, fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(res.Errors, "; "))
	}

	dsn, err := openDSN(cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cmd.Context(), cfg.Storage, dsn)
	if err != nil {
		obs.Log().Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open store")
		return nil, err
	}

	bus := events.NewBus()
	bus.SubscribeAll(obs.LogEvent)

	return &app{cfg: cfg, obs: obs, store: s, bus: bus, warnings: res.Warnings}, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	_ = a.obs.Close()
	return err
}

// openDSN unseals a sealed DSN. Plain values pass through.
func openDSN(dsn string) (string, error) {
	if !secret.IsSealed(dsn) {
		return dsn, nil
	}
	box, err := secret.NewBox()
	if err != nil {
		return "", err
	}
	plain, err := box.Open(dsn)
	if err != nil {
		return "", fmt.Errorf("storage.dsn: %w", err)
	}
	return plain, nil
}
