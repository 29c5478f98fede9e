// Package cli implements the phone-roster command line: the HTTP server
// plus one-shot commands for lookups, submissions and exports.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/phone-roster/internal/config"
	"github.com/aanand-mishra/phone-roster/internal/logger"
	"github.com/aanand-mishra/phone-roster/internal/registration"
	"github.com/aanand-mishra/phone-roster/internal/storage"
	"github.com/aanand-mishra/phone-roster/internal/storage/postgres"
	"github.com/aanand-mishra/phone-roster/internal/storage/sqlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json" | "yaml"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the phone-roster CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "phone-roster",
		Short:         "Student phone number registration",
		Long:          "Register phone numbers against a fixed class roster, with duplicate-number protection.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to the configuration YAML file (default $CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// app is what every command works with once bootstrapped.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store storage.Storage
	svc   *registration.Service
}

func (a *app) Close() error { return a.store.Close() }

// bootstrap loads config, builds the logger, opens (and if needed repairs)
// the store and wires the registration service.
func bootstrap(ctx context.Context, cmd *cobra.Command, opts *RootOptions) (*app, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Env, cmd.ErrOrStderr())
	log.Debug("config loaded", slog.Any("config", cfg))

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		svc:   registration.New(store, log),
	}, nil
}

// openStore picks the engine from cfg.Storage.Driver. Only the SQLite file
// is recreated on an init failure; a Postgres database is never dropped.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return storage.OpenWithRepair(ctx, "", func(ctx context.Context) (storage.Storage, error) {
			p, err := postgres.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return initialized(ctx, p)
		}, log)
	default:
		return storage.OpenWithRepair(ctx, cfg.Storage.Path, func(ctx context.Context) (storage.Storage, error) {
			s, err := sqlite.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return initialized(ctx, s)
		}, log)
	}
}

func initialized(ctx context.Context, s storage.Storage) (storage.Storage, error) {
	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
