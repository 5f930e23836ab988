// Package bootstrap wires docbase together: it builds the module registry,
// composes the bootstrap catalog, validates it and provisions it into the
// configured store.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/artpar/docbase/config"
	"github.com/artpar/docbase/core/catalog"
	"github.com/artpar/docbase/core/compose"
	"github.com/artpar/docbase/core/registry"
	"github.com/artpar/docbase/core/storage"
	"github.com/artpar/docbase/core/validation"
	"github.com/rs/zerolog"
)

// App holds the assembled application.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *registry.Registry
	Catalog  catalog.Catalog
	Store    storage.Store
}

// Option customizes New.
type Option func(*options)

type options struct {
	modules []registry.Module
	logger  *zerolog.Logger
}

// WithModules registers extra modules after the core module and before
// modules loaded from the configured directory.
func WithModules(mods ...registry.Module) Option {
	return func(o *options) {
		o.modules = append(o.modules, mods...)
	}
}

// WithLogger replaces the logger derived from configuration.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// New builds the registry and catalog and opens the store. The App itself
// is the host handed to module schema factories. The catalog is built once;
// any failure aborts startup.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config:   cfg,
		Registry: registry.New(),
	}
	if o.logger != nil {
		a.Logger = *o.logger
	} else {
		a.Logger = NewLogger(cfg.Logging, os.Stdout)
	}

	for _, mod := range append([]registry.Module{catalog.CoreModule()}, o.modules...) {
		if err := a.Registry.Register(mod); err != nil {
			return nil, fmt.Errorf("register modules: %w", err)
		}
	}

	if cfg.Modules.Dir != "" {
		if err := a.Registry.LoadDir(cfg.Modules.Dir); err != nil {
			return nil, fmt.Errorf("load modules: %w", err)
		}
	}

	a.Logger.Info().
		Strs("modules", a.Registry.Names()).
		Msg("building bootstrap catalog")

	cat, err := a.buildCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	if err := validation.ValidateCatalog(cat); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	a.Catalog = cat

	store, err := OpenStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.Store = store

	return a, nil
}

func (a *App) buildCatalog(ctx context.Context) (catalog.Catalog, error) {
	if d := a.Config.Catalog.BuildTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	opts := []compose.Option{compose.WithLogger(a.Logger)}
	if a.Config.Catalog.StrictKeys {
		opts = append(opts, compose.WithStrictKeys())
	}

	return catalog.Build(ctx, a.Registry, a, opts...)
}

// Provision writes the catalog into the store.
func (a *App) Provision(ctx context.Context) error {
	return Provision(ctx, a.Store, a.Catalog, a.Logger)
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// Provision validates every descriptor against the catalog's meta-schema
// and then writes each one into the collection collection. Nothing is
// written if any descriptor is invalid.
func Provision(ctx context.Context, store storage.Store, cat catalog.Catalog, logger zerolog.Logger) error {
	if err := validation.ValidateCatalog(cat); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}

	docs := make([]storage.Document, 0, len(cat))
	for _, col := range cat {
		doc, err := storage.FromValue(col)
		if err != nil {
			return fmt.Errorf("encode %s: %w", col.ID, err)
		}
		docs = append(docs, doc)
	}

	for _, doc := range docs {
		if _, err := store.Put(ctx, catalog.CollectionID, doc); err != nil {
			return fmt.Errorf("provision %s: %w", doc.ID(), err)
		}
		logger.Info().Str("collection", doc.ID()).Msg("provisioned collection")
	}
	return nil
}

// OpenStore opens the store selected by cfg.
func OpenStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverFile:
		s, err := storage.NewFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil
	case config.DriverSQLite:
		s, err := storage.NewSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewLogger builds the application logger from configuration.
func NewLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
