package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/specsync/internal/config"
	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
	"github.com/JonMunkholm/specsync/internal/store"
)

// deps holds the source and store of one command and what closes them.
type deps struct {
	source  sheet.Source
	store   core.EntityStore
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// openDeps opens the configured sheet source and entity store. A dry run
// swaps the store for an empty in-memory one.
func openDeps(ctx context.Context, cfg *config.Config, dryRun bool) (*deps, error) {
	d := &deps{}

	src, err := openSource(ctx, cfg.Sheets)
	if err != nil {
		return nil, err
	}
	d.source = src

	if dryRun {
		slog.Info("dry run: writing to in-memory store")
		d.store = store.NewMemoryStore()
		return d, nil
	}

	if err := d.openStore(ctx, cfg.Store); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func openSource(ctx context.Context, cfg config.SheetsConfig) (sheet.Source, error) {
	switch strings.ToLower(cfg.Source) {
	case config.SourceXLSX:
		return sheet.NewXLSXSource(cfg.XLSXPath), nil
	case config.SourceGoogle:
		src, err := sheet.NewGoogleSource(ctx, cfg.SpreadsheetID, cfg.CredentialsFile, cfg.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("open google sheet: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown sheet source %q", cfg.Source)
	}
}

func (d *deps) openStore(ctx context.Context, cfg config.StoreConfig) error {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendMemory:
		d.store = store.NewMemoryStore()

	case config.BackendPostgres:
		pool, err := store.OpenPool(ctx, store.PoolConfig{
			URL:             cfg.DatabaseURL,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return err
		}
		d.closers = append(d.closers, pool.Close)

		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		d.store = pg

	case config.BackendRedis:
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, func() {
			if err := rs.Close(); err != nil {
				slog.Warn("close redis", "error", err)
			}
		})
		d.store = rs

	case config.BackendYAML:
		ys, err := store.NewYAMLStore(cfg.ConfigDir)
		if err != nil {
			return err
		}
		d.store = ys

	default:
		return fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	slog.Info("entity store ready", "backend", cfg.Backend)
	return nil
}
