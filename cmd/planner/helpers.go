package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/config"
	"github.com/Veraticus/spice-planner/internal/engine"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/Veraticus/spice-planner/internal/storage"
	"github.com/spf13/viper"
)

// app bundles what a command needs; close releases the engine and database.
type app struct {
	engine *engine.Engine
	store  service.Storage
	cfg    config.Config
}

func (a *app) close() {
	a.engine.Close()
	_ = a.store.Close()
}

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context, cfg config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openApp resolves configuration, opens storage and builds the engine.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Configuration is invalid", err)
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, common.NewUserError("Could not open the database at "+cfg.DatabasePath, err)
	}

	eng, err := engine.New(ctx, store, cfg.Engine)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{engine: eng, store: store, cfg: cfg}, nil
}

// parseAmount reads a major-unit amount such as "80000" or "80,000.50".
func parseAmount(s string) (model.Money, error) {
	m, err := model.ParseMoney(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), model.DefaultCurrency)
	if err != nil {
		return model.Money{}, common.NewUserError(fmt.Sprintf("%q is not an amount", s), err)
	}
	return m, nil
}
