// Package common holds the start-up steps shared by every subcommand.
package common

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cryptogift/ledger/internal/infrastructure/config"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

const storeOpenTimeout = 10 * time.Second

// Flags are the persistent root flags.
type Flags struct {
	Env        string
	ConfigPath string
}

// Runtime is what a command needs after start-up.
type Runtime struct {
	Config *config.Config
	Logger logger.Interface
	Store  kvstore.Store
}

// Close releases the store.
func (r *Runtime) Close() {
	if err := r.Store.Close(); err != nil {
		r.Logger.Warnw("failed to close store", "store", r.Store.Name(), "error", err)
	}
}

// ResolveEnv lets the ENV variable override the --env flag.
func ResolveEnv(flagValue string) string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return flagValue
}

// MapEnvToGinMode converts a deployment environment name into a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

// Bootstrap loads configuration, initializes logging and the business
// timezone, and opens the store.
func Bootstrap(ctx context.Context, flags Flags) (*Runtime, error) {
	env := ResolveEnv(flags.Env)

	cfg, err := config.Load(MapEnvToGinMode(env), flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Scheduler.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}

	openCtx, cancel := context.WithTimeout(ctx, storeOpenTimeout)
	defer cancel()
	store, err := kvstore.Open(openCtx, &cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	log.Infow("runtime ready",
		"environment", env,
		"store", store.Name(),
		"network", cfg.Referral.Network,
	)

	return &Runtime{Config: cfg, Logger: log, Store: store}, nil
}
