package main

import (
	"context"
	"os"
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-transfer-api/pkg/config"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
)

// Aplica las migraciones pendientes y termina. Es idempotente.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		os.Exit(1)
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Error().Err(err).Msg("migraciones")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Int("applied", applied).Msg("esquema al día")
}
