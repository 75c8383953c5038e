package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/internal/application/usecase"
	"github.com/jhoicas/stock-transfer-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-transfer-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-transfer-api/internal/interfaces/http"
	"github.com/jhoicas/stock-transfer-api/internal/jobs"
	"github.com/jhoicas/stock-transfer-api/pkg/config"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
	"github.com/jhoicas/stock-transfer-api/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetría")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Int("applied", applied).Msg("migraciones aplicadas")
	}

	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)

	// Sumidero de eventos: sin REDIS_ADDR los eventos se descartan.
	var publisher inventory.EventPublisher = inventory.NopPublisher{}
	if cfg.Redis.Addr != "" {
		redisClient := infraredis.NewClient(cfg.Redis)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; cada evento se intentará publicar igualmente")
		}
		publisher = infraredis.NewPublisher(redisClient, cfg.Redis.Channel)
	}

	transferUC := inventory.NewTransferUseCase(txRunner, productRepo, locationRepo, publisher, log, inventory.TransferConfig{
		DefaultMinThreshold: cfg.Ledger.DefaultMinThreshold,
		MaxRetries:          cfg.Ledger.MaxRetries,
		RetryBackoff:        cfg.Ledger.RetryBackoff,
		PublishTimeout:      cfg.Ledger.PublishTimeout,
	})
	alertsUC := inventory.NewAlertsUseCase(txRunner, locationRepo, log)
	movementsUC := inventory.NewMovementsUseCase(movementRepo)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, locationRepo, ledgerRepo, cfg.Ledger.DefaultMinThreshold)
	locationUC := usecase.NewLocationUseCase(locationRepo, ledgerRepo)

	scheduler, err := jobs.NewScheduler(log)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	alertJob := jobs.NewAlertScanJob(alertsUC, publisher, log)
	if _, err := alertJob.Schedule(scheduler, cfg.Alerts.ScanInterval); err != nil {
		log.Fatal().Err(err).Msg("registrar escaneo de alertas")
	}
	scheduler.Start()

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		SwaggerFile: "./docs/swagger.json",
		Log:         log,
	})
	httpRouter.Router(app, httpRouter.RouterDeps{
		Transfers:   transferUC,
		Alerts:      alertsUC,
		Movements:   movementsUC,
		Products:    productUC,
		Locations:   locationUC,
		DB:          pool,
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: rutas de escritura sin autenticación")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("apagado del scheduler")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
