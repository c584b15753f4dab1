package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/billing"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/audit"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/tax"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

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
		Str("storage", cfg.Storage.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetría")
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Backend de almacenamiento: PostgreSQL en producción, memoria para desarrollo local.
	var (
		txRunner    inventory.TxRunner
		healthCheck func() error
	)
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		txRunner = memory.New()
	default:
		if cfg.Migrations.RunOnStartup {
			if err := runMigrations(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		healthCheck = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
	}

	m := metrics.New(true)

	sinks := []inventory.AuditSink{audit.NewLogSink(log)}
	if cfg.Kafka.Enabled() {
		kafkaSink := audit.NewKafkaSink(audit.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic), 0)
		defer func() { _ = kafkaSink.Close() }()
		sinks = append(sinks, audit.NewBreakerSink(kafkaSink, audit.BreakerConfig{Name: "kafka-audit"}, log))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.AuditTopic).Msg("auditoría en kafka")
	}

	collab := inventory.Collaborators{
		Audit:   audit.NewMultiSink(sinks...),
		Metrics: m,
		Logger:  log,
	}
	if cfg.Redis.Enabled() {
		availCache, err := cache.NewRedisAvailabilityCache(ctx, cfg.Redis)
		if err != nil {
			// La caché solo sirve a tableros; sin ella se lee siempre del libro.
			log.Warn().Err(err).Msg("caché de disponibilidad desactivada")
		} else {
			defer func() { _ = availCache.Close() }()
			collab.Cache = availCache
		}
	}

	taxCalc, err := tax.FromConfig(cfg.Tax)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de impuestos")
	}

	swaggerFile := "./docs/swagger.json"
	if _, err := os.Stat(swaggerFile); err != nil {
		swaggerFile = ""
	}

	app := httpRouter.NewApp(httpRouter.RouterDeps{
		WarehouseUC:  usecase.NewWarehouseUseCase(txRunner),
		ItemUC:       usecase.NewItemUseCase(txRunner),
		OrderUC:      usecase.NewOrderUseCase(txRunner),
		Reservations: inventory.NewReservationUseCase(txRunner, collab),
		Documents: httpRouter.DocumentEngines{
			Drafts:      inventory.NewDraftUseCase(txRunner, collab),
			Shipments:   inventory.NewShipmentPostingUseCase(txRunner, taxCalc, collab),
			Receipts:    inventory.NewReceiptPostingUseCase(txRunner, collab),
			Transfers:   inventory.NewTransferPostingUseCase(txRunner, collab),
			Adjustments: inventory.NewAdjustmentPostingUseCase(txRunner, collab),
		},
		Availability:  inventory.NewAvailabilityUseCase(txRunner, collab),
		Replenishment: inventory.NewReplenishmentUseCase(txRunner, collab),
		Sequencer:     inventory.NewSequencerUseCase(txRunner, collab),
		Invoices:      billing.NewInvoiceUseCase(txRunner, pdf.NewMarotoPDFGenerator(cfg.App.Name)),
		Metrics:       m,
		HealthCheck:   healthCheck,
		Logger:        log,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
		PostingRoles:  cfg.JWT.PostingRoles,
		SwaggerFile:   swaggerFile,
		AppName:       cfg.App.Name,
	}, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)

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

	log.Info().Msg("aplicación detenida")
}

func runMigrations(dsn string, log *logger.Logger) error {
	mg, err := postgres.NewMigrator(dsn, log)
	if err != nil {
		return err
	}
	defer func() { _ = mg.Close() }()
	return mg.Up()
}
