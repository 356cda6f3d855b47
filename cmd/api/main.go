package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	domaininv "github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
	"github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/memory"
	infrapdf "github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/pdf"
	"github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/postgres"
	"github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/productdir"
	"github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/sqlite"
	httpRouter "github.com/rfranzoia/cloud-ready-stock/internal/interfaces/http"
	"github.com/rfranzoia/cloud-ready-stock/pkg/config"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
	"github.com/rfranzoia/cloud-ready-stock/pkg/telemetry"
)

// storage agrupa lo que el kardex necesita del almacenamiento elegido.
type storage struct {
	txRunner inventory.TxRunner
	stocks   repository.StockPeriodRepository
	txs      repository.TransactionRepository
	closer   io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, cfg.App.Name, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error().Err(err).Msg("cerrar telemetría")
		}
	}()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer func() {
		if err := store.closer.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar almacenamiento")
		}
	}()

	policy, err := domaininv.ParseClampPolicy(cfg.Ledger.ClampPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("política de saldo")
	}
	engine := inventory.NewLedgerEngine(inventory.LedgerConfig{
		ClampPolicy:       policy,
		MaxLookbackMonths: cfg.Ledger.MaxLookbackMonths,
		CarryPriorYear:    cfg.Ledger.CarryPriorYear,
	}, log)
	locks := inventory.NewProductLocks()
	directory := productdir.NewHTTPDirectory(cfg.ProductService.BaseURL, cfg.ProductService.Timeout)

	// PDF: tarjeta de kardex por producto
	renderer := infrapdf.NewStockCardRenderer(cfg.App.Name)

	transactions := inventory.NewTransactionLedger(
		store.txRunner, store.txs, directory, engine, locks, cfg.Ledger.SyncOnDelete, log,
	)
	stocks := inventory.NewStockLedger(
		store.txRunner, store.stocks, directory, engine, locks, renderer, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Service API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Transactions: transactions,
		Stocks:       stocks,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: las rutas de escritura no requieren autenticación")
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

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Storage.SQLitePath).Msg("almacenamiento SQLite listo")
		return &storage{txRunner: s, stocks: s.Stocks(), txs: s.Transactions(), closer: s}, nil

	case config.StorageMemory:
		s := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner: memory.NewTxRunner(s),
			stocks:   s.Stocks(),
			txs:      s.Transactions(),
			closer:   closeFunc(func() {}),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema PostgreSQL aplicado")
	}
	return &storage{
		txRunner: postgres.NewTxRunner(pool),
		stocks:   postgres.NewStockPeriodRepository(pool),
		txs:      postgres.NewTransactionRepository(pool),
		closer:   closeFunc(pool.Close),
	}, nil
}

// closeFunc adapta un Close sin error (pgxpool, memoria) a io.Closer.
type closeFunc func()

func (f closeFunc) Close() error {
	f()
	return nil
}
