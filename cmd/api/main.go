package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/application/numbering"
	"github.com/jhoicas/pos-stock-api/internal/application/purchasing"
	"github.com/jhoicas/pos-stock-api/internal/application/sales"
	"github.com/jhoicas/pos-stock-api/internal/application/usecase"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/kafka"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/lock"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/metrics"
	inframongo "github.com/jhoicas/pos-stock-api/internal/infrastructure/mongo"
	infrapdf "github.com/jhoicas/pos-stock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pos-stock-api/internal/infrastructure/redis"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/tracing"
	httpRouter "github.com/jhoicas/pos-stock-api/internal/interfaces/http"
	"github.com/jhoicas/pos-stock-api/pkg/config"
	"github.com/jhoicas/pos-stock-api/pkg/logger"
)

// storage adaptador de persistencia elegido por STORAGE_DRIVER.
type storage struct {
	repos    repository.Repositories
	txRunner inventory.TxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.App.Name, cfg.Tracing)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.close()

	// Bloqueo por producto: Redis si está configurado (varias réplicas), si no en proceso.
	var locker inventory.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb, cfg.Redis.LockTTL, cfg.Redis.LockWait, log.Component("lock"))
	}

	var publisher inventory.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewPublisher(cfg.Kafka)
		defer p.Close()
		publisher = p
	}

	m := metrics.New()
	numbers := numbering.NewGenerator()

	ledger := inventory.NewLedger(store.txRunner, locker, publisher, m, log.Component("ledger"))
	productUC := usecase.NewProductUseCase(store.repos.Products, ledger)
	movementsUC := inventory.NewMovementsUseCase(store.repos.Movements)
	receipts := infrapdf.NewReceiptGenerator(cfg.App.Name, "es")
	salesUC := sales.NewUseCase(ledger, store.repos.Sales, numbers, receipts, log.Component("sales"))
	purchaseUC := purchasing.NewUseCase(ledger, store.repos, numbers, log.Component("purchasing"))
	supplierUC := purchasing.NewSupplierUseCase(store.repos.Suppliers)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestMetrics(m))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		Ledger:      ledger,
		MovementsUC: movementsUC,
		SalesUC:     salesUC,
		PurchaseUC:  purchaseUC,
		SupplierUC:  supplierUC,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
	})

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
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &storage{
			repos:    postgres.NewRepositories(pool),
			txRunner: postgres.NewTxRunner(pool),
			close:    pool.Close,
		}, nil

	case config.StorageDriverMongo:
		client, err := inframongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		s := inframongo.NewStore(client, cfg.Mongo.Database)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &storage{
			repos:    s.Repositories(),
			txRunner: s,
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.StorageDriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{repos: s.Repositories(), txRunner: s, close: func() {}}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento %q no soportado", cfg.Storage.Driver)
}
