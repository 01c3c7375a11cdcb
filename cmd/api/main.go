package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// txRunner lo cumplen tanto postgres.TxRunner como memory.Store.
type txRunner interface {
	inventory.TxRunner
	ordering.TxRunner
}

// backend repositorios y unidad atómica del driver configurado.
type backend struct {
	tx        txRunner
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	orders    repository.OrderRepository
	movements repository.StockMovementRepository
	reports   repository.ReportRepository
	health    func(ctx context.Context) error
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			tx:        store,
			products:  store.Products(),
			suppliers: store.Suppliers(),
			orders:    store.Orders(),
			movements: store.Movements(),
			reports:   store.Reports(),
			close:     func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		orders:    postgres.NewOrderRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		reports:   postgres.NewReportRepository(pool),
		health:    pool.Ping,
		close:     pool.Close,
	}, nil
}

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
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas /api responderán 401")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer be.close()

	// Caché de reportes: opcional, sin Redis cada reporte se calcula en cada petición.
	var reportCache analytics.ReportCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, reportes sin caché")
		} else {
			defer client.Close()
			rc := cache.NewReportCache(client, cfg.Reports.CacheTTL)
			rc.ListenForInvalidation(ctx)
			reportCache = rc
		}
	}

	var m *metrics.Metrics
	if cfg.App.MetricsEnabled {
		m = metrics.New()
	}

	movementUC := inventory.NewMovementUseCase(be.tx, be.movements, be.products, log)
	orderUC := ordering.NewOrderUseCase(be.tx, be.orders, be.suppliers, movementUC, log)
	reportUC := analytics.NewReportUseCase(be.reports, reportCache, log)
	productUC := catalog.NewProductUseCase(be.tx, be.products, be.suppliers, movementUC, log)
	supplierUC := catalog.NewSupplierUseCase(be.suppliers, be.products)
	documentUC := ordering.NewDocumentUseCase(be.orders, be.suppliers, be.products,
		infrapdf.NewMarotoOrderGenerator(cfg.App.Name))

	movementUC.AddObserver(reportUC)
	orderUC.AddObserver(reportUC)

	var observer httpRouter.RequestObserver
	deps := httpRouter.RouterDeps{
		ProductUC:  productUC,
		SupplierUC: supplierUC,
		MovementUC: movementUC,
		OrderUC:    orderUC,
		DocumentUC: documentUC,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
		AdminRoles: cfg.JWT.AdminRoles,
		Health:     be.health,
	}
	if m != nil {
		movementUC.AddObserver(m)
		orderUC.AddObserver(m)
		observer = m
		deps.Metrics = m.Handler()
	}

	app := httpRouter.NewApp(cfg.App.Name, log, observer)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
