package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/procurement"
	"github.com/jhoicas/warehouse-ledger/internal/application/reporting"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/excel"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/warehouse-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/warehouse-ledger/internal/interfaces/http"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// backend repositorios autocommit + el runner transaccional del store elegido.
type backend struct {
	tx         inventory.TxRunner
	stock      repository.StockLineReader
	movements  repository.MovementReader
	warehouses repository.WarehouseRepository
	items      repository.ItemRepository
	grns       repository.GoodsReceiptRepository
	deliveries repository.DeliveryRepository
	audit      repository.AuditRepository
	reports    repository.ReportRepository
	snapshots  repository.LedgerSnapshotReader
	close      func()
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
		Str("store", cfg.Ledger.Store).
		Int64("node_id", cfg.Ledger.NodeID).
		Msg("iniciando aplicación")

	ids, err := idgen.New(cfg.Ledger.NodeID)
	if err != nil {
		log.Fatal().Err(err).Msg("generador de IDs")
	}

	ctx := context.Background()
	be := openBackend(ctx, cfg, ids, log)
	defer be.close()

	engine := inventory.NewEngine(be.tx, be.audit, log)
	reportsUC := reporting.NewReportUseCase(
		be.reports, be.snapshots,
		excel.NewSnapshotExporter(),
		infrapdf.NewValuationPDFGenerator(cfg.App.Name),
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Warehouse Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:      engine,
		Queries:     inventory.NewQueryUseCase(be.stock, be.movements),
		WarehouseUC: usecase.NewWarehouseUseCase(be.warehouses),
		ItemUC:      usecase.NewItemUseCase(be.items),
		Receipts:    procurement.NewReceiptUseCase(be.tx, engine, be.grns, ids),
		Deliveries:  procurement.NewDeliveryUseCase(be.tx, engine, be.deliveries, ids),
		Reports:     reportsUC,
		Audit:       reporting.NewAuditUseCase(be.audit),
		JWTSecret:   cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, ids *idgen.Generator, log *logger.Logger) *backend {
	if cfg.Ledger.Store == config.StoreMemory {
		log.Warn().Msg("ledger en memoria: los datos se pierden al reiniciar")
		s := memory.New(ids, cfg.Ledger.LockTimeout)
		return &backend{
			tx:         s,
			stock:      s.StockLines(),
			movements:  s.Movements(),
			warehouses: s.Warehouses(),
			items:      s.Items(),
			grns:       s.GoodsReceipts(),
			deliveries: s.Deliveries(),
			audit:      s.Audit(),
			reports:    s.Reports(),
			snapshots:  s,
			close:      func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.Ledger.LockTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("crear esquema")
		}
		log.Info().Msg("esquema verificado")
	}
	return &backend{
		tx:         postgres.NewTxRunner(pool, ids, cfg.Ledger.MaxRetries, log),
		stock:      postgres.NewStockLineRepository(pool),
		movements:  postgres.NewMovementRepository(pool, ids),
		warehouses: postgres.NewWarehouseRepository(pool),
		items:      postgres.NewItemRepository(pool),
		grns:       postgres.NewGoodsReceiptRepository(pool),
		deliveries: postgres.NewDeliveryRepository(pool),
		audit:      postgres.NewAuditRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		snapshots:  postgres.NewSnapshotReader(pool),
		close:      pool.Close,
	}
}
