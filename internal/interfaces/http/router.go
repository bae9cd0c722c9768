package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/procurement"
	"github.com/jhoicas/warehouse-ledger/internal/application/reporting"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine      *inventory.Engine
	Queries     *inventory.QueryUseCase
	WarehouseUC *usecase.WarehouseUseCase
	ItemUC      *usecase.ItemUseCase
	Receipts    *procurement.ReceiptUseCase
	Deliveries  *procurement.DeliveryUseCase
	Reports     *reporting.ReportUseCase
	Audit       *reporting.AuditUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo bajo /api requiere Bearer Token;
// escribir exige storekeeper, leer basta con viewer (admin pasa siempre).
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	read := RequireRole(RoleViewer, RoleStorekeeper)
	write := RequireRole(RoleStorekeeper)

	// Inventory
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.Queries)
	inv.Post("/movements", write, inventoryHandler.RegisterMovement)
	inv.Get("/movements", read, inventoryHandler.ListMovements)
	inv.Get("/movements/:id", read, inventoryHandler.GetMovement)
	inv.Get("/stock", read, inventoryHandler.ListStock)
	inv.Get("/stock/line", read, inventoryHandler.GetStock)

	// Warehouses + bins
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", write, warehouseHandler.Create)
	warehouses.Get("/", read, warehouseHandler.List)
	warehouses.Get("/:id", read, warehouseHandler.GetByID)
	warehouses.Put("/:id", write, warehouseHandler.Update)
	warehouses.Post("/:id/bins", write, warehouseHandler.CreateBin)
	warehouses.Get("/:id/bins", read, warehouseHandler.ListBins)

	// Items
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", write, itemHandler.Create)
	items.Get("/", read, itemHandler.List)
	items.Get("/:id", read, itemHandler.GetByID)
	items.Put("/:id", write, itemHandler.Update)

	// Procurement: GRN y despachos
	procurementHandler := NewProcurementHandler(deps.Receipts, deps.Deliveries)
	grns := api.Group("/grns")
	grns.Post("/", write, procurementHandler.CreateGRN)
	grns.Get("/", read, procurementHandler.ListGRNs)
	grns.Get("/:id", read, procurementHandler.GetGRN)
	grns.Post("/:id/inspection", write, procurementHandler.InspectGRN)
	grns.Post("/:id/receive", write, procurementHandler.ReceiveGRN)

	deliveries := api.Group("/deliveries")
	deliveries.Post("/", write, procurementHandler.CreateDelivery)
	deliveries.Get("/", read, procurementHandler.ListDeliveries)
	deliveries.Get("/:id", read, procurementHandler.GetDelivery)
	deliveries.Post("/:id/ship", write, procurementHandler.ShipDelivery)

	// Reports (solo lectura)
	reportHandler := NewReportHandler(deps.Reports, deps.Audit)
	reports := api.Group("/reports", read)
	reports.Get("/stock", reportHandler.Snapshot)
	reports.Get("/stock.xlsx", reportHandler.SnapshotXLSX)
	reports.Get("/movements", reportHandler.MovementHistory)
	reports.Get("/valuation", reportHandler.Valuation)
	reports.Get("/valuation.pdf", reportHandler.ValuationPDF)
	reports.Get("/reconciliation", RequireRole(), reportHandler.Reconciliation)

	api.Get("/audit-logs", RequireRole(), reportHandler.AuditLogs)
}
