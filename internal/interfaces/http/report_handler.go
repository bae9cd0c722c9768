package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/reporting"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// ReportHandler reportes de solo lectura y auditoría.
type ReportHandler struct {
	reports *reporting.ReportUseCase
	audit   *reporting.AuditUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(reports *reporting.ReportUseCase, audit *reporting.AuditUseCase) *ReportHandler {
	return &ReportHandler{reports: reports, audit: audit}
}

// Snapshot godoc
// @Summary      Snapshot de stock
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        item_id       query  string  false  "Ítem"
// @Success      200  {object}  dto.StockSnapshotResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) Snapshot(c *fiber.Ctx) error {
	out, err := h.reports.Snapshot(c.UserContext(), snapshotFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SnapshotXLSX godoc
// @Summary      Snapshot de stock en Excel
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200
// @Router       /api/reports/stock.xlsx [get]
func (h *ReportHandler) SnapshotXLSX(c *fiber.Ctx) error {
	b, err := h.reports.SnapshotXLSX(c.UserContext(), snapshotFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimeXLSX)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock-`+time.Now().Format("20060102")+`.xlsx"`)
	return c.Send(b)
}

// MovementHistory godoc
// @Summary      Historial de movimientos con nombres de bodega e ítem
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MovementHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) MovementHistory(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.reports.MovementHistory(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Valuation godoc
// @Summary      Valorización del inventario (cantidad x último precio)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.reports.Valuation(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ValuationPDF godoc
// @Summary      Valorización en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200
// @Router       /api/reports/valuation.pdf [get]
func (h *ReportHandler) ValuationPDF(c *fiber.Ctx) error {
	b, err := h.reports.ValuationPDF(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimePDF)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="valorizacion.pdf"`)
	return c.Send(b)
}

// Reconciliation godoc
// @Summary      Conciliar Ledger Store contra el replay del Movement Log
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/reports/reconciliation [get]
func (h *ReportHandler) Reconciliation(c *fiber.Ctx) error {
	out, err := h.reports.Reconcile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AuditLogs godoc
// @Summary      Bitácora de auditoría
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        actor        query  string  false  "Actor"
// @Param        action       query  string  false  "Acción (INVENTORY_IN, INVENTORY_OUT, INVENTORY_TRANSFER)"
// @Param        entity_type  query  string  false  "Tipo de entidad"
// @Param        entity_id    query  string  false  "ID de entidad"
// @Success      200  {object}  dto.AuditListResponse
// @Router       /api/audit-logs [get]
func (h *ReportHandler) AuditLogs(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := repository.AuditFilter{
		Actor:      c.Query("actor"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Limit:      limit,
		Offset:     offset,
	}
	if filter.CreatedFrom, err = queryTime(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if filter.CreatedTo, err = queryTime(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.audit.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func snapshotFilter(c *fiber.Ctx) repository.StockLineFilter {
	return repository.StockLineFilter{
		WarehouseID: c.Query("warehouse_id"),
		ItemID:      c.Query("item_id"),
	}
}
