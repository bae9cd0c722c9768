package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y saldos (protegido).
type InventoryHandler struct {
	engine  *inventory.Engine
	queries *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.Engine, queries *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{engine: engine, queries: queries}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario (IN, OUT o TRANSFER)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "type, warehouse_id, item_id, quantity; destino para TRANSFER"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.engine.RegisterMovementFromRequest(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetStock godoc
// @Summary      Saldo de una clave bodega/ítem/bin
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        item_id       query  string  true   "Ítem"
// @Param        bin_id        query  string  false  "Bin (vacío = pool sin ubicación)"
// @Success      200  {object}  dto.StockLineResponse
// @Router       /api/inventory/stock/line [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.queries.GetStock(c.UserContext(), entity.StockKey{
		WarehouseID: c.Query("warehouse_id"),
		ItemID:      c.Query("item_id"),
		BinID:       c.Query("bin_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListStock godoc
// @Summary      Listar líneas de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        item_id       query  string  false  "Ítem"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queries.ListStock(c.UserContext(), repository.StockLineFilter{
		WarehouseID: c.Query("warehouse_id"),
		ItemID:      c.Query("item_id"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id    query  string  false  "Bodega (origen o destino)"
// @Param        item_id         query  string  false  "Ítem"
// @Param        kind            query  string  false  "IN | OUT | TRANSFER"
// @Param        reference_type  query  string  false  "Tipo de documento"
// @Param        reference_id    query  string  false  "ID de documento"
// @Param        from            query  string  false  "RFC3339"
// @Param        to              query  string  false  "RFC3339"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.queries.ListMovements(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento (MIN-…, MOUT-…, MTR-…)"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.queries.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// movementFilter arma el filtro común a /inventory/movements y /reports/movements.
func movementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	limit, offset, err := pageParams(c)
	if err != nil {
		return repository.MovementFilter{}, err
	}
	f := repository.MovementFilter{
		WarehouseID:   c.Query("warehouse_id"),
		ItemID:        c.Query("item_id"),
		Kind:          entity.MovementKind(c.Query("kind")),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
		Limit:         limit,
		Offset:        offset,
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return f, errInvalidParam("kind")
	}
	if f.From, err = queryTime(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &t, nil
}
