package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/procurement"
)

// ProcurementHandler recepciones (GRN) y despachos: los colaboradores que mueven el ledger.
type ProcurementHandler struct {
	receipts   *procurement.ReceiptUseCase
	deliveries *procurement.DeliveryUseCase
}

// NewProcurementHandler construye el handler.
func NewProcurementHandler(receipts *procurement.ReceiptUseCase, deliveries *procurement.DeliveryUseCase) *ProcurementHandler {
	return &ProcurementHandler{receipts: receipts, deliveries: deliveries}
}

// CreateGRN godoc
// @Summary      Registrar recepción (GRN) pendiente
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateGRNRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.GRNResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/grns [post]
func (h *ProcurementHandler) CreateGRN(c *fiber.Ctx) error {
	var in dto.CreateGRNRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.receipts.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// InspectGRN godoc
// @Summary      Registrar inspección de calidad del GRN
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del GRN"
// @Param        body  body  dto.InspectGRNRequest  true  "accepted | rejected | accepted_with_notes"
// @Success      200   {object}  dto.GRNResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/grns/{id}/inspection [post]
func (h *ProcurementHandler) InspectGRN(c *fiber.Ctx) error {
	var in dto.InspectGRNRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.receipts.Inspect(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReceiveGRN godoc
// @Summary      Recibir GRN (IN por línea en una transacción)
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del GRN"
// @Success      200  {object}  dto.GRNResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/grns/{id}/receive [post]
func (h *ProcurementHandler) ReceiveGRN(c *fiber.Ctx) error {
	out, err := h.receipts.Receive(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetGRN godoc
// @Summary      Obtener GRN
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del GRN"
// @Success      200  {object}  dto.GRNResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/grns/{id} [get]
func (h *ProcurementHandler) GetGRN(c *fiber.Ctx) error {
	out, err := h.receipts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListGRNs godoc
// @Summary      Listar GRN
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.GRNListResponse
// @Router       /api/grns [get]
func (h *ProcurementHandler) ListGRNs(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.receipts.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateDelivery godoc
// @Summary      Crear orden de despacho
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *ProcurementHandler) CreateDelivery(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.deliveries.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ShipDelivery godoc
// @Summary      Despachar orden (OUT por línea); con faltante la orden queda sin despachar
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/deliveries/{id}/ship [post]
func (h *ProcurementHandler) ShipDelivery(c *fiber.Ctx) error {
	out, err := h.deliveries.Ship(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetDelivery godoc
// @Summary      Obtener orden de despacho
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [get]
func (h *ProcurementHandler) GetDelivery(c *fiber.Ctx) error {
	out, err := h.deliveries.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListDeliveries godoc
// @Summary      Listar órdenes de despacho
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DeliveryListResponse
// @Router       /api/deliveries [get]
func (h *ProcurementHandler) ListDeliveries(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.deliveries.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
