package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
)

var validate = validator.New()

// parseAndValidate decodifica el body y aplica las etiquetas validate del DTO.
// Si falla ya respondió 400 y devuelve false.
func parseAndValidate(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		if malformedQuantity(c.Body()) {
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: domain.ErrInvalidQuantity.Error()})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

// quantityFields campos decimales de cantidad: el del movimiento y los de las líneas de documentos.
type quantityFields struct {
	Quantity json.RawMessage `json:"quantity"`
	Lines    []struct {
		Quantity json.RawMessage `json:"quantity"`
	} `json:"lines"`
}

// malformedQuantity indica si el body es JSON válido pero alguna cantidad no es un decimal.
func malformedQuantity(body []byte) bool {
	var f quantityFields
	if err := json.Unmarshal(body, &f); err != nil {
		return false
	}
	raws := []json.RawMessage{f.Quantity}
	for _, l := range f.Lines {
		raws = append(raws, l.Quantity)
	}
	for _, raw := range raws {
		if len(raw) == 0 {
			continue
		}
		var q decimal.Decimal
		if err := q.UnmarshalJSON(raw); err != nil {
			return true
		}
	}
	return false
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// pageParams lee limit/offset y los valida con las etiquetas de dto.PageRequest.
func pageParams(c *fiber.Ctx) (int, int, error) {
	var p dto.PageRequest
	if err := c.QueryParser(&p); err != nil {
		return 0, 0, fmt.Errorf("%w: %s", domain.ErrInvalidInput, errInvalidParam("limit/offset"))
	}
	if err := validate.Struct(p); err != nil {
		return 0, 0, fmt.Errorf("%w: %s", domain.ErrInvalidInput, validationMessage(err))
	}
	p = p.Effective()
	return p.Limit, p.Offset, nil
}

// respondError traduce la taxonomía de dominio a HTTP.
func respondError(c *fiber.Ctx, err error) error {
	var shortfall *domain.InsufficientStockError
	switch {
	case errors.As(err, &shortfall):
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{
			Code:        "INSUFFICIENT_STOCK",
			Message:     shortfall.Error(),
			WarehouseID: shortfall.WarehouseID,
			ItemID:      shortfall.ItemID,
			BinID:       shortfall.BinID,
			Current:     shortfall.Current,
			Requested:   shortfall.Requested,
			Shortfall:   shortfall.Shortfall,
		})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento no disponible, intente más tarde"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func errInvalidParam(name string) error {
	return fmt.Errorf("parámetro inválido: %s", name)
}
