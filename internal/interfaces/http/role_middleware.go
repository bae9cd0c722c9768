package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
)

// Roles reconocidos en el token.
const (
	RoleAdmin       = "admin"
	RoleStorekeeper = "storekeeper"
	RoleViewer      = "viewer"
)

// RequireRole devuelve un middleware Fiber que autoriza por rol. Debe usarse DESPUÉS de
// AuthMiddleware (necesita LocalRole). admin pasa siempre.
//
// Comportamiento:
//   - 401 Unauthorized → el token no trae rol.
//   - 403 Forbidden    → el rol no está entre los permitidos.
func RequireRole(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}
		if strings.EqualFold(role, RoleAdmin) {
			return c.Next()
		}
		for _, r := range allowed {
			if strings.EqualFold(role, r) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "el rol '" + role + "' no tiene acceso a este recurso",
		})
	}
}
