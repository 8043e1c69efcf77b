package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// RequireRole devuelve un middleware Fiber que exige que el rol del token JWT sea uno de roles.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalRole).
//
// Comportamiento:
//   - 401 Unauthorized → el token no trae rol.
//   - 403 Forbidden    → el rol no está en la lista.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + role + "' no tiene acceso a este recurso",
			})
		}
		return c.Next()
	}
}
