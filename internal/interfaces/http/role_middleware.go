package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// RequireRole devuelve un middleware Fiber que deja pasar solo a los roles indicados.
// Un superusuario pasa siempre. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → no hay rol en el contexto (token sin claim role).
//   - 403 Forbidden    → rol fuera de la lista.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		a := GetAuth(c)
		if a.IsSuperuser {
			return c.Next()
		}
		if a.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "rol no encontrado en el token",
			})
		}
		if _, ok := allowed[a.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + a.Role + "' no tiene acceso a este recurso",
			})
		}
		return c.Next()
	}
}

// RequireAdmin ADMIN o superusuario.
func RequireAdmin() fiber.Handler {
	return RequireRole(entity.RoleAdmin)
}

// RequireMover ADMIN, CUSTODIAN o superusuario: movimientos y datos de referencia.
func RequireMover() fiber.Handler {
	return RequireRole(entity.RoleAdmin, entity.RoleCustodian)
}
