package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional en los POST del ciclo de vida.
const HeaderIdempotencyKey = "Idempotency-Key"

// Idempotency reserva la llave antes del comando. Una llave repetida responde 409
// DUPLICATE_REQUEST; si el comando falla la llave se libera para permitir el reintento.
// Sin cabecera el middleware no hace nada. Debe usarse DESPUÉS de AuthMiddleware.
func Idempotency(store ports.IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > 200 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		// La llave es por usuario y por ruta: dos usuarios pueden usar el mismo valor.
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key

		ok, err := store.Reserve(c.Context(), scoped)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotencia no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar Idempotency-Key, intente más tarde"})
		}
		if !ok {
			return writeError(c, log, fmt.Errorf("%w: Idempotency-Key %s ya utilizada", domain.ErrDuplicateRequest, key))
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if relErr := store.Release(c.Context(), scoped); relErr != nil {
				log.Warn().Err(relErr).Str("key", key).Msg("no se pudo liberar la llave de idempotencia")
			}
		}
		return err
	}
}
