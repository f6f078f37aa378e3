package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/cache"
)

// IdempotencyMiddleware protege los endpoints mutadores contra reintentos del
// cliente: si la petición trae Idempotency-Key y la clave ya fue usada dentro
// del TTL, responde 409 sin tocar el kardex. La cabecera es opcional; sin
// ella la petición pasa directo.
//
// Si el handler termina en error (status >= 400) la clave se libera para que
// el cliente pueda reintentar con la misma.
func IdempotencyMiddleware(store cache.IdempotencyStore, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("Idempotency-Key")
		if key == "" {
			return c.Next()
		}
		// La clave se reserva por usuario: dos clientes distintos pueden
		// reutilizar el mismo valor sin pisarse.
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key

		fresh, err := store.Reserve(c.Context(), scoped, ttl)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "idempotencia no disponible"})
		}
		if !fresh {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "Idempotency-Key ya procesada"})
		}

		if err := c.Next(); err != nil {
			_ = store.Release(c.Context(), scoped)
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			_ = store.Release(c.Context(), scoped)
		}
		return nil
	}
}
