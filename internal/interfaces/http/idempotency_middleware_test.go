package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/infrastructure/cache"
	apphttp "github.com/jhoicas/Kardex-api/internal/interfaces/http"
)

// buildIdempotentApp monta un POST protegido por el middleware de idempotencia
// cuyo handler responde con el status indicado.
func buildIdempotentApp(t *testing.T, handlerStatus int) (*fiber.App, *cache.InMemoryIdempotencyStore) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	app := fiber.New()
	app.Post("/entries",
		apphttp.IdempotencyMiddleware(store, time.Minute),
		func(c *fiber.Ctx) error {
			return c.Status(handlerStatus).JSON(fiber.Map{"ok": handlerStatus < 400})
		},
	)
	return app, store
}

func postWithKey(t *testing.T, app *fiber.App, key string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/entries", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestIdempotency_ReintentoDevuelve409(t *testing.T) {
	app, _ := buildIdempotentApp(t, fiber.StatusCreated)

	resp := postWithKey(t, app, "clave-1")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Mismo cliente reintenta con la misma clave: conflicto, sin reejecutar.
	resp2 := postWithKey(t, app, "clave-1")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	body, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(body), "DUPLICATE_REQUEST")
}

func TestIdempotency_SinCabeceraPasaDirecto(t *testing.T) {
	app, store := buildIdempotentApp(t, fiber.StatusCreated)

	for i := 0; i < 3; i++ {
		resp := postWithKey(t, app, "")
		resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	assert.Equal(t, 0, store.Size())
}

func TestIdempotency_ErrorDelHandlerLiberaLaClave(t *testing.T) {
	// El handler responde 422: la clave debe liberarse para permitir el
	// reintento del cliente con la misma.
	app, store := buildIdempotentApp(t, fiber.StatusUnprocessableEntity)

	resp := postWithKey(t, app, "clave-1")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, 0, store.Size())

	// El reintento vuelve a ejecutar el handler, no devuelve 409.
	resp2 := postWithKey(t, app, "clave-1")
	resp2.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp2.StatusCode)
}

func TestIdempotency_ClavesDistintasNoChocan(t *testing.T) {
	app, _ := buildIdempotentApp(t, fiber.StatusCreated)

	resp := postWithKey(t, app, "clave-1")
	resp.Body.Close()
	resp2 := postWithKey(t, app, "clave-2")
	resp2.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, http.StatusCreated, resp2.StatusCode)
}
