package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/receiving"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Kardex-api/internal/interfaces/http"
)

// ledgerFixture monta el endpoint de asientos directos sobre el store en
// memoria, con una línea PO sembrada (100 unidades, tolerancia cero) para
// los casos de referencia documental.
func ledgerFixture(t *testing.T) (*fiber.App, *memory.Store, *receiving.UseCase) {
	t.Helper()
	store := memory.NewStore()
	post := appledger.NewPostEntryUseCase(store, numbering.New(), 5)
	recv := receiving.NewUseCase(store, post, store.Entries(), store.Orders(), decimal.Zero, 5)
	cancel := appledger.NewCancelUseCase(store, post, recv, 5)
	queries := appledger.NewQueryUseCase(store.Entries(), store.Balances())

	now := time.Now()
	store.SeedOrder(
		entity.PurchaseOrder{ID: "po-1", PONumber: "OC-0001", Status: entity.POStatusOPEN, CreatedAt: now, UpdatedAt: now},
		entity.PurchaseOrderLine{ID: "line-1", OrderID: "po-1", LineNo: 1, PartID: "PART-A",
			OrderedQty: decimal.NewFromInt(100), ReceivedQty: decimal.Zero, Status: entity.POStatusOPEN, UpdatedAt: now},
	)

	app := fiber.New()
	handler := apphttp.NewLedgerHandler(post, cancel, queries)
	app.Post("/api/ledger/entries", handler.PostEntry)
	return app, store, recv
}

func postEntry(t *testing.T, app *fiber.App, body map[string]any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/entries", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Referencias documentales reservadas en el endpoint directo
// ──────────────────────────────────────────────────────────────────────────────

// Una recepción directa con referencia PO saltaría el control de tolerancia
// de /api/receipts: el endpoint directo debe rechazarla y el agregado de la
// línea no debe moverse.
func TestPostEntry_RefTypePORechazado(t *testing.T) {
	app, store, recv := ledgerFixture(t)
	ctx := context.Background()

	// La línea queda completa por el camino legítimo.
	_, err := recv.Receive(ctx, receiving.ReceiveInput{
		POLineID: "line-1", WarehouseID: "WH-1", Quantity: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	resp := postEntry(t, app, map[string]any{
		"type":         entity.EntryTypeRECEIPT,
		"quantity":     "50",
		"part_id":      "PART-A",
		"warehouse_id": "WH-1",
		"ref_type":     entity.RefTypePO,
		"ref_id":       "line-1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "VALIDATION")

	// Nada se escribió: el recalculo deja la línea exactamente como estaba.
	require.NoError(t, recv.RecomputeLine(ctx, "line-1"))
	line, err := store.Orders().GetLine("line-1")
	require.NoError(t, err)
	assert.True(t, line.ReceivedQty.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, entity.POStatusRECEIVED, line.Status)
}

func TestPostEntry_RefTypeCANCELRechazado(t *testing.T) {
	app, _, _ := ledgerFixture(t)

	resp := postEntry(t, app, map[string]any{
		"type":         entity.EntryTypeADJUSTMENT,
		"quantity":     "5",
		"part_id":      "PART-A",
		"warehouse_id": "WH-1",
		"ref_type":     entity.RefTypeCANCEL,
		"ref_id":       "entry-x",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostEntry_SinRefTypeUsaManual(t *testing.T) {
	app, store, _ := ledgerFixture(t)

	resp := postEntry(t, app, map[string]any{
		"type":         entity.EntryTypeRECEIPT,
		"quantity":     "25",
		"part_id":      "PART-A",
		"warehouse_id": "WH-1",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.RefTypeMANUAL, out["ref_type"])

	key := entity.BalanceKey{WarehouseID: "WH-1", PartID: "PART-A"}
	assert.True(t, store.BalanceQty(key).Equal(decimal.NewFromInt(25)))
}
