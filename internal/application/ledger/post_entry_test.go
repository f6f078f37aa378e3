package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newPostUC(store *memory.Store) *appledger.PostEntryUseCase {
	return appledger.NewPostEntryUseCase(store, numbering.New(), 5)
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func keyA() entity.BalanceKey {
	return entity.BalanceKey{WarehouseID: "WH-1", PartID: "PART-A"}
}

// seedLot crea un lote listo para recibir (cantidad actual 0).
func seedLot(t *testing.T, store *memory.Store, id string, initial int64) {
	t.Helper()
	err := store.Lots().Create(&entity.Lot{
		ID:               id,
		LotNumber:        "LOT-TEST-" + id,
		PartID:           "PART-A",
		InitialQty:       qty(initial),
		CurrentQty:       decimal.Zero,
		InspectionStatus: entity.InspectionPENDING,
		Status:           entity.LotStatusNORMAL,
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino feliz: recepción y salida
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_RecepcionSubeSaldo(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)

	e, err := uc.Post(context.Background(), appledger.DraftEntry{
		Type:        entity.EntryTypeRECEIPT,
		Quantity:    qty(1000),
		PartID:      "PART-A",
		WarehouseID: "WH-1",
		RefType:     entity.RefTypeMANUAL,
		CreatedBy:   "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.EntryStatusDONE, e.Status)
	assert.NotEmpty(t, e.TxNumber)
	assert.True(t, store.BalanceQty(keyA()).Equal(qty(1000)))
	// Invariante central: saldo == suma firmada del kardex de la clave.
	assert.True(t, store.LedgerSum(keyA()).Equal(store.BalanceQty(keyA())))
}

func TestPost_SalidaConLoteHastaAgotarlo(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)
	seedLot(t, store, "lot-1", 500)

	// Recepción que carga el lote.
	_, err := uc.Post(context.Background(), appledger.DraftEntry{
		Type:        entity.EntryTypeRECEIPT,
		Quantity:    qty(500),
		PartID:      "PART-A",
		LotID:       "lot-1",
		WarehouseID: "WH-1",
		RefType:     entity.RefTypeMANUAL,
	})
	require.NoError(t, err)

	// Salida total.
	_, err = uc.Post(context.Background(), appledger.DraftEntry{
		Type:        entity.EntryTypeISSUE,
		Quantity:    qty(-500),
		PartID:      "PART-A",
		LotID:       "lot-1",
		WarehouseID: "WH-1",
		RefType:     entity.RefTypeMANUAL,
	})
	require.NoError(t, err)

	lot, err := store.Lots().GetByID("lot-1")
	require.NoError(t, err)
	assert.True(t, lot.CurrentQty.IsZero())
	assert.Equal(t, entity.LotStatusDEPLETED, lot.Status)

	lotKey := entity.BalanceKey{WarehouseID: "WH-1", PartID: "PART-A", LotID: "lot-1"}
	assert.True(t, store.BalanceQty(lotKey).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock insuficiente: rechazo atómico, nada queda escrito
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_StockInsuficienteNoEscribeNada(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)
	store.SeedBalance(keyA(), qty(300))

	_, err := uc.Post(context.Background(), appledger.DraftEntry{
		Type:        entity.EntryTypeISSUE,
		Quantity:    qty(-500),
		PartID:      "PART-A",
		WarehouseID: "WH-1",
		RefType:     entity.RefTypeMANUAL,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El saldo queda intacto y el kardex no registró el intento.
	assert.True(t, store.BalanceQty(keyA()).Equal(qty(300)))
	entries, err := store.Entries().FindByReference(entity.RefTypeMANUAL, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPost_LoteDeOtraReferenciaRechazado(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)
	require.NoError(t, store.Lots().Create(&entity.Lot{
		ID:         "lot-b",
		LotNumber:  "LOT-TEST-B",
		PartID:     "PART-B",
		InitialQty: qty(10),
		CurrentQty: decimal.Zero,
		Status:     entity.LotStatusNORMAL,
	}))

	_, err := uc.Post(context.Background(), appledger.DraftEntry{
		Type:        entity.EntryTypeRECEIPT,
		Quantity:    qty(10),
		PartID:      "PART-A", // no coincide con el lote
		LotID:       "lot-b",
		WarehouseID: "WH-1",
		RefType:     entity.RefTypeMANUAL,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación del borrador
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_ValidacionesDelBorrador(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)
	ctx := context.Background()

	cases := []struct {
		name  string
		draft appledger.DraftEntry
	}{
		{"sin referencia ni bodega", appledger.DraftEntry{Type: entity.EntryTypeRECEIPT, Quantity: qty(1), RefType: entity.RefTypeMANUAL}},
		{"cantidad cero", appledger.DraftEntry{Type: entity.EntryTypeADJUSTMENT, Quantity: decimal.Zero, PartID: "PART-A", WarehouseID: "WH-1", RefType: entity.RefTypeMANUAL}},
		{"signo contrario al tipo", appledger.DraftEntry{Type: entity.EntryTypeRECEIPT, Quantity: qty(-5), PartID: "PART-A", WarehouseID: "WH-1", RefType: entity.RefTypeMANUAL}},
		{"tipo desconocido", appledger.DraftEntry{Type: "MERMA", Quantity: qty(1), PartID: "PART-A", WarehouseID: "WH-1", RefType: entity.RefTypeMANUAL}},
		{"traslado sin contraparte", appledger.DraftEntry{Type: entity.EntryTypeTRANSFEROut, Quantity: qty(-5), PartID: "PART-A", WarehouseID: "WH-1", RefType: entity.RefTypeMANUAL}},
		{"traslado a la misma bodega", appledger.DraftEntry{Type: entity.EntryTypeTRANSFERIn, Quantity: qty(5), PartID: "PART-A", WarehouseID: "WH-1", CounterWarehouseID: "WH-1", RefType: entity.RefTypeMANUAL}},
		{"sin ref_type", appledger.DraftEntry{Type: entity.EntryTypeRECEIPT, Quantity: qty(1), PartID: "PART-A", WarehouseID: "WH-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Post(ctx, tc.draft)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslado entre bodegas: dos asientos espejados
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_TrasladoEntreBodegas(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)
	ctx := context.Background()
	store.SeedBalance(keyA(), qty(100))

	_, err := uc.Post(ctx, appledger.DraftEntry{
		Type:               entity.EntryTypeTRANSFEROut,
		Quantity:           qty(-40),
		PartID:             "PART-A",
		WarehouseID:        "WH-1",
		CounterWarehouseID: "WH-2",
		RefType:            entity.RefTypeMANUAL,
	})
	require.NoError(t, err)
	_, err = uc.Post(ctx, appledger.DraftEntry{
		Type:               entity.EntryTypeTRANSFERIn,
		Quantity:           qty(40),
		PartID:             "PART-A",
		WarehouseID:        "WH-2",
		CounterWarehouseID: "WH-1",
		RefType:            entity.RefTypeMANUAL,
	})
	require.NoError(t, err)

	assert.True(t, store.BalanceQty(keyA()).Equal(qty(60)))
	keyB := entity.BalanceKey{WarehouseID: "WH-2", PartID: "PART-A"}
	assert.True(t, store.BalanceQty(keyB).Equal(qty(40)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestQueries_ListarPorClaveYReferencia(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)
	queries := appledger.NewQueryUseCase(store.Entries(), store.Balances())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := uc.Post(ctx, appledger.DraftEntry{
			Type:        entity.EntryTypeRECEIPT,
			Quantity:    qty(10),
			PartID:      "PART-A",
			WarehouseID: "WH-1",
			RefType:     entity.RefTypeMANUAL,
			RefID:       "doc-1",
		})
		require.NoError(t, err)
	}

	byRef, err := queries.FindByReference(ctx, entity.RefTypeMANUAL, "doc-1")
	require.NoError(t, err)
	assert.Len(t, byRef, 3)

	byKey, err := queries.ListByKey(ctx, keyA(), nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byKey, 3)

	// Rango temporal que excluye todo.
	past := time.Now().Add(-2 * time.Hour)
	olderPast := past.Add(-time.Hour)
	none, err := queries.ListByKey(ctx, keyA(), &olderPast, &past, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	balances, err := queries.ListBalances(ctx, "WH-1", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Quantity.Equal(qty(30)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia sobre una clave recién creada
// ──────────────────────────────────────────────────────────────────────────────

// La primera escritura sobre una clave sin fila de saldo es el caso delicado:
// el bloqueo debe materializar la fila antes de tomarla, o dos recepciones
// concurrentes se pisan el saldo absoluto y el kardex queda descuadrado.
func TestPost_RecepcionesConcurrentesSobreClaveNueva(t *testing.T) {
	store := memory.NewStore()
	uc := newPostUC(store)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Post(ctx, appledger.DraftEntry{
				Type:        entity.EntryTypeRECEIPT,
				Quantity:    qty(10),
				PartID:      "PART-A",
				WarehouseID: "WH-1",
				RefType:     entity.RefTypeMANUAL,
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "recepción %d", i)
	}

	// Ningún delta se perdió: saldo == suma del kardex == 50 × 10.
	assert.True(t, store.BalanceQty(keyA()).Equal(qty(workers*10)))
	assert.True(t, store.LedgerSum(keyA()).Equal(store.BalanceQty(keyA())))
}
