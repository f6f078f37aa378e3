package stockcount_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/stockcount"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

type nopRenderer struct{}

func (nopRenderer) RenderCountSheet(context.Context, *entity.CountSheet) ([]byte, error) {
	return []byte("%PDF-"), nil
}

func fixture(t *testing.T) (*memory.Store, *stockcount.UseCase, *appledger.PostEntryUseCase) {
	t.Helper()
	store := memory.NewStore()
	gen := numbering.New()
	post := appledger.NewPostEntryUseCase(store, gen, 5)
	uc := stockcount.NewUseCase(store, post, store.Balances(), store.Sheets(), gen, nopRenderer{}, logger.Nop(), 5)
	return store, uc, post
}

func keyA() entity.BalanceKey { return entity.BalanceKey{WarehouseID: "WH-1", PartID: "PART-A"} }
func keyB() entity.BalanceKey { return entity.BalanceKey{WarehouseID: "WH-1", PartID: "PART-B"} }

// ──────────────────────────────────────────────────────────────────────────────
// Generación de planillas
// ──────────────────────────────────────────────────────────────────────────────

func TestStartCount_FotoDeSaldos(t *testing.T) {
	store, uc, _ := fixture(t)
	store.SeedBalance(keyA(), qty(120))
	ctx := context.Background()

	sheet, err := uc.StartCount(ctx, []entity.BalanceKey{keyA(), keyB()}, "user-1")
	require.NoError(t, err)
	assert.Regexp(t, `^CS-\d{8}-\d{6,}$`, sheet.SheetNumber)
	assert.Equal(t, entity.CountSheetOPEN, sheet.Status)
	require.Len(t, sheet.Items, 2)

	// PART-A con saldo, PART-B nunca movida: la foto es cero.
	assert.True(t, sheet.Items[0].SnapshotQty.Equal(qty(120)))
	assert.True(t, sheet.Items[1].SnapshotQty.IsZero())
	for _, it := range sheet.Items {
		assert.Equal(t, sheet.ID, it.SheetID)
		assert.Nil(t, it.CountedQty)
	}
}

func TestStartCount_Validaciones(t *testing.T) {
	_, uc, _ := fixture(t)
	ctx := context.Background()

	_, err := uc.StartCount(ctx, nil, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.StartCount(ctx, []entity.BalanceKey{{WarehouseID: "WH-1"}}, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación de conteos
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyCounts_VarianzaGeneraAjuste(t *testing.T) {
	store, uc, _ := fixture(t)
	store.SeedBalance(keyA(), qty(100))
	ctx := context.Background()

	sheet, err := uc.StartCount(ctx, []entity.BalanceKey{keyA()}, "user-1")
	require.NoError(t, err)

	// Se contaron 93: faltante de 7 unidades.
	res, err := uc.ApplyCounts(ctx, sheet.ID, []stockcount.CountInput{
		{ItemID: sheet.Items[0].ID, CountedQty: qty(93)},
	}, "user-2")
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	adj := res.Entries[0]
	assert.Equal(t, entity.EntryTypeADJUSTMENT, adj.Type)
	assert.Equal(t, entity.RefTypeCOUNT, adj.RefType)
	assert.Equal(t, sheet.ID, adj.RefID)
	assert.True(t, adj.Quantity.Equal(qty(-7)))
	assert.Contains(t, adj.Remark, sheet.SheetNumber)
	assert.Empty(t, res.Warnings)

	// El saldo queda exactamente en lo contado y con fecha de último conteo.
	assert.True(t, store.BalanceQty(keyA()).Equal(qty(93)))
	bal, err := store.Balances().Get(keyA())
	require.NoError(t, err)
	assert.NotNil(t, bal.LastCountedAt)

	applied, err := uc.GetSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountSheetAPPLIED, applied.Status)
	require.NotNil(t, applied.Items[0].Variance)
	assert.True(t, applied.Items[0].Variance.Equal(qty(-7)))
	assert.Equal(t, adj.ID, applied.Items[0].EntryID)
}

func TestApplyCounts_VarianzaCeroNoEscribeAsiento(t *testing.T) {
	store, uc, _ := fixture(t)
	store.SeedBalance(keyA(), qty(50))
	ctx := context.Background()

	sheet, err := uc.StartCount(ctx, []entity.BalanceKey{keyA()}, "user-1")
	require.NoError(t, err)

	res, err := uc.ApplyCounts(ctx, sheet.ID, []stockcount.CountInput{
		{ItemID: sheet.Items[0].ID, CountedQty: qty(50)},
	}, "user-2")
	require.NoError(t, err)

	assert.Empty(t, res.Entries)
	assert.True(t, store.BalanceQty(keyA()).Equal(qty(50)))
	assert.Equal(t, entity.CountSheetAPPLIED, res.Sheet.Status)
}

func TestApplyCounts_VarianzaContraSaldoVivo(t *testing.T) {
	store, uc, post := fixture(t)
	store.SeedBalance(keyA(), qty(100))
	ctx := context.Background()

	sheet, err := uc.StartCount(ctx, []entity.BalanceKey{keyA()}, "user-1")
	require.NoError(t, err)

	// Alguien despacha 20 mientras el conteo está en curso.
	_, err = post.Post(ctx, appledger.DraftEntry{
		Type:        entity.EntryTypeISSUE,
		Quantity:    qty(-20),
		PartID:      "PART-A",
		WarehouseID: "WH-1",
		RefType:     entity.RefTypeMANUAL,
	})
	require.NoError(t, err)

	// Se contaron 78: la varianza es contra el saldo vivo (80), no contra
	// la foto (100), así que el ajuste es −2 y se avisa del desfase.
	res, err := uc.ApplyCounts(ctx, sheet.ID, []stockcount.CountInput{
		{ItemID: sheet.Items[0].ID, CountedQty: qty(78)},
	}, "user-2")
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.True(t, res.Entries[0].Quantity.Equal(qty(-2)))
	assert.True(t, store.BalanceQty(keyA()).Equal(qty(78)))

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, sheet.Items[0].ID, w.ItemID)
	assert.True(t, w.SnapshotQty.Equal(qty(100)))
	assert.True(t, w.LiveQty.Equal(qty(80)))
}

func TestApplyCounts_DobleAplicacionRechazada(t *testing.T) {
	store, uc, _ := fixture(t)
	store.SeedBalance(keyA(), qty(10))
	ctx := context.Background()

	sheet, err := uc.StartCount(ctx, []entity.BalanceKey{keyA()}, "user-1")
	require.NoError(t, err)

	counts := []stockcount.CountInput{{ItemID: sheet.Items[0].ID, CountedQty: qty(10)}}
	_, err = uc.ApplyCounts(ctx, sheet.ID, counts, "user-2")
	require.NoError(t, err)

	_, err = uc.ApplyCounts(ctx, sheet.ID, counts, "user-2")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplyCounts_Errores(t *testing.T) {
	store, uc, _ := fixture(t)
	store.SeedBalance(keyA(), qty(10))
	ctx := context.Background()

	sheet, err := uc.StartCount(ctx, []entity.BalanceKey{keyA()}, "user-1")
	require.NoError(t, err)

	// Conteo negativo: rechazado y la planilla sigue OPEN.
	_, err = uc.ApplyCounts(ctx, sheet.ID, []stockcount.CountInput{
		{ItemID: sheet.Items[0].ID, CountedQty: qty(-1)},
	}, "user-2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Renglón de otra planilla.
	_, err = uc.ApplyCounts(ctx, sheet.ID, []stockcount.CountInput{
		{ItemID: "no-existe", CountedQty: qty(5)},
	}, "user-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Nada de lo anterior escribió asientos ni tocó el saldo.
	assert.True(t, store.BalanceQty(keyA()).Equal(qty(10)))
	got, err := uc.GetSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountSheetOPEN, got.Status)

	_, err = uc.GetSheet(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenderSheetPDF(t *testing.T) {
	store, uc, _ := fixture(t)
	store.SeedBalance(keyA(), qty(10))
	ctx := context.Background()

	sheet, err := uc.StartCount(ctx, []entity.BalanceKey{keyA()}, "user-1")
	require.NoError(t, err)

	pdf, err := uc.RenderSheetPDF(ctx, sheet.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)

	_, err = uc.RenderSheetPDF(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
