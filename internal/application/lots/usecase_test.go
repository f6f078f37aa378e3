package lots_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/lots"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
)

func newUC(store *memory.Store) *lots.UseCase {
	return lots.NewUseCase(store.Lots(), numbering.New(), 5)
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateLot_Defaults(t *testing.T) {
	store := memory.NewStore()
	uc := newUC(store)
	ctx := context.Background()

	lot, err := uc.CreateLot(ctx, lots.CreateLotInput{
		PartID:     "PART-A",
		InitialQty: qty(500),
		CreatedBy:  "user-1",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^LOT-\d{8}-\d{6,}$`, lot.LotNumber)
	assert.Equal(t, entity.RefTypeMANUAL, lot.SourceDocType)
	assert.Equal(t, entity.InspectionPENDING, lot.InspectionStatus)
	assert.Equal(t, entity.LotStatusNORMAL, lot.Status)
	// La cantidad actual arranca en cero: la sube la primera recepción.
	assert.True(t, lot.CurrentQty.IsZero())
	assert.True(t, lot.InitialQty.Equal(qty(500)))

	got, err := uc.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, lot.LotNumber, got.LotNumber)
}

func TestCreateLot_ConDocumentoOrigenPO(t *testing.T) {
	store := memory.NewStore()
	uc := newUC(store)

	recvAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	lot, err := uc.CreateLot(context.Background(), lots.CreateLotInput{
		PartID:        "PART-A",
		SourceDocType: entity.RefTypePO,
		SourceDocID:   "line-1",
		InitialQty:    qty(100),
		ReceivedAt:    recvAt,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RefTypePO, lot.SourceDocType)
	assert.Equal(t, "line-1", lot.SourceDocID)
	assert.True(t, lot.ReceivedAt.Equal(recvAt))
	// El prefijo de fecha del número sale de la fecha de recepción.
	assert.Regexp(t, `^LOT-20260310-\d{6,}$`, lot.LotNumber)
}

func TestCreateLot_Validaciones(t *testing.T) {
	store := memory.NewStore()
	uc := newUC(store)
	ctx := context.Background()

	cases := []struct {
		name  string
		input lots.CreateLotInput
	}{
		{"sin referencia", lots.CreateLotInput{InitialQty: qty(10)}},
		{"cantidad cero", lots.CreateLotInput{PartID: "PART-A"}},
		{"cantidad negativa", lots.CreateLotInput{PartID: "PART-A", InitialQty: qty(-5)}},
		{"documento origen desconocido", lots.CreateLotInput{PartID: "PART-A", InitialQty: qty(10), SourceDocType: "FACTURA"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateLot(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Inspección y consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestSetInspectionStatus(t *testing.T) {
	store := memory.NewStore()
	uc := newUC(store)
	ctx := context.Background()

	lot, err := uc.CreateLot(ctx, lots.CreateLotInput{PartID: "PART-A", InitialQty: qty(100)})
	require.NoError(t, err)

	updated, err := uc.SetInspectionStatus(ctx, lot.ID, entity.InspectionPASS)
	require.NoError(t, err)
	assert.Equal(t, entity.InspectionPASS, updated.InspectionStatus)

	// FAIL no toca cantidades: solo marca el lote.
	updated, err = uc.SetInspectionStatus(ctx, lot.ID, entity.InspectionFAIL)
	require.NoError(t, err)
	assert.Equal(t, entity.InspectionFAIL, updated.InspectionStatus)
	assert.True(t, updated.CurrentQty.Equal(lot.CurrentQty))

	_, err = uc.SetInspectionStatus(ctx, lot.ID, "APROBADISIMO")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SetInspectionStatus(ctx, "no-existe", entity.InspectionPASS)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetLot_NoExiste(t *testing.T) {
	store := memory.NewStore()
	uc := newUC(store)

	_, err := uc.GetLot(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByPart(t *testing.T) {
	store := memory.NewStore()
	uc := newUC(store)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := uc.CreateLot(ctx, lots.CreateLotInput{
			PartID:     "PART-A",
			InitialQty: qty(10),
			ReceivedAt: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	_, err := uc.CreateLot(ctx, lots.CreateLotInput{PartID: "PART-B", InitialQty: qty(10)})
	require.NoError(t, err)

	list, err := uc.ListByPart(ctx, "PART-A", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Más reciente primero.
	assert.True(t, list[0].ReceivedAt.After(list[1].ReceivedAt))
	assert.True(t, list[1].ReceivedAt.After(list[2].ReceivedAt))

	// Paginación.
	page, err := uc.ListByPart(ctx, "PART-A", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].ReceivedAt.Equal(list[1].ReceivedAt))

	_, err = uc.ListByPart(ctx, "", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
