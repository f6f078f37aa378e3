package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// DraftEntry es la entrada para registrar un asiento del kardex.
// Quantity viene firmada: positiva entra, negativa sale; el signo debe
// corresponder al tipo (ver domledger.ValidQuantity).
type DraftEntry struct {
	Type               string
	Quantity           decimal.Decimal
	PartID             string
	LotID              string // vacío para movimientos sin lote
	WarehouseID        string
	CounterWarehouseID string // solo traslados
	RefType            string
	RefID              string
	ReversalOfID       string // solo compensatorias
	Remark             string
	CreatedBy          string
}

// PostEntryUseCase es el único camino de escritura del kardex. Dentro de una
// transacción: inserta el asiento inmutable con número único, aplica el delta
// firmado al saldo (fila bloqueada con SELECT FOR UPDATE) y, si hay lote,
// ajusta su cantidad actual con chequeo de agotamiento. Si el delta dejaría
// saldo o lote en negativo, falla con ErrInsufficientStock y no escribe nada.
type PostEntryUseCase struct {
	txRunner   TxRunner
	numbers    *numbering.Generator
	maxRetries int
}

// NewPostEntryUseCase construye el caso de uso. maxRetries acota los
// reintentos ante colisión de número de transacción.
func NewPostEntryUseCase(txRunner TxRunner, numbers *numbering.Generator, maxRetries int) *PostEntryUseCase {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &PostEntryUseCase{txRunner: txRunner, numbers: numbers, maxRetries: maxRetries}
}

// Post registra el asiento en su propia transacción. Ante colisión de número
// (constraint único en BD) reintenta con número nuevo hasta maxRetries y luego
// escala a ErrNumberingExhausted. Ningún otro error se reintenta.
func (uc *PostEntryUseCase) Post(ctx context.Context, draft DraftEntry) (*entity.LedgerEntry, error) {
	var posted *entity.LedgerEntry
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		err := uc.txRunner.Run(ctx, func(
			entries repository.LedgerEntryRepository,
			balances repository.StockBalanceRepository,
			lots repository.LotRepository,
			_ repository.PurchaseOrderRepository,
			_ repository.CountSheetRepository,
		) error {
			e, err := uc.PostInTx(entries, balances, lots, draft, time.Now())
			if err != nil {
				return err
			}
			posted = e
			return nil
		})
		if err == nil {
			return posted, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %d intentos generando número para %s",
		domain.ErrNumberingExhausted, uc.maxRetries, draft.Type)
}

// PostInTx registra el asiento usando los repositorios del caller (misma
// transacción). Lo usan los motores de anulación, recepción e inventario
// físico para que sus escrituras adicionales queden en la misma unidad
// atómica. Orden de bloqueo: saldo antes que lote, igual en todos los
// callers, para no generar deadlocks.
func (uc *PostEntryUseCase) PostInTx(
	entries repository.LedgerEntryRepository,
	balances repository.StockBalanceRepository,
	lots repository.LotRepository,
	draft DraftEntry,
	now time.Time,
) (*entity.LedgerEntry, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	// Delta relativo bajo bloqueo de fila; nunca leer-y-escribir un absoluto.
	key := entity.BalanceKey{WarehouseID: draft.WarehouseID, PartID: draft.PartID, LotID: draft.LotID}
	bal, err := balances.GetForUpdate(key)
	if err != nil {
		return nil, err
	}
	newQty := bal.Quantity.Add(draft.Quantity)
	if newQty.IsNegative() {
		return nil, fmt.Errorf("%w: saldo %s en bodega %s referencia %s, el movimiento pide %s",
			domain.ErrInsufficientStock, bal.Quantity, draft.WarehouseID, draft.PartID, draft.Quantity)
	}
	bal.Quantity = newQty
	bal.LastTxAt = now
	if err := balances.Upsert(bal); err != nil {
		return nil, err
	}

	if draft.LotID != "" {
		lot, err := lots.GetForUpdate(draft.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, draft.LotID)
		}
		if lot.PartID != draft.PartID {
			return nil, fmt.Errorf("%w: lote %s pertenece a la referencia %s, no a %s",
				domain.ErrInvalidInput, lot.LotNumber, lot.PartID, draft.PartID)
		}
		if err := lot.ApplyDelta(draft.Quantity, now); err != nil {
			return nil, err
		}
		if err := lots.Update(lot); err != nil {
			return nil, err
		}
	}

	e := &entity.LedgerEntry{
		ID:                 uuid.New().String(),
		TxNumber:           uc.numbers.Next(domledger.TxPrefixFor(draft.Type, draft.RefType), now),
		Type:               draft.Type,
		Quantity:           draft.Quantity,
		PartID:             draft.PartID,
		LotID:              draft.LotID,
		WarehouseID:        draft.WarehouseID,
		CounterWarehouseID: draft.CounterWarehouseID,
		RefType:            draft.RefType,
		RefID:              draft.RefID,
		Status:             entity.EntryStatusDONE,
		ReversalOfID:       draft.ReversalOfID,
		Remark:             draft.Remark,
		CreatedBy:          draft.CreatedBy,
		OccurredAt:         now,
		CreatedAt:          now,
	}
	if err := entries.Create(e); err != nil {
		return nil, err
	}
	return e, nil
}

func validateDraft(draft DraftEntry) error {
	if draft.PartID == "" || draft.WarehouseID == "" {
		return fmt.Errorf("%w: part_id y warehouse_id son obligatorios", domain.ErrInvalidInput)
	}
	if !domledger.ValidQuantity(draft.Type, draft.Quantity) {
		return fmt.Errorf("%w: cantidad %s no corresponde al tipo %s",
			domain.ErrInvalidInput, draft.Quantity, draft.Type)
	}
	switch draft.Type {
	case entity.EntryTypeTRANSFERIn, entity.EntryTypeTRANSFEROut:
		if draft.CounterWarehouseID == "" || draft.CounterWarehouseID == draft.WarehouseID {
			return fmt.Errorf("%w: traslado requiere bodega contraparte distinta", domain.ErrInvalidInput)
		}
	}
	if draft.RefType == "" {
		return fmt.Errorf("%w: ref_type es obligatorio", domain.ErrInvalidInput)
	}
	return nil
}
