package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// CancelUseCase genera el asiento compensatorio de una transacción previa.
// Es el único mecanismo de corrección: el kardex no se edita ni se borra.
//
// En una sola transacción: bloquea el asiento original, valida las
// precondiciones de anulación, registra la compensatoria vía PostInTx (que
// revalida contra el stock vivo) y marca el original CANCELED con los enlaces
// bidireccionales. Una anulación puede fallar con ErrInsufficientStock si el
// consumo intermedio ya bajó el stock por debajo de lo que la reversa
// requiere: es un resultado de negocio legítimo que se surfacea al caller,
// nunca se reintenta en silencio.
type CancelUseCase struct {
	txRunner   TxRunner
	post       *PostEntryUseCase
	recomputer LineRecomputer // opcional; nil si no hay integración con compras
	maxRetries int
}

// NewCancelUseCase construye el motor de anulación.
func NewCancelUseCase(txRunner TxRunner, post *PostEntryUseCase, recomputer LineRecomputer, maxRetries int) *CancelUseCase {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &CancelUseCase{txRunner: txRunner, post: post, recomputer: recomputer, maxRetries: maxRetries}
}

// Cancel anula el asiento entryID y devuelve la compensatoria creada.
func (uc *CancelUseCase) Cancel(ctx context.Context, entryID, reason, userID string) (*entity.LedgerEntry, error) {
	if entryID == "" {
		return nil, fmt.Errorf("%w: entry_id es obligatorio", domain.ErrInvalidInput)
	}
	var comp *entity.LedgerEntry
	var poLineID string

	run := func(
		entries repository.LedgerEntryRepository,
		balances repository.StockBalanceRepository,
		lots repository.LotRepository,
		_ repository.PurchaseOrderRepository,
		_ repository.CountSheetRepository,
	) error {
		orig, err := entries.GetForUpdate(entryID)
		if err != nil {
			return err
		}
		if orig == nil {
			return fmt.Errorf("%w: asiento %s", domain.ErrNotFound, entryID)
		}
		if orig.Status == entity.EntryStatusCANCELED || orig.ReversedByID != "" {
			return fmt.Errorf("%w: asiento %s ya fue anulado por %s",
				domain.ErrAlreadyCanceled, orig.TxNumber, orig.ReversedByID)
		}
		cancelType, ok := domledger.CancelTypeFor(orig.Type)
		if !ok {
			return fmt.Errorf("%w: tipo %s", domain.ErrNotCancellable, orig.Type)
		}

		draft := DraftEntry{
			Type:               cancelType,
			Quantity:           orig.Quantity.Neg(), // negación exacta
			PartID:             orig.PartID,
			LotID:              orig.LotID,
			WarehouseID:        orig.WarehouseID,
			CounterWarehouseID: orig.CounterWarehouseID,
			RefType:            entity.RefTypeCANCEL,
			RefID:              orig.ID,
			ReversalOfID:       orig.ID,
			Remark:             reason,
			CreatedBy:          userID,
		}
		e, err := uc.post.PostInTx(entries, balances, lots, draft, time.Now())
		if err != nil {
			return err
		}
		// Estado y enlaces del original, en la misma transacción que la compensatoria.
		if err := entries.MarkCanceled(orig.ID, e.ID); err != nil {
			return err
		}
		comp = e
		if orig.RefType == entity.RefTypePO {
			poLineID = orig.RefID
		}
		return nil
	}

	var err error
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		err = uc.txRunner.Run(ctx, run)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %d intentos generando número de anulación",
			domain.ErrNumberingExhausted, uc.maxRetries)
	}

	// Recalculo sincrónico del agregado de la línea PO afectada (fuera de la
	// tx del asiento; RecomputeLine es idempotente sobre el kardex).
	if poLineID != "" && uc.recomputer != nil {
		if err := uc.recomputer.RecomputeLine(ctx, poLineID); err != nil {
			return nil, err
		}
	}
	return comp, nil
}
