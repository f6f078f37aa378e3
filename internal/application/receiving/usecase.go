// Package receiving implementa la contabilidad de recepciones contra órdenes
// de compra: registro del asiento RECEIPT, tolerancia de sobre-recepción y
// recalculo del agregado recibido por línea.
package receiving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// UseCase registra recepciones y mantiene el agregado recibido de las líneas.
// tolerance es la política configurable de sobre-recepción: cantidad absoluta
// de exceso permitida sobre la cantidad ordenada (default cero = ningún
// exceso).
type UseCase struct {
	txRunner   appledger.TxRunner
	post       *appledger.PostEntryUseCase
	entries    repository.LedgerEntryRepository
	poRepo     repository.PurchaseOrderRepository
	tolerance  decimal.Decimal
	maxRetries int
}

// NewUseCase construye el caso de uso. entries y poRepo van sobre el pool
// (para RecomputeLine fuera de transacción).
func NewUseCase(
	txRunner appledger.TxRunner,
	post *appledger.PostEntryUseCase,
	entries repository.LedgerEntryRepository,
	poRepo repository.PurchaseOrderRepository,
	tolerance decimal.Decimal,
	maxRetries int,
) *UseCase {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &UseCase{
		txRunner:   txRunner,
		post:       post,
		entries:    entries,
		poRepo:     poRepo,
		tolerance:  tolerance,
		maxRetries: maxRetries,
	}
}

var _ appledger.LineRecomputer = (*UseCase)(nil)

// ReceiveInput entrada para una recepción contra línea de orden de compra.
type ReceiveInput struct {
	POLineID    string
	LotID       string
	WarehouseID string
	Quantity    decimal.Decimal
	Remark      string
	CreatedBy   string
}

// Receive registra la recepción: en una sola transacción bloquea la línea,
// verifica la tolerancia de sobre-recepción, registra el asiento RECEIPT y
// recalcula el agregado recibido y los estados de línea y orden desde el
// kardex. ErrOverReceipt es terminal: nunca se reintenta.
func (uc *UseCase) Receive(ctx context.Context, input ReceiveInput) (*entity.LedgerEntry, error) {
	if input.POLineID == "" || input.WarehouseID == "" {
		return nil, fmt.Errorf("%w: po_line_id y warehouse_id son obligatorios", domain.ErrInvalidInput)
	}
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad %s debe ser mayor que cero", domain.ErrInvalidInput, input.Quantity)
	}

	var posted *entity.LedgerEntry
	run := func(
		entries repository.LedgerEntryRepository,
		balances repository.StockBalanceRepository,
		lots repository.LotRepository,
		poRepo repository.PurchaseOrderRepository,
		_ repository.CountSheetRepository,
	) error {
		// Bloquea la línea: el chequeo de tolerancia y la recepción deben ser
		// una sola unidad frente a recepciones concurrentes sobre la línea.
		line, err := poRepo.GetLineForUpdate(input.POLineID)
		if err != nil {
			return err
		}
		if line == nil {
			return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, input.POLineID)
		}
		newReceived := line.ReceivedQty.Add(input.Quantity)
		ceiling := line.OrderedQty.Add(uc.tolerance)
		if newReceived.GreaterThan(ceiling) {
			return fmt.Errorf("%w: línea %s ordenó %s, lleva %s y la recepción de %s supera la tolerancia %s",
				domain.ErrOverReceipt, line.ID, line.OrderedQty, line.ReceivedQty, input.Quantity, uc.tolerance)
		}

		posted, err = uc.post.PostInTx(entries, balances, lots, appledger.DraftEntry{
			Type:        entity.EntryTypeRECEIPT,
			Quantity:    input.Quantity,
			PartID:      line.PartID,
			LotID:       input.LotID,
			WarehouseID: input.WarehouseID,
			RefType:     entity.RefTypePO,
			RefID:       line.ID,
			Remark:      input.Remark,
			CreatedBy:   input.CreatedBy,
		}, time.Now())
		if err != nil {
			return err
		}
		return uc.recomputeLineInTx(entries, poRepo, line)
	}

	var err error
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		err = uc.txRunner.Run(ctx, run)
		if err == nil {
			return posted, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %d intentos generando número de recepción",
		domain.ErrNumberingExhausted, uc.maxRetries)
}

// RecomputeLine recalcula el agregado recibido de la línea desde el kardex y
// deriva los estados. Idempotente: sirve como reparación/backfill y se invoca
// sincrónicamente después de anular una recepción.
func (uc *UseCase) RecomputeLine(_ context.Context, lineID string) error {
	line, err := uc.poRepo.GetLine(lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, lineID)
	}
	return uc.recomputeLineInTx(uc.entries, uc.poRepo, line)
}

// recomputeLineInTx: ReceivedQty = suma firmada de los asientos RECEIPT en
// estado DONE que referencian la línea (los anulados quedan excluidos por su
// estado, así la compensatoria los neta). Deriva estado de línea y de orden.
func (uc *UseCase) recomputeLineInTx(
	entries repository.LedgerEntryRepository,
	poRepo repository.PurchaseOrderRepository,
	line *entity.PurchaseOrderLine,
) error {
	received, err := entries.SumByReference(entity.RefTypePO, line.ID, entity.EntryTypeRECEIPT)
	if err != nil {
		return err
	}
	line.ReceivedQty = received
	line.Status = entity.DeriveLineStatus(line.OrderedQty, received)
	line.UpdatedAt = time.Now()
	if err := poRepo.UpdateLineAggregate(line); err != nil {
		return err
	}

	lines, err := poRepo.ListLines(line.OrderID)
	if err != nil {
		return err
	}
	statuses := make([]string, 0, len(lines))
	for _, l := range lines {
		statuses = append(statuses, l.Status)
	}
	return poRepo.UpdateOrderStatus(line.OrderID, entity.DeriveOrderStatus(statuses))
}

// GetLine expone la línea con su agregado para el colaborador de compras.
func (uc *UseCase) GetLine(_ context.Context, lineID string) (*entity.PurchaseOrderLine, error) {
	line, err := uc.poRepo.GetLine(lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, lineID)
	}
	return line, nil
}
