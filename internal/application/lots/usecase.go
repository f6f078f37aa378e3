// Package lots implementa el registro de lotes: creación con numeración
// chequeada contra colisión, estado de inspección y consultas.
package lots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// UseCase operaciones sobre el registro de lotes.
type UseCase struct {
	lots       repository.LotRepository
	numbers    *numbering.Generator
	maxRetries int
}

// NewUseCase construye el caso de uso.
func NewUseCase(lots repository.LotRepository, numbers *numbering.Generator, maxRetries int) *UseCase {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &UseCase{lots: lots, numbers: numbers, maxRetries: maxRetries}
}

// CreateLotInput entrada para crear un lote.
type CreateLotInput struct {
	PartID        string
	SourceDocType string // "PO" | "MANUAL" (default MANUAL)
	SourceDocID   string
	InitialQty    decimal.Decimal
	ReceivedAt    time.Time
	CreatedBy     string
}

// CreateLot crea el lote con cantidad actual 0 (la primera recepción la sube
// vía kardex). El número de lote lleva prefijo de fecha; ante colisión con el
// constraint único se regenera y reintenta, acotado.
func (uc *UseCase) CreateLot(_ context.Context, input CreateLotInput) (*entity.Lot, error) {
	if input.PartID == "" {
		return nil, fmt.Errorf("%w: part_id es obligatorio", domain.ErrInvalidInput)
	}
	if !input.InitialQty.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad inicial %s debe ser mayor que cero",
			domain.ErrInvalidInput, input.InitialQty)
	}
	switch input.SourceDocType {
	case "":
		input.SourceDocType = entity.RefTypeMANUAL
	case entity.RefTypePO, entity.RefTypeMANUAL:
	default:
		return nil, fmt.Errorf("%w: documento origen %s desconocido", domain.ErrInvalidInput, input.SourceDocType)
	}

	now := time.Now()
	recvAt := input.ReceivedAt
	if recvAt.IsZero() {
		recvAt = now
	}
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		lot := &entity.Lot{
			ID:               uuid.New().String(),
			LotNumber:        uc.numbers.Next("LOT", recvAt),
			PartID:           input.PartID,
			SourceDocType:    input.SourceDocType,
			SourceDocID:      input.SourceDocID,
			InitialQty:       input.InitialQty,
			CurrentQty:       decimal.Zero,
			ReceivedAt:       recvAt,
			InspectionStatus: entity.InspectionPENDING,
			Status:           entity.LotStatusNORMAL,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		err := uc.lots.Create(lot)
		if err == nil {
			return lot, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %d intentos generando número de lote",
		domain.ErrNumberingExhausted, uc.maxRetries)
}

// SetInspectionStatus fija el estado de inspección del lote. Efecto solo sobre
// el registro del lote: no toca kardex ni saldos. Un FAIL no pone la cantidad
// en cero, solo inhabilita al lote para operaciones aguas abajo (eso lo
// aplica el consumidor, no este componente).
func (uc *UseCase) SetInspectionStatus(_ context.Context, lotID, status string) (*entity.Lot, error) {
	if !entity.ValidInspectionStatus(status) {
		return nil, fmt.Errorf("%w: estado de inspección %s", domain.ErrInvalidInput, status)
	}
	lot, err := uc.lots.GetByID(lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
	}
	lot.InspectionStatus = status
	lot.UpdatedAt = time.Now()
	if err := uc.lots.Update(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// GetLot devuelve un lote por ID.
func (uc *UseCase) GetLot(_ context.Context, id string) (*entity.Lot, error) {
	lot, err := uc.lots.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return lot, nil
}

// ListByPart lista los lotes de una referencia.
func (uc *UseCase) ListByPart(_ context.Context, partID string, limit, offset int) ([]*entity.Lot, error) {
	if partID == "" {
		return nil, fmt.Errorf("%w: part_id es obligatorio", domain.ErrInvalidInput)
	}
	return uc.lots.ListByPart(partID, limit, offset)
}
