package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// QueryUseCase agrupa las lecturas del kardex y de saldos. Consumidores de
// auditoría/reportes entran solo por aquí: no hay camino de lectura que mute
// la historia.
type QueryUseCase struct {
	entries  repository.LedgerEntryRepository
	balances repository.StockBalanceRepository
}

// NewQueryUseCase construye el caso de uso de consultas (repos sobre el pool).
func NewQueryUseCase(entries repository.LedgerEntryRepository, balances repository.StockBalanceRepository) *QueryUseCase {
	return &QueryUseCase{entries: entries, balances: balances}
}

// FindByReference lista los asientos que referencian un documento.
func (uc *QueryUseCase) FindByReference(_ context.Context, refType, refID string) ([]*entity.LedgerEntry, error) {
	if refType == "" || refID == "" {
		return nil, fmt.Errorf("%w: ref_type y ref_id son obligatorios", domain.ErrInvalidInput)
	}
	return uc.entries.FindByReference(refType, refID)
}

// GetEntry devuelve un asiento por ID.
func (uc *QueryUseCase) GetEntry(_ context.Context, id string) (*entity.LedgerEntry, error) {
	e, err := uc.entries.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: asiento %s", domain.ErrNotFound, id)
	}
	return e, nil
}

// ListByKey lista el kardex de una clave de saldo en un rango de fechas.
func (uc *QueryUseCase) ListByKey(_ context.Context, key entity.BalanceKey, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	if key.WarehouseID == "" || key.PartID == "" {
		return nil, fmt.Errorf("%w: warehouse_id y part_id son obligatorios", domain.ErrInvalidInput)
	}
	return uc.entries.ListByKey(key, from, to, limit, offset)
}

// ListBalances lista saldos filtrando por bodega y/o referencia.
func (uc *QueryUseCase) ListBalances(_ context.Context, warehouseID, partID string, limit, offset int) ([]*entity.StockBalance, error) {
	return uc.balances.List(warehouseID, partID, limit, offset)
}
