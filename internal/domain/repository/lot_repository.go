package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// LotRepository define el puerto de persistencia del registro de lotes.
// Los lotes nunca se borran; Update solo toca cantidad actual y estados.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	GetByNumber(lotNumber string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) para mutar
	// CurrentQty dentro de la transacción del asiento.
	GetForUpdate(id string) (*entity.Lot, error)
	Update(lot *entity.Lot) error
	ListByPart(partID string, limit, offset int) ([]*entity.Lot, error)
}
