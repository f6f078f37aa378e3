package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// LedgerEntryRepository define el puerto de persistencia de los asientos del
// kardex. Los asientos son append-only: no hay Update general ni Delete;
// MarkCanceled es la única mutación permitida (estado + enlaces de anulación)
// y debe ejecutarse en la misma transacción que registra la compensatoria.
type LedgerEntryRepository interface {
	Create(e *entity.LedgerEntry) error
	GetByID(id string) (*entity.LedgerEntry, error)
	// GetForUpdate bloquea la fila del asiento para validar las precondiciones
	// de anulación sin carrera con otra anulación concurrente.
	GetForUpdate(id string) (*entity.LedgerEntry, error)
	// MarkCanceled fija Status=CANCELED y ReversedByID en el asiento original.
	MarkCanceled(originalID, reversedByID string) error
	FindByReference(refType, refID string) ([]*entity.LedgerEntry, error)
	// SumByReference suma las cantidades firmadas de los asientos DONE del
	// tipo dado que referencian el documento (recalculo de agregados).
	SumByReference(refType, refID, entryType string) (decimal.Decimal, error)
	ListByKey(key entity.BalanceKey, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
}
