package repository

import (
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// StockBalanceRepository define el puerto del saldo materializado por clave
// (bodega, referencia, lote). Solo el kardex escribe aquí, siempre dentro de
// la transacción del asiento y con la fila bloqueada.
type StockBalanceRepository interface {
	Get(key entity.BalanceKey) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila del saldo (SELECT FOR UPDATE). Si no existe
	// devuelve un saldo en cero listo para upsert.
	GetForUpdate(key entity.BalanceKey) (*entity.StockBalance, error)
	Upsert(balance *entity.StockBalance) error
	// StampLastCounted fija la fecha del último inventario físico aplicado.
	StampLastCounted(key entity.BalanceKey, at time.Time) error
	List(warehouseID, partID string, limit, offset int) ([]*entity.StockBalance, error)
}
