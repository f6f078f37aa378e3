package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una planilla de inventario físico.
const (
	CountSheetOPEN    = "OPEN"
	CountSheetAPPLIED = "APPLIED"
)

// CountSheet es una planilla de conteo físico: una foto de los saldos de
// sistema al momento de generarla. No bloquea los saldos mientras se cuenta
// (el conteo puede durar horas); la varianza se recalcula contra el saldo
// vivo al aplicar.
type CountSheet struct {
	ID          string
	SheetNumber string // único: CS-YYYYMMDD-NNNNNN
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	AppliedBy   string
	AppliedAt   *time.Time
	Items       []CountItem
}

// CountItem es una observación de conteo para una clave de saldo.
// SnapshotQty es la cantidad de sistema al generar la planilla; CountedQty y
// Variance se fijan al aplicar y no se editan retroactivamente.
type CountItem struct {
	ID          string
	SheetID     string
	WarehouseID string
	PartID      string
	LotID       string
	SnapshotQty decimal.Decimal
	CountedQty  *decimal.Decimal
	Variance    *decimal.Decimal // CountedQty - saldo vivo al aplicar
	EntryID     string           // asiento ADJUSTMENT generado; vacío si varianza cero
}

// Key devuelve la clave de saldo del renglón.
func (i *CountItem) Key() BalanceKey {
	return BalanceKey{WarehouseID: i.WarehouseID, PartID: i.PartID, LotID: i.LotID}
}
