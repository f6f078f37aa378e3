package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKey identifica un saldo de stock: bodega + referencia + lote.
// LotID vacío agrupa los movimientos sin lote de esa referencia en la bodega.
type BalanceKey struct {
	WarehouseID string
	PartID      string
	LotID       string
}

// StockBalance es el saldo actual para una BalanceKey, derivado del kardex.
// Invariante central del subsistema: Quantity == suma de las cantidades
// firmadas de todos los asientos sobre la clave. Solo lo escribe el kardex
// (post), nunca se edita directamente.
type StockBalance struct {
	WarehouseID   string
	PartID        string
	LotID         string
	Quantity      decimal.Decimal
	HoldQty       decimal.Decimal // reservas/bloqueos; Available = Quantity - HoldQty
	LastTxAt      time.Time
	LastCountedAt *time.Time // última planilla de inventario físico aplicada
}

// Key devuelve la clave del saldo.
func (b *StockBalance) Key() BalanceKey {
	return BalanceKey{WarehouseID: b.WarehouseID, PartID: b.PartID, LotID: b.LotID}
}

// Available devuelve la cantidad disponible (saldo menos bloqueos).
func (b *StockBalance) Available() decimal.Decimal {
	return b.Quantity.Sub(b.HoldQty)
}
