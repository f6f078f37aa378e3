package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
)

// Estados de inspección de un lote.
const (
	InspectionPENDING = "PENDING"
	InspectionPASS    = "PASS"
	InspectionFAIL    = "FAIL"
	InspectionHOLD    = "HOLD"
)

// Estados de ciclo de vida de un lote.
const (
	LotStatusNORMAL   = "NORMAL"
	LotStatusHOLD     = "HOLD"
	LotStatusDEPLETED = "DEPLETED"
)

// Lot representa un lote de recepción de una referencia (part). Se crea en la
// primera recepción y nunca se borra; solo transiciona de estado. CurrentQty
// lo mutan exclusivamente los asientos del kardex que referencian el lote.
//
// Invariante: 0 <= CurrentQty <= InitialQty. Status pasa a DEPLETED exactamente
// cuando CurrentQty llega a 0 y vuelve a NORMAL solo con una entrada
// compensatoria posterior (recepción o anulación de salida).
type Lot struct {
	ID               string
	LotNumber        string // único, legible: LOT-YYYYMMDD-NNNNNN
	PartID           string
	SourceDocType    string // "PO" | "MANUAL"
	SourceDocID      string
	InitialQty       decimal.Decimal
	CurrentQty       decimal.Decimal
	ReceivedAt       time.Time
	InspectionStatus string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidInspectionStatus indica si s es un estado de inspección conocido.
func ValidInspectionStatus(s string) bool {
	switch s {
	case InspectionPENDING, InspectionPASS, InspectionFAIL, InspectionHOLD:
		return true
	}
	return false
}

// ApplyDelta muta CurrentQty por el delta firmado de un asiento del kardex y
// aplica las transiciones de estado derivadas. Debe llamarse únicamente dentro
// de la transacción que registra el asiento, con la fila del lote bloqueada.
func (l *Lot) ApplyDelta(delta decimal.Decimal, now time.Time) error {
	newQty := l.CurrentQty.Add(delta)
	if newQty.IsNegative() {
		return fmt.Errorf("%w: lote %s tiene %s y el movimiento pide %s",
			domain.ErrInsufficientStock, l.LotNumber, l.CurrentQty, delta)
	}
	if newQty.GreaterThan(l.InitialQty) {
		return fmt.Errorf("%w: lote %s admite máximo %s y el movimiento lo llevaría a %s",
			domain.ErrInvalidInput, l.LotNumber, l.InitialQty, newQty)
	}
	l.CurrentQty = newQty
	l.UpdatedAt = now

	if delta.IsNegative() {
		l.MarkDepletedIfZero(now)
	} else if delta.IsPositive() && l.Status == LotStatusDEPLETED && l.CurrentQty.IsPositive() {
		// Des-agotamiento explícito por entrada compensatoria.
		l.Status = LotStatusNORMAL
	}
	return nil
}

// MarkDepletedIfZero transiciona a DEPLETED exactamente cuando CurrentQty es 0.
// Idempotente: sobre un lote ya agotado no tiene efecto.
func (l *Lot) MarkDepletedIfZero(now time.Time) {
	if l.CurrentQty.IsZero() && l.Status != LotStatusDEPLETED {
		l.Status = LotStatusDEPLETED
		l.UpdatedAt = now
	}
}
