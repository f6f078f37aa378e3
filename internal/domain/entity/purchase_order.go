package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de línea y de orden de compra (derivados, nunca editados a mano).
const (
	POStatusOPEN     = "OPEN"
	POStatusPARTIAL  = "PARTIAL"
	POStatusRECEIVED = "RECEIVED"
)

// PurchaseOrder es el documento de demanda. El documento pertenece a Compras
// (colaborador externo); este núcleo solo mantiene el agregado de cantidad
// recibida y el estado derivado.
type PurchaseOrder struct {
	ID        string
	PONumber  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PurchaseOrderLine es una línea de la orden: referencia + cantidad ordenada.
// ReceivedQty es un agregado cacheado: siempre igual a la suma firmada de los
// asientos RECEIPT en estado DONE que referencian la línea.
type PurchaseOrderLine struct {
	ID          string
	OrderID     string
	LineNo      int
	PartID      string
	OrderedQty  decimal.Decimal
	ReceivedQty decimal.Decimal
	Status      string
	UpdatedAt   time.Time
}

// DeriveLineStatus aplica la regla determinista de estado de línea:
// sin recepciones OPEN, parcial PARTIAL, completa (o más) RECEIVED.
func DeriveLineStatus(ordered, received decimal.Decimal) string {
	switch {
	case received.LessThanOrEqual(decimal.Zero):
		return POStatusOPEN
	case received.GreaterThanOrEqual(ordered):
		return POStatusRECEIVED
	default:
		return POStatusPARTIAL
	}
}

// DeriveOrderStatus agrega los estados de línea al estado de la orden:
// todas RECEIVED -> RECEIVED, alguna con avance -> PARTIAL, si no OPEN.
func DeriveOrderStatus(lineStatuses []string) string {
	if len(lineStatuses) == 0 {
		return POStatusOPEN
	}
	allReceived := true
	anyProgress := false
	for _, s := range lineStatuses {
		if s != POStatusRECEIVED {
			allReceived = false
		}
		if s != POStatusOPEN {
			anyProgress = true
		}
	}
	if allReceived {
		return POStatusRECEIVED
	}
	if anyProgress {
		return POStatusPARTIAL
	}
	return POStatusOPEN
}
