package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del kardex.
const (
	EntryTypeRECEIPT       = "RECEIPT"        // entrada por recepción (PO o manual)
	EntryTypeRECEIPTCancel = "RECEIPT_CANCEL" // compensatoria de una recepción
	EntryTypeISSUE         = "ISSUE"          // salida a producción / consumo
	EntryTypeISSUECancel   = "ISSUE_CANCEL"   // compensatoria de una salida
	EntryTypeTRANSFERIn    = "TRANSFER_IN"    // entrada por traslado entre bodegas
	EntryTypeTRANSFEROut   = "TRANSFER_OUT"   // salida por traslado entre bodegas
	EntryTypeADJUSTMENT    = "ADJUSTMENT"     // ajuste (inventario físico, corrección)
)

// Estados de un asiento.
const (
	EntryStatusDONE     = "DONE"
	EntryStatusCANCELED = "CANCELED"
)

// Tipos de documento de referencia.
const (
	RefTypePO     = "PO"     // línea de orden de compra
	RefTypeMANUAL = "MANUAL" // movimiento directo
	RefTypeCANCEL = "CANCEL" // apunta al asiento original anulado
	RefTypeCOUNT  = "COUNT"  // planilla de inventario físico
)

// LedgerEntry es un asiento inmutable del kardex: un movimiento de cantidad
// firmado sobre una clave (bodega, referencia, lote). Nunca se edita ni se
// borra después de creado; la corrección es siempre un asiento compensatorio.
// Los únicos campos que mutan tras la creación son Status y ReversedByID, y
// solo dentro de la misma transacción que registra la compensatoria.
type LedgerEntry struct {
	ID                 string
	TxNumber           string // único, con prefijo según origen
	Type               string
	Quantity           decimal.Decimal // firmada: positiva entra, negativa sale
	PartID             string
	LotID              string // vacío para movimientos sin lote
	WarehouseID        string
	CounterWarehouseID string // bodega contraparte en traslados; vacío en el resto
	RefType            string
	RefID              string
	Status             string
	ReversalOfID       string // asiento que esta compensatoria anula
	ReversedByID       string // compensatoria que anuló este asiento
	Remark             string
	CreatedBy          string
	OccurredAt         time.Time
	CreatedAt          time.Time
}
