package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// PostEntryRequest body para POST /api/ledger/entries (movimientos directos:
// salidas, traslados, ajustes manuales). Las recepciones PO entran por
// /api/receipts y las anulaciones por /cancel: el ref_type PO queda vetado
// aquí porque saltaría el control de tolerancia de sobre-recepción, y CANCEL
// porque falsearía los enlaces de anulación.
type PostEntryRequest struct {
	Type                 string          `json:"type" validate:"required,oneof=ISSUE TRANSFER_IN TRANSFER_OUT ADJUSTMENT RECEIPT"`
	Quantity             decimal.Decimal `json:"quantity" validate:"required"`
	PartID               string          `json:"part_id" validate:"required"`
	LotID                string          `json:"lot_id,omitempty"`
	WarehouseID          string          `json:"warehouse_id" validate:"required"`
	CounterWarehouseID   string          `json:"counter_warehouse_id,omitempty"`
	RefType              string          `json:"ref_type,omitempty" validate:"omitempty,oneof=MANUAL COUNT"`
	RefID                string          `json:"ref_id,omitempty"`
	Remark               string          `json:"remark,omitempty"`
}

// CancelEntryRequest body para POST /api/ledger/entries/:id/cancel.
type CancelEntryRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// LedgerEntryResponse representación de un asiento en respuestas.
type LedgerEntryResponse struct {
	ID                 string          `json:"id"`
	TxNumber           string          `json:"tx_number"`
	Type               string          `json:"type"`
	Quantity           decimal.Decimal `json:"quantity"`
	PartID             string          `json:"part_id"`
	LotID              string          `json:"lot_id,omitempty"`
	WarehouseID        string          `json:"warehouse_id"`
	CounterWarehouseID string          `json:"counter_warehouse_id,omitempty"`
	RefType            string          `json:"ref_type"`
	RefID              string          `json:"ref_id,omitempty"`
	Status             string          `json:"status"`
	ReversalOfID       string          `json:"reversal_of_id,omitempty"`
	ReversedByID       string          `json:"reversed_by_id,omitempty"`
	Remark             string          `json:"remark,omitempty"`
	CreatedBy          string          `json:"created_by,omitempty"`
	OccurredAt         time.Time       `json:"occurred_at"`
}

// NewLedgerEntryResponse mapea la entidad al DTO.
func NewLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:                 e.ID,
		TxNumber:           e.TxNumber,
		Type:               e.Type,
		Quantity:           e.Quantity,
		PartID:             e.PartID,
		LotID:              e.LotID,
		WarehouseID:        e.WarehouseID,
		CounterWarehouseID: e.CounterWarehouseID,
		RefType:            e.RefType,
		RefID:              e.RefID,
		Status:             e.Status,
		ReversalOfID:       e.ReversalOfID,
		ReversedByID:       e.ReversedByID,
		Remark:             e.Remark,
		CreatedBy:          e.CreatedBy,
		OccurredAt:         e.OccurredAt,
	}
}

// StockBalanceResponse saldo de una clave en respuestas.
type StockBalanceResponse struct {
	WarehouseID   string          `json:"warehouse_id"`
	PartID        string          `json:"part_id"`
	LotID         string          `json:"lot_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvailableQty  decimal.Decimal `json:"available_qty"`
	LastTxAt      time.Time       `json:"last_tx_at"`
	LastCountedAt *time.Time      `json:"last_counted_at,omitempty"`
}

// NewStockBalanceResponse mapea la entidad al DTO.
func NewStockBalanceResponse(b *entity.StockBalance) StockBalanceResponse {
	return StockBalanceResponse{
		WarehouseID:   b.WarehouseID,
		PartID:        b.PartID,
		LotID:         b.LotID,
		Quantity:      b.Quantity,
		AvailableQty:  b.Available(),
		LastTxAt:      b.LastTxAt,
		LastCountedAt: b.LastCountedAt,
	}
}
