package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ReceiveRequest body para POST /api/receipts.
type ReceiveRequest struct {
	POLineID    string          `json:"po_line_id" validate:"required"`
	LotID       string          `json:"lot_id,omitempty"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	Remark      string          `json:"remark,omitempty" validate:"omitempty,max=500"`
}

// POLineResponse línea de orden con su agregado recibido y estado derivado.
type POLineResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	LineNo      int             `json:"line_no"`
	PartID      string          `json:"part_id"`
	OrderedQty  decimal.Decimal `json:"ordered_qty"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	Status      string          `json:"status"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewPOLineResponse mapea la entidad al DTO.
func NewPOLineResponse(l *entity.PurchaseOrderLine) POLineResponse {
	return POLineResponse{
		ID:          l.ID,
		OrderID:     l.OrderID,
		LineNo:      l.LineNo,
		PartID:      l.PartID,
		OrderedQty:  l.OrderedQty,
		ReceivedQty: l.ReceivedQty,
		Status:      l.Status,
		UpdatedAt:   l.UpdatedAt,
	}
}
