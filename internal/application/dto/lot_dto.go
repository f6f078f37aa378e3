package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// CreateLotRequest body para POST /api/lots.
type CreateLotRequest struct {
	PartID        string          `json:"part_id" validate:"required"`
	SourceDocType string          `json:"source_doc_type,omitempty" validate:"omitempty,oneof=PO MANUAL"`
	SourceDocID   string          `json:"source_doc_id,omitempty"`
	InitialQty    decimal.Decimal `json:"initial_qty" validate:"required"`
	ReceivedAt    *time.Time      `json:"received_at,omitempty"`
}

// SetInspectionRequest body para PATCH /api/lots/:id/inspection.
type SetInspectionRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PASS FAIL HOLD"`
}

// LotResponse representación de un lote en respuestas.
type LotResponse struct {
	ID               string          `json:"id"`
	LotNumber        string          `json:"lot_number"`
	PartID           string          `json:"part_id"`
	SourceDocType    string          `json:"source_doc_type"`
	SourceDocID      string          `json:"source_doc_id,omitempty"`
	InitialQty       decimal.Decimal `json:"initial_qty"`
	CurrentQty       decimal.Decimal `json:"current_qty"`
	ReceivedAt       time.Time       `json:"received_at"`
	InspectionStatus string          `json:"inspection_status"`
	Status           string          `json:"status"`
}

// NewLotResponse mapea la entidad al DTO.
func NewLotResponse(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:               l.ID,
		LotNumber:        l.LotNumber,
		PartID:           l.PartID,
		SourceDocType:    l.SourceDocType,
		SourceDocID:      l.SourceDocID,
		InitialQty:       l.InitialQty,
		CurrentQty:       l.CurrentQty,
		ReceivedAt:       l.ReceivedAt,
		InspectionStatus: l.InspectionStatus,
		Status:           l.Status,
	}
}
