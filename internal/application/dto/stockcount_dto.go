package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/stockcount"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// BalanceKeyDTO clave de saldo en requests de inventario físico.
type BalanceKeyDTO struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	PartID      string `json:"part_id" validate:"required"`
	LotID       string `json:"lot_id,omitempty"`
}

// StartCountRequest body para POST /api/stock-counts.
type StartCountRequest struct {
	Keys []BalanceKeyDTO `json:"keys" validate:"required,min=1,dive"`
}

// CountItemInput conteo de un renglón en el apply.
type CountItemInput struct {
	ItemID     string          `json:"item_id" validate:"required"`
	CountedQty decimal.Decimal `json:"counted_qty"`
}

// ApplyCountsRequest body para POST /api/stock-counts/:id/apply.
type ApplyCountsRequest struct {
	Counts []CountItemInput `json:"counts" validate:"required,min=1,dive"`
}

// CountItemResponse renglón de planilla en respuestas.
type CountItemResponse struct {
	ID          string           `json:"id"`
	WarehouseID string           `json:"warehouse_id"`
	PartID      string           `json:"part_id"`
	LotID       string           `json:"lot_id,omitempty"`
	SnapshotQty decimal.Decimal  `json:"snapshot_qty"`
	CountedQty  *decimal.Decimal `json:"counted_qty,omitempty"`
	Variance    *decimal.Decimal `json:"variance,omitempty"`
	EntryID     string           `json:"entry_id,omitempty"`
}

// CountSheetResponse planilla en respuestas.
type CountSheetResponse struct {
	ID          string              `json:"id"`
	SheetNumber string              `json:"sheet_number"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	AppliedAt   *time.Time          `json:"applied_at,omitempty"`
	Items       []CountItemResponse `json:"items"`
}

// NewCountSheetResponse mapea la entidad al DTO.
func NewCountSheetResponse(s *entity.CountSheet) CountSheetResponse {
	items := make([]CountItemResponse, 0, len(s.Items))
	for i := range s.Items {
		it := &s.Items[i]
		items = append(items, CountItemResponse{
			ID:          it.ID,
			WarehouseID: it.WarehouseID,
			PartID:      it.PartID,
			LotID:       it.LotID,
			SnapshotQty: it.SnapshotQty,
			CountedQty:  it.CountedQty,
			Variance:    it.Variance,
			EntryID:     it.EntryID,
		})
	}
	return CountSheetResponse{
		ID:          s.ID,
		SheetNumber: s.SheetNumber,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		AppliedAt:   s.AppliedAt,
		Items:       items,
	}
}

// StaleWarningDTO advertencia de conteo obsoleto.
type StaleWarningDTO struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	PartID      string          `json:"part_id"`
	LotID       string          `json:"lot_id,omitempty"`
	SnapshotQty decimal.Decimal `json:"snapshot_qty"`
	LiveQty     decimal.Decimal `json:"live_qty"`
}

// ApplyCountsResponse respuesta del apply: ajustes generados + advertencias.
type ApplyCountsResponse struct {
	Sheet    CountSheetResponse    `json:"sheet"`
	Entries  []LedgerEntryResponse `json:"entries"`
	Warnings []StaleWarningDTO     `json:"warnings,omitempty"`
}

// NewApplyCountsResponse mapea el resultado del caso de uso al DTO.
func NewApplyCountsResponse(res *stockcount.ApplyResult) ApplyCountsResponse {
	out := ApplyCountsResponse{Sheet: NewCountSheetResponse(res.Sheet)}
	for _, e := range res.Entries {
		out.Entries = append(out.Entries, NewLedgerEntryResponse(e))
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, StaleWarningDTO{
			ItemID:      w.ItemID,
			WarehouseID: w.Key.WarehouseID,
			PartID:      w.Key.PartID,
			LotID:       w.Key.LotID,
			SnapshotQty: w.SnapshotQty,
			LiveQty:     w.LiveQty,
		})
	}
	return out
}
