package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.CountSheetRepository = (*CountSheetRepo)(nil)

// CountSheetRepo implementación sobre PostgreSQL (usable con pool o tx).
type CountSheetRepo struct {
	q Querier
}

// NewCountSheetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCountSheetRepository(q Querier) *CountSheetRepo {
	return &CountSheetRepo{q: q}
}

// Create persiste la planilla con sus renglones. Colisión del número único
// -> ErrDuplicate (el caso de uso regenera y reintenta).
func (r *CountSheetRepo) Create(sheet *entity.CountSheet) error {
	ctx := context.Background()
	query := `
		INSERT INTO count_sheets (id, sheet_number, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		sheet.ID, sheet.SheetNumber, sheet.Status, sheet.CreatedBy, sheet.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create count sheet: %w", err)
	}
	itemQuery := `
		INSERT INTO count_items (id, sheet_id, warehouse_id, part_id, lot_id, snapshot_qty)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range sheet.Items {
		it := &sheet.Items[i]
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.SheetID, it.WarehouseID, it.PartID, it.LotID, it.SnapshotQty); err != nil {
			return fmt.Errorf("create count item: %w", err)
		}
	}
	return nil
}

func (r *CountSheetRepo) getHeader(id string, forUpdate bool) (*entity.CountSheet, error) {
	query := `
		SELECT id, sheet_number, status, created_by, created_at, applied_by, applied_at
		FROM count_sheets WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.CountSheet
	var appliedBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.SheetNumber, &s.Status, &s.CreatedBy, &s.CreatedAt, &appliedBy, &s.AppliedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count sheet: %w", err)
	}
	if appliedBy != nil {
		s.AppliedBy = *appliedBy
	}
	return &s, nil
}

func (r *CountSheetRepo) loadItems(sheet *entity.CountSheet) error {
	query := `
		SELECT id, sheet_id, warehouse_id, part_id, lot_id, snapshot_qty, counted_qty, variance, entry_id
		FROM count_items WHERE sheet_id = $1 ORDER BY warehouse_id, part_id, lot_id`
	rows, err := r.q.Query(context.Background(), query, sheet.ID)
	if err != nil {
		return fmt.Errorf("list count items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.CountItem
		var entryID *string
		if err := rows.Scan(
			&it.ID, &it.SheetID, &it.WarehouseID, &it.PartID, &it.LotID,
			&it.SnapshotQty, &it.CountedQty, &it.Variance, &entryID,
		); err != nil {
			return fmt.Errorf("scan count item: %w", err)
		}
		if entryID != nil {
			it.EntryID = *entryID
		}
		sheet.Items = append(sheet.Items, it)
	}
	return rows.Err()
}

// GetByID obtiene la planilla con sus renglones.
func (r *CountSheetRepo) GetByID(id string) (*entity.CountSheet, error) {
	sheet, err := r.getHeader(id, false)
	if err != nil || sheet == nil {
		return sheet, err
	}
	if err := r.loadItems(sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// GetForUpdate obtiene la planilla bloqueando la cabecera: dos aplicaciones
// concurrentes de la misma planilla se serializan aquí.
func (r *CountSheetRepo) GetForUpdate(id string) (*entity.CountSheet, error) {
	sheet, err := r.getHeader(id, true)
	if err != nil || sheet == nil {
		return sheet, err
	}
	if err := r.loadItems(sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// UpdateItem persiste conteo, varianza y asiento generado de un renglón.
func (r *CountSheetRepo) UpdateItem(item *entity.CountItem) error {
	query := `
		UPDATE count_items
		SET counted_qty = $2, variance = $3, entry_id = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, item.CountedQty, item.Variance, nullable(item.EntryID))
	if err != nil {
		return fmt.Errorf("update count item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: renglón de conteo %s", domain.ErrNotFound, item.ID)
	}
	return nil
}

// MarkApplied fija la planilla APPLIED. El WHERE sobre el estado protege
// contra una doble aplicación.
func (r *CountSheetRepo) MarkApplied(sheetID, by string) error {
	query := `
		UPDATE count_sheets
		SET status = $2, applied_by = $3, applied_at = now()
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(context.Background(), query,
		sheetID, entity.CountSheetAPPLIED, by, entity.CountSheetOPEN)
	if err != nil {
		return fmt.Errorf("mark applied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: planilla %s ya aplicada", domain.ErrConflict, sheetID)
	}
	return nil
}
