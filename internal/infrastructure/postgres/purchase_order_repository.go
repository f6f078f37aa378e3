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

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación sobre PostgreSQL (usable con pool o tx).
// Las órdenes las crea Compras; este adaptador solo lee documentos y escribe
// los agregados derivados del kardex.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// GetOrder obtiene la cabecera de una orden.
func (r *PurchaseOrderRepo) GetOrder(orderID string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, po_number, status, created_at, updated_at
		FROM purchase_orders WHERE id = $1`
	var o entity.PurchaseOrder
	err := r.q.QueryRow(context.Background(), query, orderID).Scan(
		&o.ID, &o.PONumber, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return &o, nil
}

const poLineColumns = `id, order_id, line_no, part_id, ordered_qty, received_qty, status, updated_at`

func scanPOLine(row pgx.Row) (*entity.PurchaseOrderLine, error) {
	var l entity.PurchaseOrderLine
	err := row.Scan(
		&l.ID, &l.OrderID, &l.LineNo, &l.PartID, &l.OrderedQty,
		&l.ReceivedQty, &l.Status, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan po line: %w", err)
	}
	return &l, nil
}

// GetLine obtiene una línea por ID.
func (r *PurchaseOrderRepo) GetLine(lineID string) (*entity.PurchaseOrderLine, error) {
	query := `SELECT ` + poLineColumns + ` FROM purchase_order_lines WHERE id = $1`
	return scanPOLine(r.q.QueryRow(context.Background(), query, lineID))
}

// GetLineForUpdate obtiene la línea y bloquea la fila: el chequeo de
// tolerancia y la recepción se serializan frente a recepciones concurrentes.
func (r *PurchaseOrderRepo) GetLineForUpdate(lineID string) (*entity.PurchaseOrderLine, error) {
	query := `SELECT ` + poLineColumns + ` FROM purchase_order_lines WHERE id = $1 FOR UPDATE`
	return scanPOLine(r.q.QueryRow(context.Background(), query, lineID))
}

// ListLines lista las líneas de una orden.
func (r *PurchaseOrderRepo) ListLines(orderID string) ([]*entity.PurchaseOrderLine, error) {
	query := `SELECT ` + poLineColumns + ` FROM purchase_order_lines WHERE order_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list po lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrderLine
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.LineNo, &l.PartID, &l.OrderedQty,
			&l.ReceivedQty, &l.Status, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan po line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateLineAggregate persiste el agregado recibido y el estado derivado.
func (r *PurchaseOrderRepo) UpdateLineAggregate(line *entity.PurchaseOrderLine) error {
	query := `
		UPDATE purchase_order_lines
		SET received_qty = $2, status = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		line.ID, line.ReceivedQty, line.Status, line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update po line aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, line.ID)
	}
	return nil
}

// UpdateOrderStatus persiste el estado agregado de la orden.
func (r *PurchaseOrderRepo) UpdateOrderStatus(orderID, status string) error {
	query := `UPDATE purchase_orders SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, orderID, status)
	if err != nil {
		return fmt.Errorf("update po status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	return nil
}
