package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación sobre PostgreSQL (usable con pool o tx).
// lot_id usa '' para movimientos sin lote, así la clave primaria compuesta
// queda simple y el upsert no pelea con NULLs.
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const balanceColumns = `warehouse_id, part_id, lot_id, quantity, hold_qty, last_tx_at, last_counted_at`

func scanBalance(row pgx.Row, key entity.BalanceKey) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(
		&b.WarehouseID, &b.PartID, &b.LotID, &b.Quantity, &b.HoldQty,
		&b.LastTxAt, &b.LastCountedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Saldo inexistente = saldo cero listo para upsert.
			return &entity.StockBalance{
				WarehouseID: key.WarehouseID,
				PartID:      key.PartID,
				LotID:       key.LotID,
				Quantity:    decimal.Zero,
				HoldQty:     decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("scan stock balance: %w", err)
	}
	return &b, nil
}

// Get obtiene el saldo de una clave (cero si no existe).
func (r *StockBalanceRepo) Get(key entity.BalanceKey) (*entity.StockBalance, error) {
	query := `
		SELECT ` + balanceColumns + ` FROM stock_balances
		WHERE warehouse_id = $1 AND part_id = $2 AND lot_id = $3`
	return scanBalance(r.q.QueryRow(context.Background(), query,
		key.WarehouseID, key.PartID, key.LotID), key)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
// Toda mutación de saldo pasa por este bloqueo dentro de la tx del asiento.
// Sobre una clave nueva primero se materializa la fila en cero: sin fila el
// FOR UPDATE no bloquea nada y dos primeras escrituras concurrentes se
// pisarían el saldo absoluto en el upsert.
func (r *StockBalanceRepo) GetForUpdate(key entity.BalanceKey) (*entity.StockBalance, error) {
	ctx := context.Background()
	ensure := `
		INSERT INTO stock_balances (warehouse_id, part_id, lot_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (warehouse_id, part_id, lot_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, key.WarehouseID, key.PartID, key.LotID); err != nil {
		return nil, fmt.Errorf("ensure stock balance: %w", err)
	}
	query := `
		SELECT ` + balanceColumns + ` FROM stock_balances
		WHERE warehouse_id = $1 AND part_id = $2 AND lot_id = $3
		FOR UPDATE`
	return scanBalance(r.q.QueryRow(ctx, query,
		key.WarehouseID, key.PartID, key.LotID), key)
}

// Upsert inserta o actualiza el saldo de la clave.
func (r *StockBalanceRepo) Upsert(balance *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (warehouse_id, part_id, lot_id, quantity, hold_qty, last_tx_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (warehouse_id, part_id, lot_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, hold_qty = EXCLUDED.hold_qty, last_tx_at = EXCLUDED.last_tx_at`
	_, err := r.q.Exec(context.Background(), query,
		balance.WarehouseID, balance.PartID, balance.LotID,
		balance.Quantity, balance.HoldQty, balance.LastTxAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock balance: %w", err)
	}
	return nil
}

// StampLastCounted fija la fecha del último inventario físico aplicado.
func (r *StockBalanceRepo) StampLastCounted(key entity.BalanceKey, at time.Time) error {
	query := `
		UPDATE stock_balances SET last_counted_at = $4
		WHERE warehouse_id = $1 AND part_id = $2 AND lot_id = $3`
	_, err := r.q.Exec(context.Background(), query,
		key.WarehouseID, key.PartID, key.LotID, at)
	if err != nil {
		return fmt.Errorf("stamp last counted: %w", err)
	}
	return nil
}

// List lista saldos filtrando por bodega y/o referencia (vacío = sin filtro).
func (r *StockBalanceRepo) List(warehouseID, partID string, limit, offset int) ([]*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE 1=1`
	args := []any{}
	pos := 1
	if warehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, warehouseID)
		pos++
	}
	if partID != "" {
		query += fmt.Sprintf(" AND part_id = $%d", pos)
		args = append(args, partID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY warehouse_id, part_id, lot_id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(
			&b.WarehouseID, &b.PartID, &b.LotID, &b.Quantity, &b.HoldQty,
			&b.LastTxAt, &b.LastCountedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
