package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no hay UPDATE general ni DELETE; MarkCanceled es
// la única mutación (estado + enlace de anulación).
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

const entryColumns = `id, tx_number, type, quantity, part_id, lot_id, warehouse_id,
	counter_warehouse_id, ref_type, ref_id, status, reversal_of_id, reversed_by_id,
	remark, created_by, occurred_at, created_at`

// Create persiste un asiento. Colisión del número único -> ErrDuplicate
// (el motor regenera el número y reintenta, acotado).
func (r *LedgerEntryRepo) Create(e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	createdBy := (*string)(nil)
	if e.CreatedBy != "" {
		createdBy = &e.CreatedBy
	}
	// lot_id va NULL en los movimientos sin lote: con '' el FK a lots
	// rechazaría todo asiento sin lote (23503).
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.TxNumber, e.Type, e.Quantity, e.PartID, nullable(e.LotID), e.WarehouseID,
		e.CounterWarehouseID, e.RefType, e.RefID, e.Status, nullable(e.ReversalOfID),
		nullable(e.ReversedByID), e.Remark, createdBy, e.OccurredAt, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

func scanEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var lotID, reversalOf, reversedBy, createdBy *string
	err := row.Scan(
		&e.ID, &e.TxNumber, &e.Type, &e.Quantity, &e.PartID, &lotID, &e.WarehouseID,
		&e.CounterWarehouseID, &e.RefType, &e.RefID, &e.Status, &reversalOf,
		&reversedBy, &e.Remark, &createdBy, &e.OccurredAt, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	if lotID != nil {
		e.LotID = *lotID
	}
	if reversalOf != nil {
		e.ReversalOfID = *reversalOf
	}
	if reversedBy != nil {
		e.ReversedByID = *reversedBy
	}
	if createdBy != nil {
		e.CreatedBy = *createdBy
	}
	return &e, nil
}

// GetByID obtiene un asiento por ID.
func (r *LedgerEntryRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`
	return scanEntry(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene el asiento y bloquea la fila: dos anulaciones
// concurrentes del mismo asiento se serializan aquí.
func (r *LedgerEntryRepo) GetForUpdate(id string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`
	return scanEntry(r.q.QueryRow(context.Background(), query, id))
}

// MarkCanceled fija estado CANCELED y el enlace a la compensatoria en el
// asiento original. Solo aplica sobre asientos DONE aún no anulados: el WHERE
// protege contra dobles anulaciones que se cuelen por fuera del bloqueo.
func (r *LedgerEntryRepo) MarkCanceled(originalID, reversedByID string) error {
	query := `
		UPDATE ledger_entries
		SET status = $3, reversed_by_id = $2
		WHERE id = $1 AND status = $4 AND reversed_by_id IS NULL`
	tag, err := r.q.Exec(context.Background(), query,
		originalID, reversedByID, entity.EntryStatusCANCELED, entity.EntryStatusDONE)
	if err != nil {
		return fmt.Errorf("mark canceled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: asiento %s", domain.ErrAlreadyCanceled, originalID)
	}
	return nil
}

// FindByReference lista los asientos que referencian un documento, en orden
// de creación.
func (r *LedgerEntryRepo) FindByReference(refType, refID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE ref_type = $1 AND ref_id = $2
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, refType, refID)
	if err != nil {
		return nil, fmt.Errorf("find by reference: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// SumByReference suma las cantidades firmadas de los asientos DONE del tipo
// dado que referencian el documento. Base del recalculo de agregados
// (los asientos anulados quedan fuera por su estado).
func (r *LedgerEntryRepo) SumByReference(refType, refID, entryType string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0) FROM ledger_entries
		WHERE ref_type = $1 AND ref_id = $2 AND type = $3 AND status = $4`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query,
		refType, refID, entryType, entity.EntryStatusDONE).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum by reference: %w", err)
	}
	return sum, nil
}

// ListByKey lista el kardex de una clave de saldo en un rango de fechas.
// NULLIF empareja la convención de la clave (lote '' = sin lote) con el NULL
// almacenado en la tabla.
func (r *LedgerEntryRepo) ListByKey(key entity.BalanceKey, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE warehouse_id = $1 AND part_id = $2 AND lot_id IS NOT DISTINCT FROM NULLIF($3, '')`
	args := []any{key.WarehouseID, key.PartID, key.LotID}
	pos := 4
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by key: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var lotID, reversalOf, reversedBy, createdBy *string
		if err := rows.Scan(
			&e.ID, &e.TxNumber, &e.Type, &e.Quantity, &e.PartID, &lotID, &e.WarehouseID,
			&e.CounterWarehouseID, &e.RefType, &e.RefID, &e.Status, &reversalOf,
			&reversedBy, &e.Remark, &createdBy, &e.OccurredAt, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if lotID != nil {
			e.LotID = *lotID
		}
		if reversalOf != nil {
			e.ReversalOfID = *reversalOf
		}
		if reversedBy != nil {
			e.ReversedByID = *reversedBy
		}
		if createdBy != nil {
			e.CreatedBy = *createdBy
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
