package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Ensure TxRunner implements appledger.TxRunner.
var _ appledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con los
// repositorios del kardex atados a la tx. Todo lo que escribe el kardex
// (asiento + saldo + lote + agregados derivados) pasa por aquí.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	entries repository.LedgerEntryRepository,
	balances repository.StockBalanceRepository,
	lots repository.LotRepository,
	poRepo repository.PurchaseOrderRepository,
	sheets repository.CountSheetRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	entries := NewLedgerEntryRepository(tx)
	balances := NewStockBalanceRepository(tx)
	lots := NewLotRepository(tx)
	poRepo := NewPurchaseOrderRepository(tx)
	sheets := NewCountSheetRepository(tx)

	if err := fn(entries, balances, lots, poRepo, sheets); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
