package ledger

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios del kardex atados a esa tx. Garantiza que asiento, saldo, lote
// y documentos derivados se escriban como una sola unidad atómica: si fn
// retorna error no queda nada escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		entries repository.LedgerEntryRepository,
		balances repository.StockBalanceRepository,
		lots repository.LotRepository,
		poRepo repository.PurchaseOrderRepository,
		sheets repository.CountSheetRepository,
	) error) error
}

// LineRecomputer recalcula el agregado recibido de una línea de orden de
// compra a partir del kardex. Lo implementa receiving.UseCase; el motor de
// anulación lo invoca sincrónicamente tras anular una recepción.
type LineRecomputer interface {
	RecomputeLine(ctx context.Context, lineID string) error
}
