package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/lots"
	"github.com/jhoicas/Kardex-api/internal/application/receiving"
	"github.com/jhoicas/Kardex-api/internal/application/stockcount"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/cache"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LotUC            *lots.UseCase
	PostEntry        *appledger.PostEntryUseCase
	CancelEntry      *appledger.CancelUseCase
	LedgerQueries    *appledger.QueryUseCase
	ReceivingUC      *receiving.UseCase
	StockCountUC     *stockcount.UseCase
	IdempotencyStore cache.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTSecret        string
}

// Router registra las rutas de la API. Todo el kardex va protegido con Bearer
// Token; la escritura exige rol bodeguero (admin pasa siempre) y los
// endpoints mutadores aceptan Idempotency-Key.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	idem := IdempotencyMiddleware(deps.IdempotencyStore, deps.IdempotencyTTL)
	canWrite := RequireRole(RoleBodeguero)

	// Lots (protegido)
	lotsGroup := protected.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC)
	lotsGroup.Post("/", canWrite, idem, lotHandler.Create)
	lotsGroup.Get("/", lotHandler.ListByPart)
	lotsGroup.Get("/:id", lotHandler.GetByID)
	lotsGroup.Patch("/:id/inspection", canWrite, lotHandler.SetInspection)

	// Ledger (protegido)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.PostEntry, deps.CancelEntry, deps.LedgerQueries)
	ledgerGroup.Post("/entries", canWrite, idem, ledgerHandler.PostEntry)
	ledgerGroup.Get("/entries", ledgerHandler.List)
	ledgerGroup.Get("/entries/:id", ledgerHandler.GetByID)
	ledgerGroup.Post("/entries/:id/cancel", canWrite, idem, ledgerHandler.Cancel)

	// Stock balances (protegido, solo lectura)
	protected.Get("/stock/balances", ledgerHandler.ListBalances)

	// Receiving (protegido)
	receivingHandler := NewReceivingHandler(deps.ReceivingUC)
	protected.Post("/receipts", canWrite, idem, receivingHandler.Receive)
	protected.Get("/po-lines/:id", receivingHandler.GetLine)
	protected.Post("/po-lines/:id/recompute", canWrite, receivingHandler.RecomputeLine)

	// Physical inventory (protegido)
	countsGroup := protected.Group("/stock-counts")
	countHandler := NewStockCountHandler(deps.StockCountUC)
	countsGroup.Post("/", canWrite, idem, countHandler.Start)
	countsGroup.Get("/:id", countHandler.GetByID)
	countsGroup.Get("/:id/sheet.pdf", countHandler.SheetPDF)
	countsGroup.Post("/:id/apply", canWrite, idem, countHandler.Apply)
}
