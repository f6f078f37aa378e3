package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/lots"
	"github.com/jhoicas/Kardex-api/internal/application/receiving"
	"github.com/jhoicas/Kardex-api/internal/application/stockcount"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Kardex-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Kardex-api/internal/interfaces/http"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos sobre el pool (lecturas y recalculo fuera de transacción).
	lotRepo := postgres.NewLotRepository(pool)
	entryRepo := postgres.NewLedgerEntryRepository(pool)
	balanceRepo := postgres.NewStockBalanceRepository(pool)
	poRepo := postgres.NewPurchaseOrderRepository(pool)
	sheetRepo := postgres.NewCountSheetRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	numbers := numbering.New()
	retries := cfg.Ledger.NumberingMaxRetries

	postEntryUC := appledger.NewPostEntryUseCase(txRunner, numbers, retries)
	queryUC := appledger.NewQueryUseCase(entryRepo, balanceRepo)
	lotUC := lots.NewUseCase(lotRepo, numbers, retries)
	receivingUC := receiving.NewUseCase(txRunner, postEntryUC, entryRepo, poRepo, cfg.Ledger.OverReceiptTolerance, retries)
	// La anulación de una recepción recalcula el agregado de la línea PO
	// sincrónicamente vía receivingUC.
	cancelUC := appledger.NewCancelUseCase(txRunner, postEntryUC, receivingUC, retries)

	sheetRenderer := infrapdf.NewMarotoSheetRenderer()
	stockCountUC := stockcount.NewUseCase(txRunner, postEntryUC, balanceRepo, sheetRepo, numbers, sheetRenderer, log, retries)

	idemStore := cache.NewInMemoryIdempotencyStore()
	defer idemStore.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kardex API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LotUC:            lotUC,
		PostEntry:        postEntryUC,
		CancelEntry:      cancelUC,
		LedgerQueries:    queryUC,
		ReceivingUC:      receivingUC,
		StockCountUC:     stockCountUC,
		IdempotencyStore: idemStore,
		IdempotencyTTL:   time.Duration(cfg.Ledger.IdempotencyTTLMinutes) * time.Minute,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
