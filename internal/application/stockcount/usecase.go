// Package stockcount implementa el inventario físico (conteo cíclico):
// generación de planillas con foto de saldos y aplicación de conteos con
// ajustes por varianza contra el saldo vivo.
package stockcount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/numbering"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// UseCase operaciones de inventario físico.
type UseCase struct {
	txRunner   appledger.TxRunner
	post       *appledger.PostEntryUseCase
	balances   repository.StockBalanceRepository
	sheets     repository.CountSheetRepository
	numbers    *numbering.Generator
	renderer   SheetRenderer
	log        *logger.Logger
	maxRetries int
}

// NewUseCase construye el caso de uso. balances y sheets van sobre el pool
// (lecturas sin bloqueo); las escrituras pasan por txRunner.
func NewUseCase(
	txRunner appledger.TxRunner,
	post *appledger.PostEntryUseCase,
	balances repository.StockBalanceRepository,
	sheets repository.CountSheetRepository,
	numbers *numbering.Generator,
	renderer SheetRenderer,
	log *logger.Logger,
	maxRetries int,
) *UseCase {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &UseCase{
		txRunner: txRunner, post: post, balances: balances, sheets: sheets,
		numbers: numbers, renderer: renderer, log: log, maxRetries: maxRetries,
	}
}

// StartCount genera la planilla con la foto del saldo de sistema por clave.
// Deliberadamente NO bloquea los saldos: el conteo puede durar horas y la
// varianza se recalcula contra el saldo vivo al aplicar.
func (uc *UseCase) StartCount(_ context.Context, keys []entity.BalanceKey, userID string) (*entity.CountSheet, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: la planilla requiere al menos una clave de saldo", domain.ErrInvalidInput)
	}
	now := time.Now()
	items := make([]entity.CountItem, 0, len(keys))
	for _, key := range keys {
		if key.WarehouseID == "" || key.PartID == "" {
			return nil, fmt.Errorf("%w: clave de saldo incompleta", domain.ErrInvalidInput)
		}
		bal, err := uc.balances.Get(key)
		if err != nil {
			return nil, err
		}
		items = append(items, entity.CountItem{
			ID:          uuid.New().String(),
			WarehouseID: key.WarehouseID,
			PartID:      key.PartID,
			LotID:       key.LotID,
			SnapshotQty: bal.Quantity,
		})
	}

	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		sheet := &entity.CountSheet{
			ID:          uuid.New().String(),
			SheetNumber: uc.numbers.Next("CS", now),
			Status:      entity.CountSheetOPEN,
			CreatedBy:   userID,
			CreatedAt:   now,
			Items:       make([]entity.CountItem, len(items)),
		}
		copy(sheet.Items, items)
		for i := range sheet.Items {
			sheet.Items[i].SheetID = sheet.ID
		}
		err := uc.sheets.Create(sheet)
		if err == nil {
			return sheet, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %d intentos generando número de planilla",
		domain.ErrNumberingExhausted, uc.maxRetries)
}

// CountInput conteo de un renglón de la planilla.
type CountInput struct {
	ItemID     string
	CountedQty decimal.Decimal
}

// StaleWarning advierte que el saldo de sistema cambió entre la foto y la
// aplicación (alguien movió stock durante el conteo). No es error: la
// varianza ya se calculó contra el saldo vivo; el operador decide si el
// conteo quedó obsoleto.
type StaleWarning struct {
	ItemID      string
	Key         entity.BalanceKey
	SnapshotQty decimal.Decimal
	LiveQty     decimal.Decimal
}

// ApplyResult resultado de aplicar una planilla.
type ApplyResult struct {
	Sheet    *entity.CountSheet
	Entries  []*entity.LedgerEntry
	Warnings []StaleWarning
}

// ApplyCounts aplica los conteos de una planilla OPEN: por cada renglón con
// varianza no nula registra un asiento ADJUSTMENT (varianza = contado − saldo
// vivo bajo bloqueo, no contra la foto), estampa la fecha de último conteo y
// marca la planilla APPLIED. Varianza cero no escribe asiento. Todo en una
// sola transacción.
func (uc *UseCase) ApplyCounts(ctx context.Context, sheetID string, counts []CountInput, userID string) (*ApplyResult, error) {
	if sheetID == "" || len(counts) == 0 {
		return nil, fmt.Errorf("%w: planilla y conteos son obligatorios", domain.ErrInvalidInput)
	}

	var result *ApplyResult
	run := func(
		entries repository.LedgerEntryRepository,
		balances repository.StockBalanceRepository,
		lots repository.LotRepository,
		_ repository.PurchaseOrderRepository,
		sheets repository.CountSheetRepository,
	) error {
		sheet, err := sheets.GetForUpdate(sheetID)
		if err != nil {
			return err
		}
		if sheet == nil {
			return fmt.Errorf("%w: planilla %s", domain.ErrNotFound, sheetID)
		}
		if sheet.Status != entity.CountSheetOPEN {
			return fmt.Errorf("%w: planilla %s ya fue aplicada", domain.ErrConflict, sheet.SheetNumber)
		}
		byID := make(map[string]*entity.CountItem, len(sheet.Items))
		for i := range sheet.Items {
			byID[sheet.Items[i].ID] = &sheet.Items[i]
		}

		now := time.Now()
		res := &ApplyResult{Sheet: sheet}
		for _, c := range counts {
			item, ok := byID[c.ItemID]
			if !ok {
				return fmt.Errorf("%w: renglón %s no pertenece a la planilla %s",
					domain.ErrNotFound, c.ItemID, sheet.SheetNumber)
			}
			if c.CountedQty.IsNegative() {
				return fmt.Errorf("%w: conteo negativo en renglón %s", domain.ErrInvalidInput, c.ItemID)
			}

			// Saldo vivo bajo bloqueo: la varianza se calcula contra él, no
			// contra la foto, para no pisar movimientos durante el conteo.
			bal, err := balances.GetForUpdate(item.Key())
			if err != nil {
				return err
			}
			if !bal.Quantity.Equal(item.SnapshotQty) {
				res.Warnings = append(res.Warnings, StaleWarning{
					ItemID:      item.ID,
					Key:         item.Key(),
					SnapshotQty: item.SnapshotQty,
					LiveQty:     bal.Quantity,
				})
			}
			variance := c.CountedQty.Sub(bal.Quantity)
			counted := c.CountedQty
			item.CountedQty = &counted
			item.Variance = &variance

			if !variance.IsZero() {
				e, err := uc.post.PostInTx(entries, balances, lots, appledger.DraftEntry{
					Type:        entity.EntryTypeADJUSTMENT,
					Quantity:    variance,
					PartID:      item.PartID,
					LotID:       item.LotID,
					WarehouseID: item.WarehouseID,
					RefType:     entity.RefTypeCOUNT,
					RefID:       sheet.ID,
					Remark:      fmt.Sprintf("inventario físico %s", sheet.SheetNumber),
					CreatedBy:   userID,
				}, now)
				if err != nil {
					return err
				}
				item.EntryID = e.ID
				res.Entries = append(res.Entries, e)
			}
			if err := balances.StampLastCounted(item.Key(), now); err != nil {
				return err
			}
			if err := sheets.UpdateItem(item); err != nil {
				return err
			}
		}
		if err := sheets.MarkApplied(sheet.ID, userID); err != nil {
			return err
		}
		sheet.Status = entity.CountSheetAPPLIED
		sheet.AppliedAt = &now
		result = res
		return nil
	}

	var err error
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		err = uc.txRunner.Run(ctx, run)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %d intentos generando números de ajuste",
			domain.ErrNumberingExhausted, uc.maxRetries)
	}

	for _, w := range result.Warnings {
		uc.log.Warn().
			Str("sheet_id", sheetID).
			Str("item_id", w.ItemID).
			Str("warehouse_id", w.Key.WarehouseID).
			Str("part_id", w.Key.PartID).
			Str("snapshot_qty", w.SnapshotQty.String()).
			Str("live_qty", w.LiveQty.String()).
			Msg("el saldo cambió durante el conteo; varianza calculada contra el saldo vivo")
	}
	return result, nil
}

// GetSheet devuelve una planilla por ID.
func (uc *UseCase) GetSheet(_ context.Context, id string) (*entity.CountSheet, error) {
	sheet, err := uc.sheets.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, fmt.Errorf("%w: planilla %s", domain.ErrNotFound, id)
	}
	return sheet, nil
}

// RenderSheetPDF genera la planilla imprimible de una hoja de conteo.
func (uc *UseCase) RenderSheetPDF(ctx context.Context, id string) ([]byte, error) {
	sheet, err := uc.GetSheet(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderCountSheet(ctx, sheet)
}
