package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// LedgerHandler maneja las peticiones HTTP del kardex (protegido).
type LedgerHandler struct {
	post    *appledger.PostEntryUseCase
	cancel  *appledger.CancelUseCase
	queries *appledger.QueryUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(post *appledger.PostEntryUseCase, cancel *appledger.CancelUseCase, queries *appledger.QueryUseCase) *LedgerHandler {
	return &LedgerHandler{post: post, cancel: cancel, queries: queries}
}

// PostEntry godoc
// @Summary      Registrar movimiento de stock
// @Description  Registra un asiento del kardex (salida, traslado, ajuste o
//
//	recepción manual). Las recepciones contra orden de compra van por
//	/api/receipts y las anulaciones por /cancel.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia del cliente"
// @Param        body  body  dto.PostEntryRequest  true  "type, quantity firmada, part_id, warehouse_id, ref_type"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/entries [post]
func (h *LedgerHandler) PostEntry(c *fiber.Ctx) error {
	var in dto.PostEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	refType := in.RefType
	if refType == "" {
		refType = entity.RefTypeMANUAL
	}
	e, err := h.post.Post(c.Context(), appledger.DraftEntry{
		Type:               in.Type,
		Quantity:           in.Quantity,
		PartID:             in.PartID,
		LotID:              in.LotID,
		WarehouseID:        in.WarehouseID,
		CounterWarehouseID: in.CounterWarehouseID,
		RefType:            refType,
		RefID:              in.RefID,
		Remark:             in.Remark,
		CreatedBy:          GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(e))
}

// Cancel anula un asiento generando su compensatoria.
// POST /api/ledger/entries/:id/cancel
func (h *LedgerHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.CancelEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	comp, err := h.cancel.Cancel(c.Context(), id, in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(comp))
}

// GetByID obtiene un asiento por ID.
// GET /api/ledger/entries/:id
func (h *LedgerHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	e, err := h.queries.GetEntry(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLedgerEntryResponse(e))
}

// List lista asientos por referencia documental o por clave de saldo.
// GET /api/ledger/entries?ref_type=&ref_id=
// GET /api/ledger/entries?warehouse_id=&part_id=&lot_id=&from=&to=
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	refType, refID := c.Query("ref_type"), c.Query("ref_id")
	if refType != "" || refID != "" {
		list, err := h.queries.FindByReference(c.Context(), refType, refID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"total": len(list), "entries": mapEntries(list)})
	}

	key := entity.BalanceKey{
		WarehouseID: c.Query("warehouse_id"),
		PartID:      c.Query("part_id"),
		LotID:       c.Query("lot_id"),
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.queries.ListByKey(c.Context(), key, from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "entries": mapEntries(list)})
}

// ListBalances lista los saldos de stock.
// GET /api/stock/balances?warehouse_id=&part_id=
func (h *LedgerHandler) ListBalances(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.queries.ListBalances(c.Context(), c.Query("warehouse_id"), c.Query("part_id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockBalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.NewStockBalanceResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "balances": out})
}

func mapEntries(list []*entity.LedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.NewLedgerEntryResponse(e))
	}
	return out
}

func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
