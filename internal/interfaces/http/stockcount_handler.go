package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/stockcount"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// StockCountHandler maneja el inventario físico (protegido).
type StockCountHandler struct {
	uc *stockcount.UseCase
}

// NewStockCountHandler construye el handler.
func NewStockCountHandler(uc *stockcount.UseCase) *StockCountHandler {
	return &StockCountHandler{uc: uc}
}

// Start genera una planilla de conteo con la foto de saldos.
// POST /api/stock-counts
func (h *StockCountHandler) Start(c *fiber.Ctx) error {
	var in dto.StartCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	keys := make([]entity.BalanceKey, 0, len(in.Keys))
	for _, k := range in.Keys {
		keys = append(keys, entity.BalanceKey{WarehouseID: k.WarehouseID, PartID: k.PartID, LotID: k.LotID})
	}
	sheet, err := h.uc.StartCount(c.Context(), keys, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCountSheetResponse(sheet))
}

// GetByID obtiene una planilla por ID.
// GET /api/stock-counts/:id
func (h *StockCountHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	sheet, err := h.uc.GetSheet(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewCountSheetResponse(sheet))
}

// SheetPDF devuelve la planilla imprimible.
// GET /api/stock-counts/:id/sheet.pdf
func (h *StockCountHandler) SheetPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	pdfBytes, err := h.uc.RenderSheetPDF(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=planilla-%s.pdf", id))
	return c.Send(pdfBytes)
}

// Apply aplica los conteos de una planilla y genera los ajustes por varianza.
// POST /api/stock-counts/:id/apply
func (h *StockCountHandler) Apply(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.ApplyCountsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	counts := make([]stockcount.CountInput, 0, len(in.Counts))
	for _, ci := range in.Counts {
		counts = append(counts, stockcount.CountInput{ItemID: ci.ItemID, CountedQty: ci.CountedQty})
	}
	result, err := h.uc.ApplyCounts(c.Context(), id, counts, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewApplyCountsResponse(result))
}
