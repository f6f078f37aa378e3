package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/lots"
)

// LotHandler maneja las peticiones HTTP del registro de lotes (protegido).
type LotHandler struct {
	uc *lots.UseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *lots.UseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Create godoc
// @Summary      Crear lote de recepción
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "part_id, initial_qty, source_doc_type (PO|MANUAL)"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	var receivedAt time.Time
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}
	lot, err := h.uc.CreateLot(c.Context(), lots.CreateLotInput{
		PartID:        in.PartID,
		SourceDocType: in.SourceDocType,
		SourceDocID:   in.SourceDocID,
		InitialQty:    in.InitialQty,
		ReceivedAt:    receivedAt,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponse(lot))
}

// SetInspection fija el estado de inspección de un lote.
// PATCH /api/lots/:id/inspection
func (h *LotHandler) SetInspection(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.SetInspectionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	lot, err := h.uc.SetInspectionStatus(c.Context(), id, in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponse(lot))
}

// GetByID obtiene un lote por ID.
// GET /api/lots/:id
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	lot, err := h.uc.GetLot(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponse(lot))
}

// ListByPart lista los lotes de una referencia.
// GET /api/lots?part_id=...
func (h *LotHandler) ListByPart(c *fiber.Ctx) error {
	partID := c.Query("part_id")
	if partID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "part_id requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListByPart(c.Context(), partID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LotResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.NewLotResponse(l))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}
