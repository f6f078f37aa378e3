package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/receiving"
)

// ReceivingHandler maneja las recepciones contra órdenes de compra (protegido).
type ReceivingHandler struct {
	uc *receiving.UseCase
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *receiving.UseCase) *ReceivingHandler {
	return &ReceivingHandler{uc: uc}
}

// Receive godoc
// @Summary      Registrar recepción contra línea de orden de compra
// @Tags         receiving
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia del cliente"
// @Param        body  body  dto.ReceiveRequest  true  "po_line_id, warehouse_id, quantity, lot_id opcional"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse  "sobre-recepción fuera de tolerancia"
// @Router       /api/receipts [post]
func (h *ReceivingHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	e, err := h.uc.Receive(c.Context(), receiving.ReceiveInput{
		POLineID:    in.POLineID,
		LotID:       in.LotID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Remark:      in.Remark,
		CreatedBy:   GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(e))
}

// GetLine expone la línea con su agregado recibido y estado derivado.
// GET /api/po-lines/:id
func (h *ReceivingHandler) GetLine(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	line, err := h.uc.GetLine(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPOLineResponse(line))
}

// RecomputeLine recalcula el agregado recibido de la línea desde el kardex
// (reparación idempotente).
// POST /api/po-lines/:id/recompute
func (h *ReceivingHandler) RecomputeLine(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.uc.RecomputeLine(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	line, err := h.uc.GetLine(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPOLineResponse(line))
}
