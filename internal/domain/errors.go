package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Todos son terminales para el caller; la única condición que se reintenta
// internamente es la colisión de numeración, acotada y escalada después a
// ErrNumberingExhausted.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrOverReceipt        = errors.New("recepción excede la cantidad ordenada")
	ErrAlreadyCanceled    = errors.New("transacción ya anulada")
	ErrNotCancellable     = errors.New("tipo de transacción no anulable")
	ErrNumberingExhausted = errors.New("numeración agotada sin resolver colisión")
)
