package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// CountSheetRepository define el puerto de las planillas de inventario físico.
// Una planilla aplicada es inmutable: UpdateItem y MarkApplied solo operan
// sobre planillas OPEN, dentro de la transacción de aplicación.
type CountSheetRepository interface {
	Create(sheet *entity.CountSheet) error
	GetByID(id string) (*entity.CountSheet, error)
	// GetForUpdate bloquea la cabecera para que dos aplicaciones concurrentes
	// de la misma planilla no se pisen.
	GetForUpdate(id string) (*entity.CountSheet, error)
	UpdateItem(item *entity.CountItem) error
	MarkApplied(sheetID string, by string) error
}
