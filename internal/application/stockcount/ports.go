package stockcount

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// SheetRenderer genera la planilla de conteo imprimible (PDF) a partir de la
// foto de saldos. Implementado en infrastructure/pdf con Maroto.
type SheetRenderer interface {
	RenderCountSheet(ctx context.Context, sheet *entity.CountSheet) ([]byte, error)
}
