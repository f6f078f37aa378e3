// Package pdf genera la planilla de conteo físico imprimible.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Planilla de Inventario Físico  │  N° + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Bodega | Referencia | Lote | Sistema | Contado      │
//	│         (Contado en blanco: se llena a mano en piso)        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: firmas de contador y supervisor                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appstockcount "github.com/jhoicas/Kardex-api/internal/application/stockcount"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoSheetRenderer implementa stockcount.SheetRenderer usando Maroto v2.
type MarotoSheetRenderer struct{}

// NewMarotoSheetRenderer construye el renderer.
func NewMarotoSheetRenderer() *MarotoSheetRenderer { return &MarotoSheetRenderer{} }

var _ appstockcount.SheetRenderer = (*MarotoSheetRenderer)(nil)

// RenderCountSheet genera el PDF de la planilla y devuelve sus bytes.
func (g *MarotoSheetRenderer) RenderCountSheet(_ context.Context, sheet *entity.CountSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Planilla de Inventario Físico "+sheet.SheetNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(sheet.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar planilla: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y número de planilla + fecha (der).
func headerRow(sheet *entity.CountSheet) core.Row {
	fecha := sheet.CreatedAt.Format("02/01/2006 15:04")
	return row.New(18).Add(
		col.New(7).Add(
			text.New("PLANILLA DE INVENTARIO FÍSICO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generada por: "+sheet.CreatedBy, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(sheet.SheetNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
			text.New("Estado: "+sheet.Status, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de renglones.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Bodega", 2, align.Left),
		h("Referencia", 3, align.Left),
		h("Lote", 3, align.Left),
		h("Sistema", 2, align.Right),
		h("Contado", 2, align.Right),
	)
}

// tableItemRows: una fila por renglón de conteo. La columna Contado queda con
// una línea de puntos para anotar el conteo a mano.
func tableItemRows(items []entity.CountItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for i := range items {
		it := &items[i]
		counted := "................"
		if it.CountedQty != nil {
			counted = it.CountedQty.String()
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				it.WarehouseID,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				it.PartID,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				nonEmpty(it.LotID, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				it.SnapshotQty.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				counted,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorGray},
			)),
		))
	}
	return result
}

// signatureRow: espacios de firma para contador y supervisor.
func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(6).Add(
			text.New("_______________________________", props.Text{
				Size: 9, Align: align.Center, Top: 14, Color: colorGray,
			}),
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 20,
			}),
		)
	}
	return row.New(26).Add(
		sig("Contó"),
		sig("Supervisó"),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
