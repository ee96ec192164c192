// Package pdf genera el reporte de inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros     │  Fecha + generado por        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ref | Cor | X | Y | Rack | Acab | Marc. | Obs        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: productos / marcados                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
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

	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 247}
)

var _ usecase.ReportGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa usecase.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	appName string
}

// NewMarotoReportGenerator construye el generador; appName va como autor del documento.
func NewMarotoReportGenerator(appName string) *MarotoReportGenerator {
	return &MarotoReportGenerator{appName: appName}
}

// GenerateInventoryReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateInventoryReport(_ context.Context, meta usecase.InventoryReport, products []*entity.Product) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(meta.Title, true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(meta))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(products)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(products))

	doc, err := m.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "pdf: generar documento")
	}
	return doc.GetBytes(), nil
}

func headerRow(meta usecase.InventoryReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(meta.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Filtros: "+meta.Filters, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Fecha: "+meta.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Generado por: "+nonEmpty(meta.GeneratedBy, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Referencia", 2, align.Left),
		h("Cor", 1, align.Left),
		h("X", 1, align.Right),
		h("Y", 1, align.Right),
		h("Rack", 1, align.Center),
		h("Acabado", 2, align.Left),
		h("Marc.", 1, align.Center),
		h("Obs.", 3, align.Left),
	)
}

// tableRows una fila por producto, con fondo alterno.
func tableRows(products []*entity.Product) []core.Row {
	rows := make([]core.Row, 0, len(products))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for i, p := range products {
		marked := ""
		if p.Marked {
			marked = "Sí"
		}
		r := row.New(7).Add(
			cell(p.Referencia, 2, align.Left),
			cell(nonEmpty(p.Cor, "-"), 1, align.Left),
			cell(p.X.StringFixed(3), 1, align.Right),
			cell(p.Y.StringFixed(3), 1, align.Right),
			cell(nonEmpty(p.Rack, "-"), 1, align.Center),
			cell(nonEmpty(p.Acab, "-"), 2, align.Left),
			cell(marked, 1, align.Center),
			cell(truncate(p.Obs, 60), 3, align.Left),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		rows = append(rows, r)
	}
	return rows
}

func totalsRow(products []*entity.Product) core.Row {
	marked := 0
	for _, p := range products {
		if p.Marked {
			marked++
		}
	}
	return row.New(10).Add(
		col.New(6),
		col.New(6).Add(
			text.New(fmt.Sprintf("Productos: %d   |   Marcados: %d", len(products), marked), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// truncate corta s a n runas añadiendo "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
