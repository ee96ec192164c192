package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// ReportUseCase genera el reporte de inventario con los mismos filtros que el listado.
type ReportUseCase struct {
	products *ProductUseCase
	gen      ReportGenerator
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(products *ProductUseCase, gen ReportGenerator) *ReportUseCase {
	return &ReportUseCase{products: products, gen: gen, now: time.Now}
}

// InventoryPDF cualquier rol con lectura de productos puede descargarlo.
func (uc *ReportUseCase) InventoryPDF(ctx context.Context, claim *entity.Claim, q dto.ProductListQuery) ([]byte, error) {
	list, err := uc.products.ListEntities(ctx, claim, q)
	if err != nil {
		return nil, err
	}
	meta := InventoryReport{
		Title:       "Inventario de productos",
		GeneratedBy: claim.Email,
		GeneratedAt: uc.now(),
		Filters:     describeFilters(q),
	}
	doc, err := uc.gen.GenerateInventoryReport(ctx, meta, list)
	if err != nil {
		return nil, errors.Wrap(err, "generar reporte de inventario")
	}
	return doc, nil
}

func describeFilters(q dto.ProductListQuery) string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	add("referencia", q.Referencia)
	add("cor", q.Cor)
	add("rack", q.Rack)
	add("acab", q.Acab)
	add("marked", q.Marked)
	if len(parts) == 0 {
		return "sin filtros"
	}
	return strings.Join(parts, ", ")
}
