package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// IdentityTxRunner ejecuta fn dentro de una transacción: el conteo de admins y la escritura
// ven el mismo estado. Si fn devuelve error se hace rollback.
type IdentityTxRunner interface {
	RunIdentity(ctx context.Context, fn func(users repository.UserRepository) error) error
}

// InventoryReport metadatos de cabecera del reporte.
type InventoryReport struct {
	Title       string
	GeneratedBy string
	GeneratedAt time.Time
	Filters     string
}

// ReportGenerator renderiza el listado de productos como documento (PDF).
type ReportGenerator interface {
	GenerateInventoryReport(ctx context.Context, meta InventoryReport, products []*entity.Product) ([]byte, error)
}
