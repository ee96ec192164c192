package repository

import (
	"context"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Cada escritura es atómica a nivel de fila. Update y Delete devuelven el estado
// resultante de la sentencia (RETURNING); la fila previa la obtiene el llamador con GetByID.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) (*entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByReferencia(ctx context.Context, referencia string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) (*entity.Product, error)
	Delete(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
}
