package repository

import (
	"context"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las búsquedas por clave inexistente devuelven domain.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// UpdateRole aplica el nuevo rol y devuelve la fila resultante.
	UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error)
	// Delete borra y devuelve la fila eliminada.
	Delete(ctx context.Context, id string) (*entity.User, error)
	// CountAdmins cuenta los admins; dentro de una tx bloquea sus filas.
	CountAdmins(ctx context.Context) (int, error)
}
