package repository

import (
	"context"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// AuditRepository almacén append-only del historial. No expone Update ni Delete.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error)
}
