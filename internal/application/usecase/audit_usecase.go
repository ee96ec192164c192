package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/policy"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

const (
	defaultAuditLimit = 10
	maxAuditLimit     = 100
)

// AuditUseCase consulta del historial. Solo lectura; vive fuera de la ruta de mutación.
type AuditUseCase struct {
	repo repository.AuditRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// List devuelve entradas más recientes primero. limit por defecto 10, máximo 100.
func (uc *AuditUseCase) List(ctx context.Context, claim *entity.Claim, q dto.AuditListQuery) ([]dto.AuditLogResponse, error) {
	if err := policy.Authorize(claim, policy.ActionRead, policy.ResourceAuditLog); err != nil {
		return nil, err
	}
	filter := entity.AuditFilter{
		Entity:   q.Entity,
		EntityID: q.EntityID,
		UserID:   q.UserID,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if q.Day != "" {
		day, err := time.ParseInLocation("2006-01-02", q.Day, time.UTC)
		if err != nil {
			return nil, errors.Wrap(domain.ErrInvalidInput, "day debe tener formato YYYY-MM-DD")
		}
		filter.Day = &day
	}
	if q.Action != "" {
		action := entity.AuditAction(q.Action)
		if !action.Valid() {
			return nil, errors.Wrap(domain.ErrInvalidInput, "action debe ser CREATE, UPDATE o DELETE")
		}
		filter.Action = action
	}

	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.AuditLogResponse{
			ID:          e.ID,
			UserID:      e.Actor.UserID,
			UserEmail:   e.Actor.Email,
			UserRole:    string(e.Actor.Role),
			Action:      string(e.Action),
			Entity:      e.Entity,
			EntityID:    e.EntityID,
			BeforeState: e.BeforeState,
			AfterState:  e.AfterState,
			CreatedAt:   e.CreatedAt,
		})
	}
	return items, nil
}
