package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/mutation"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/policy"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Toda escritura pasa por el pipeline de mutación.
type ProductUseCase struct {
	repo             repository.ProductRepository
	pipeline         *mutation.Pipeline
	uniqueReferencia bool
	now              func() time.Time
}

// NewProductUseCase construye el caso de uso. Con uniqueReferencia, crear o renombrar a una
// referencia existente devuelve ErrConflict.
func NewProductUseCase(repo repository.ProductRepository, pipeline *mutation.Pipeline, uniqueReferencia bool) *ProductUseCase {
	return &ProductUseCase{repo: repo, pipeline: pipeline, uniqueReferencia: uniqueReferencia, now: time.Now}
}

// List lista productos con filtros opcionales, más recientes primero.
func (uc *ProductUseCase) List(ctx context.Context, claim *entity.Claim, q dto.ProductListQuery) ([]dto.ProductResponse, error) {
	list, err := uc.ListEntities(ctx, claim, q)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// ListEntities igual que List pero devuelve entidades (lo usa el reporte PDF).
func (uc *ProductUseCase) ListEntities(ctx context.Context, claim *entity.Claim, q dto.ProductListQuery) ([]*entity.Product, error) {
	if err := policy.Authorize(claim, policy.ActionRead, policy.ResourceProduct); err != nil {
		return nil, err
	}
	filter := entity.ProductFilter{
		Referencia: strings.TrimSpace(q.Referencia),
		Cor:        q.Cor,
		Rack:       q.Rack,
		Acab:       q.Acab,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.Marked != "" {
		marked, err := strconv.ParseBool(q.Marked)
		if err != nil {
			return nil, errors.Wrap(domain.ErrInvalidInput, "marked debe ser true o false")
		}
		filter.Marked = &marked
	}
	return uc.repo.List(ctx, filter)
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, claim *entity.Claim, id string) (*dto.ProductResponse, error) {
	if err := policy.Authorize(claim, policy.ActionRead, policy.ResourceProduct); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Create crea un nuevo producto y audita el estado resultante.
func (uc *ProductUseCase) Create(ctx context.Context, claim *entity.Claim, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validReferencia(in.Referencia); err != nil {
		return nil, err
	}
	if err := validDimensions(in.X, in.Y); err != nil {
		return nil, err
	}
	change, err := mutation.Run(ctx, uc.pipeline, claim, mutation.Op[*entity.Product]{
		Action:      policy.ActionCreate,
		Resource:    policy.ResourceProduct,
		AuditAction: entity.AuditCreate,
		Entity:      entity.EntityProduct,
		Apply: func(ctx context.Context, _ *entity.Product) (mutation.Change[*entity.Product], error) {
			referencia := strings.TrimSpace(in.Referencia)
			if err := uc.checkReferencia(ctx, referencia, ""); err != nil {
				return mutation.Change[*entity.Product]{}, err
			}
			now := uc.now().UTC()
			created, err := uc.repo.Create(ctx, &entity.Product{
				ID:         uuid.New().String(),
				Referencia: referencia,
				Cor:        in.Cor,
				X:          in.X,
				Y:          in.Y,
				Rack:       in.Rack,
				Acab:       in.Acab,
				Obs:        in.Obs,
				Marked:     in.Marked,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			return mutation.Change[*entity.Product]{After: created}, err
		},
		ID: func(p *entity.Product) string { return p.ID },
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(change.After), nil
}

// Update aplica los campos presentes sobre el estado actual. Antes y después quedan en la auditoría.
func (uc *ProductUseCase) Update(ctx context.Context, claim *entity.Claim, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Referencia != nil {
		if err := validReferencia(*in.Referencia); err != nil {
			return nil, err
		}
	}
	if in.X != nil || in.Y != nil {
		x, y := decimal.Zero, decimal.Zero
		if in.X != nil {
			x = *in.X
		}
		if in.Y != nil {
			y = *in.Y
		}
		if err := validDimensions(x, y); err != nil {
			return nil, err
		}
	}
	change, err := mutation.Run(ctx, uc.pipeline, claim, mutation.Op[*entity.Product]{
		Action:      policy.ActionUpdate,
		Resource:    policy.ResourceProduct,
		AuditAction: entity.AuditUpdate,
		Entity:      entity.EntityProduct,
		EntityID:    id,
		Fetch: func(ctx context.Context) (*entity.Product, error) {
			return uc.repo.GetByID(ctx, id)
		},
		Apply: func(ctx context.Context, prior *entity.Product) (mutation.Change[*entity.Product], error) {
			next := applyProductUpdate(prior.Clone(), in)
			if next.Referencia != prior.Referencia {
				if err := uc.checkReferencia(ctx, next.Referencia, id); err != nil {
					return mutation.Change[*entity.Product]{}, err
				}
			}
			next.UpdatedAt = uc.now().UTC()
			updated, err := uc.repo.Update(ctx, next)
			return mutation.Change[*entity.Product]{Before: prior, After: updated}, err
		},
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(change.After), nil
}

// Delete elimina un producto por ID. El estado borrado queda en la auditoría.
func (uc *ProductUseCase) Delete(ctx context.Context, claim *entity.Claim, id string) error {
	_, err := mutation.Run(ctx, uc.pipeline, claim, mutation.Op[*entity.Product]{
		Action:      policy.ActionDelete,
		Resource:    policy.ResourceProduct,
		AuditAction: entity.AuditDelete,
		Entity:      entity.EntityProduct,
		EntityID:    id,
		Fetch: func(ctx context.Context) (*entity.Product, error) {
			return uc.repo.GetByID(ctx, id)
		},
		Apply: func(ctx context.Context, _ *entity.Product) (mutation.Change[*entity.Product], error) {
			deleted, err := uc.repo.Delete(ctx, id)
			return mutation.Change[*entity.Product]{Before: deleted}, err
		},
	})
	return err
}

// checkReferencia con la política de unicidad activa, otra fila con la misma referencia es conflicto.
func (uc *ProductUseCase) checkReferencia(ctx context.Context, referencia, selfID string) error {
	if !uc.uniqueReferencia {
		return nil
	}
	existing, err := uc.repo.GetByReferencia(ctx, referencia)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return errors.Wrapf(domain.ErrConflict, "la referencia %q ya existe", referencia)
	}
	return nil
}

func applyProductUpdate(p *entity.Product, in dto.UpdateProductRequest) *entity.Product {
	if in.Referencia != nil {
		p.Referencia = strings.TrimSpace(*in.Referencia)
	}
	if in.Cor != nil {
		p.Cor = *in.Cor
	}
	if in.X != nil {
		p.X = *in.X
	}
	if in.Y != nil {
		p.Y = *in.Y
	}
	if in.Rack != nil {
		p.Rack = *in.Rack
	}
	if in.Acab != nil {
		p.Acab = *in.Acab
	}
	if in.Obs != nil {
		p.Obs = *in.Obs
	}
	if in.Marked != nil {
		p.Marked = *in.Marked
	}
	return p
}

// maxDimension límite de NUMERIC(12,3).
var maxDimension = decimal.New(1, 9)

// validReferencia la referencia se guarda recortada; solo espacios equivale a vacía.
func validReferencia(referencia string) error {
	if strings.TrimSpace(referencia) == "" {
		return errors.Wrap(domain.ErrInvalidInput, "referencia no puede estar vacía")
	}
	return nil
}

func validDimensions(x, y decimal.Decimal) error {
	for _, d := range []decimal.Decimal{x, y} {
		if d.IsNegative() || d.GreaterThanOrEqual(maxDimension) {
			return errors.Wrap(domain.ErrInvalidInput, "x e y deben estar entre 0 y 999999999.999")
		}
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:         p.ID,
		Referencia: p.Referencia,
		Cor:        p.Cor,
		X:          p.X,
		Y:          p.Y,
		Rack:       p.Rack,
		Acab:       p.Acab,
		Obs:        p.Obs,
		Marked:     p.Marked,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
