package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/mutation"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/policy"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// UserUseCase administración de identidades (solo admin).
// Cambio de rol y borrado corren en una transacción que cuenta los admins.
type UserUseCase struct {
	repo     repository.UserRepository
	tx       IdentityTxRunner
	pipeline *mutation.Pipeline
	now      func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia y el runner transaccional.
func NewUserUseCase(repo repository.UserRepository, tx IdentityTxRunner, pipeline *mutation.Pipeline) *UserUseCase {
	return &UserUseCase{repo: repo, tx: tx, pipeline: pipeline, now: time.Now}
}

func userSnapshot(u *entity.User) any { return u.Snapshot() }

// List lista usuarios, más recientes primero.
func (uc *UserUseCase) List(ctx context.Context, claim *entity.Claim) ([]dto.UserResponse, error) {
	if err := policy.Authorize(claim, policy.ActionRead, policy.ResourceUser); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return items, nil
}

// Create da de alta una identidad con cualquier rol.
func (uc *UserUseCase) Create(ctx context.Context, claim *entity.Claim, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, errors.Mark(err, domain.ErrInvalidInput)
	}
	change, err := mutation.Run(ctx, uc.pipeline, claim, mutation.Op[*entity.User]{
		Action:      policy.ActionCreate,
		Resource:    policy.ResourceUser,
		AuditAction: entity.AuditCreate,
		Entity:      entity.EntityUser,
		Apply: func(ctx context.Context, _ *entity.User) (mutation.Change[*entity.User], error) {
			user, err := auth.NewUser(in.Email, in.Password, role, uc.now())
			if err != nil {
				return mutation.Change[*entity.User]{}, err
			}
			if err := uc.repo.Create(ctx, user); err != nil {
				return mutation.Change[*entity.User]{}, err
			}
			return mutation.Change[*entity.User]{After: user}, nil
		},
		ID:       func(u *entity.User) string { return u.ID },
		Snapshot: userSnapshot,
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(change.After), nil
}

// UpdateRole cambia el rol de otra identidad. Nunca el propio ni degradar al último admin.
func (uc *UserUseCase) UpdateRole(ctx context.Context, claim *entity.Claim, id string, in dto.UpdateUserRoleRequest) (*dto.UserResponse, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, errors.Mark(err, domain.ErrInvalidInput)
	}
	change, err := mutation.Run(ctx, uc.pipeline, claim, mutation.Op[*entity.User]{
		Action:      policy.ActionUpdate,
		Resource:    policy.ResourceUser,
		AuditAction: entity.AuditUpdate,
		Entity:      entity.EntityUser,
		EntityID:    id,
		Guard:       notSelf(id, "no puede cambiar su propio rol"),
		Apply: func(ctx context.Context, _ *entity.User) (mutation.Change[*entity.User], error) {
			var change mutation.Change[*entity.User]
			err := uc.tx.RunIdentity(ctx, func(users repository.UserRepository) error {
				target, err := users.GetByID(ctx, id)
				if err != nil {
					return err
				}
				admins, err := users.CountAdmins(ctx)
				if err != nil {
					return err
				}
				if err := policy.CheckRoleChange(*claim, target, role, admins); err != nil {
					return err
				}
				updated, err := users.UpdateRole(ctx, id, role)
				if err != nil {
					return err
				}
				change = mutation.Change[*entity.User]{Before: target, After: updated}
				return nil
			})
			return change, err
		},
		Snapshot: userSnapshot,
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(change.After), nil
}

// Delete elimina otra identidad. Nunca a sí mismo ni al último admin.
func (uc *UserUseCase) Delete(ctx context.Context, claim *entity.Claim, id string) error {
	_, err := mutation.Run(ctx, uc.pipeline, claim, mutation.Op[*entity.User]{
		Action:      policy.ActionDelete,
		Resource:    policy.ResourceUser,
		AuditAction: entity.AuditDelete,
		Entity:      entity.EntityUser,
		EntityID:    id,
		Guard:       notSelf(id, "no puede eliminarse a sí mismo"),
		Apply: func(ctx context.Context, _ *entity.User) (mutation.Change[*entity.User], error) {
			var change mutation.Change[*entity.User]
			err := uc.tx.RunIdentity(ctx, func(users repository.UserRepository) error {
				target, err := users.GetByID(ctx, id)
				if err != nil {
					return err
				}
				admins, err := users.CountAdmins(ctx)
				if err != nil {
					return err
				}
				if err := policy.CheckIdentityDelete(*claim, target, admins); err != nil {
					return err
				}
				deleted, err := users.Delete(ctx, id)
				if err != nil {
					return err
				}
				change = mutation.Change[*entity.User]{Before: deleted}
				return nil
			})
			return change, err
		},
		Snapshot: userSnapshot,
	})
	return err
}

// notSelf rechaza antes de tocar la DB cuando el objetivo es el propio actor.
func notSelf(targetID, msg string) func(entity.Claim) error {
	return func(c entity.Claim) error {
		if c.UserID == targetID {
			return errors.Wrap(domain.ErrForbidden, msg)
		}
		return nil
	}
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
