package auth

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventory-manager/internal/application/audit"
	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
	"github.com/jhoicas/inventory-manager/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuditSink registro best-effort de mutaciones (lo implementa mutation.Pipeline).
type AuditSink interface {
	Audit(ctx context.Context, e audit.Entry)
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo         repository.UserRepository
	jwtCfg           JWTConfig
	openRegistration bool
	audit            AuditSink
	now              func() time.Time
	// dummyHash iguala el coste de login para emails inexistentes.
	dummyHash []byte
}

// NewAuthUseCase construye el caso de uso de auth. Con openRegistration en false el
// auto-registro solo acepta el rol viewer.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, openRegistration bool, sink AuditSink) *AuthUseCase {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("inventory-manager/dummy"), bcrypt.DefaultCost)
	return &AuthUseCase{
		userRepo:         userRepo,
		jwtCfg:           jwtCfg,
		openRegistration: openRegistration,
		audit:            sink,
		now:              time.Now,
		dummyHash:        dummy,
	}
}

// RegisterUser crea un usuario: valida el rol, hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, errors.Mark(err, domain.ErrInvalidInput)
	}
	if !uc.openRegistration && role != entity.RoleViewer {
		return nil, errors.Wrap(domain.ErrForbidden, "el auto-registro solo crea viewers")
	}
	user, err := NewUser(in.Email, in.Password, role, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Audit(ctx, audit.Entry{
			Actor:    entity.ActorSnapshot{UserID: user.ID, Email: user.Email, Role: user.Role},
			Action:   entity.AuditCreate,
			Entity:   entity.EntityUser,
			EntityID: user.ID,
			After:    user.Snapshot(),
		})
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email desconocido y password incorrecta producen exactamente el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(in.Password))
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, string(user.Role), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, errors.Wrap(err, "firmar token")
	}
	return &dto.LoginResponse{
		Token: token,
		User:  dto.SessionUser{ID: user.ID, Email: user.Email, Role: string(user.Role)},
	}, nil
}

// Me devuelve la identidad contenida en el claim, sin consultar la DB.
func (uc *AuthUseCase) Me(claim *entity.Claim) (*dto.SessionUser, error) {
	if claim == nil {
		return nil, domain.ErrUnauthenticated
	}
	return &dto.SessionUser{ID: claim.UserID, Email: claim.Email, Role: string(claim.Role)}, nil
}

// NewUser construye una identidad nueva con el password hasheado. Email se normaliza a minúsculas.
func NewUser(email, password string, role entity.Role, now time.Time) (*entity.User, error) {
	if !role.Valid() {
		return nil, errors.Mark(errors.Wrapf(entity.ErrInvalidRole, "%q", role), domain.ErrInvalidInput)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.Wrap(domain.ErrInvalidInput, "email y password son obligatorios")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errors.Wrap(domain.ErrInvalidInput, "password demasiado largo")
		}
		return nil, errors.Wrap(err, "hash de password")
	}
	return &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now.UTC(),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
