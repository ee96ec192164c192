package entity

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Role rol cerrado de un usuario. Se valida en cada frontera (registro, cambio de rol, token).
type Role string

// Roles válidos para User.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// ErrInvalidRole el texto no corresponde a ningún rol conocido.
var ErrInvalidRole = errors.New("rol inválido")

// ParseRole convierte un string en Role. No hay rol por defecto: vacío también es inválido.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return r, nil
	default:
		return "", errors.Wrapf(ErrInvalidRole, "%q", s)
	}
}

// Valid informa si el rol pertenece al enum.
func (r Role) Valid() bool {
	return r == RoleViewer || r == RoleEditor || r == RoleAdmin
}

func (r Role) String() string { return string(r) }

// User representa una identidad del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         Role
	CreatedAt    time.Time
}

// Claim campos de identidad derivados de una credencial verificada.
// Se confía en ellos sin volver a consultar la DB.
type Claim struct {
	UserID string
	Email  string
	Role   Role
}

// Snapshot congela el actor para auditoría en el momento de la llamada.
func (c Claim) Snapshot() ActorSnapshot {
	return ActorSnapshot{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// UserSnapshot estado auditable de un usuario (sin password_hash).
type UserSnapshot struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot copia el estado auditable del usuario.
func (u *User) Snapshot() *UserSnapshot {
	if u == nil {
		return nil
	}
	return &UserSnapshot{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
