package entity

import (
	"encoding/json"
	"time"
)

// AuditAction tipo de mutación auditada.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// Valid informa si la acción pertenece al enum.
func (a AuditAction) Valid() bool {
	return a == AuditCreate || a == AuditUpdate || a == AuditDelete
}

// Nombres de entidad auditados.
const (
	EntityProduct = "product"
	EntityUser    = "user"
)

// ActorSnapshot identidad del actor congelada al escribir; no sigue cambios posteriores del usuario.
type ActorSnapshot struct {
	UserID string
	Email  string
	Role   Role
}

// AuditEntry registro append-only de una mutación. Nunca se modifica ni se borra.
// BeforeState es nil en CREATE; AfterState es nil en DELETE.
type AuditEntry struct {
	ID          string
	Actor       ActorSnapshot
	Action      AuditAction
	Entity      string
	EntityID    string
	BeforeState json.RawMessage
	AfterState  json.RawMessage
	CreatedAt   time.Time
}

// AuditFilter criterios de consulta del historial (solo lectura, fuera de la ruta de mutación).
type AuditFilter struct {
	Day      *time.Time // día calendario (UTC)
	Action   AuditAction
	Entity   string
	EntityID string
	UserID   string
	Limit    int
	Offset   int
}
