// Package policy contiene la tabla estática de permisos por rol y las
// invariantes de mutación de identidades. Funciones puras: no tocan la DB.
package policy

import (
	"github.com/cockroachdb/errors"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// Action operación sobre un recurso.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource tipo de recurso protegido.
type Resource string

const (
	ResourceProduct  Resource = "product"
	ResourceUser     Resource = "user"
	ResourceAuditLog Resource = "audit_log"
)

type rule struct {
	action   Action
	resource Resource
}

var (
	allRoles  = []entity.Role{entity.RoleViewer, entity.RoleEditor, entity.RoleAdmin}
	writers   = []entity.Role{entity.RoleEditor, entity.RoleAdmin}
	adminOnly = []entity.Role{entity.RoleAdmin}
)

// table: (acción, recurso) -> roles permitidos. Lo que no aparece se deniega.
var table = map[rule][]entity.Role{
	{ActionRead, ResourceProduct}:   allRoles,
	{ActionCreate, ResourceProduct}: writers,
	{ActionUpdate, ResourceProduct}: writers,
	{ActionDelete, ResourceProduct}: adminOnly,

	{ActionRead, ResourceUser}:   adminOnly,
	{ActionCreate, ResourceUser}: adminOnly,
	{ActionUpdate, ResourceUser}: adminOnly,
	{ActionDelete, ResourceUser}: adminOnly,

	{ActionRead, ResourceAuditLog}: adminOnly,
}

// Authorize decide si el claim puede ejecutar action sobre resource.
// Sin claim (o con un rol fuera del enum) devuelve ErrUnauthenticated; rol insuficiente, ErrForbidden.
func Authorize(claim *entity.Claim, action Action, resource Resource) error {
	if claim == nil || claim.UserID == "" || !claim.Role.Valid() {
		return domain.ErrUnauthenticated
	}
	for _, r := range table[rule{action, resource}] {
		if r == claim.Role {
			return nil
		}
	}
	return errors.Wrapf(domain.ErrForbidden, "%s no puede %s %s", claim.Role, action, resource)
}

// Allowed versión booleana de Authorize.
func Allowed(role entity.Role, action Action, resource Resource) bool {
	return Authorize(&entity.Claim{UserID: "-", Role: role}, action, resource) == nil
}

// CheckRoleChange un actor nunca cambia su propio rol, y el último admin no puede ser degradado.
func CheckRoleChange(actor entity.Claim, target *entity.User, newRole entity.Role, adminCount int) error {
	if !newRole.Valid() {
		return errors.Wrap(domain.ErrInvalidInput, "rol inválido")
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if actor.UserID == target.ID {
		return errors.Wrap(domain.ErrForbidden, "no puede cambiar su propio rol")
	}
	if target.Role == entity.RoleAdmin && newRole != entity.RoleAdmin && adminCount <= 1 {
		return errors.Wrap(domain.ErrForbidden, "no se puede degradar al último administrador")
	}
	return nil
}

// CheckIdentityDelete un actor nunca se borra a sí mismo ni borra al último admin.
func CheckIdentityDelete(actor entity.Claim, target *entity.User, adminCount int) error {
	if target == nil {
		return domain.ErrNotFound
	}
	if actor.UserID == target.ID {
		return errors.Wrap(domain.ErrForbidden, "no puede eliminarse a sí mismo")
	}
	if target.Role == entity.RoleAdmin && adminCount <= 1 {
		return errors.Wrap(domain.ErrForbidden, "no se puede eliminar al último administrador")
	}
	return nil
}
