package domain

import "github.com/cockroachdb/errors"

// Errores de dominio. Las capas superiores envuelven con errors.Wrap y comparan con errors.Is.
var (
	// ErrUnauthenticated cubre credencial ausente, malformada, inválida o expirada: no se distingue el motivo.
	ErrUnauthenticated = errors.New("no autenticado")
	// ErrForbidden identidad válida con rol insuficiente o regla de auto-protección violada.
	ErrForbidden          = errors.New("acceso denegado")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrEmailAlreadyExists = errors.Wrap(ErrConflict, "el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	// ErrStoreUnavailable fallo de infraestructura en la ruta principal; fatal para la petición.
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
	// ErrAuditFailure nunca llega al cliente; solo se observa en logs y métricas.
	ErrAuditFailure = errors.New("fallo al registrar auditoría")
)
