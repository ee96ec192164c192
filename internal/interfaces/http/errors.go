package http

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain"
)

// Cuerpos fijos: no revelan el motivo concreto ni dependen del rol.
var (
	errUnauthenticated = dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "no autenticado"}
	errForbidden       = dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	errNotFound        = dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	errEmailExists     = dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"}
	errConflict        = dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"}
	errUnavailable     = dto.ErrorResponse{Code: "UNAVAILABLE", Message: "servicio no disponible, intente más tarde"}
	errInternal        = dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
)

// writeError traduce errores de dominio a status HTTP. El texto interno de los errores
// inesperados se registra en el log y nunca se devuelve al cliente.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(errUnauthenticated)
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(errForbidden)
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errNotFound)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(errEmailExists)
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(errConflict)
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		loggerFrom(c).Error().Err(err).Str("path", c.Path()).Msg("almacenamiento no disponible")
		return c.Status(fiber.StatusServiceUnavailable).JSON(errUnavailable)
	default:
		loggerFrom(c).Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal)
	}
}
