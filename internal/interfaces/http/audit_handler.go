package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
)

// AuditHandler consulta del historial de cambios.
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Historial de cambios
// @Description  Más recientes primero. Solo admin.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        limit      query  int     false  "Límite (defecto 10, máx 100)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Param        day        query  string  false  "Día UTC (YYYY-MM-DD)"
// @Param        action     query  string  false  "CREATE | UPDATE | DELETE"
// @Param        entity     query  string  false  "product | user"
// @Param        entity_id  query  string  false  "ID de la entidad"
// @Param        user_id    query  string  false  "ID del actor"
// @Success      200  {array}   dto.AuditLogResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var q dto.AuditListQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.List(c.UserContext(), GetClaim(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
