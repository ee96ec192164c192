package http

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindJSON parsea el cuerpo y aplica las etiquetas validate del DTO.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, "cuerpo inválido")
	}
	return validateStruct(out)
}

// bindQuery parsea la query string y aplica las etiquetas validate del DTO.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, "parámetros de consulta inválidos")
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s (%s=%s)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return errors.Wrapf(domain.ErrInvalidInput, "campos inválidos: %s", strings.Join(fields, ", "))
}
