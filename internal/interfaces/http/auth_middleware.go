package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/policy"
)

// LocalClaim clave en c.Locals del claim verificado.
const LocalClaim = "claim"

// AuthMiddleware valida el header Authorization y deja el claim en c.Locals.
// Todos los fallos responden el mismo 401.
func AuthMiddleware(verifier auth.CredentialVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, err := verifier.Verify(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(errUnauthenticated)
		}
		c.Locals(LocalClaim, claim)
		return c.Next()
	}
}

// RequireRole rechaza antes del handler si el rol del claim no permite action sobre resource.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(action policy.Action, resource policy.Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := policy.Authorize(GetClaim(c), action, resource); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}

// GetClaim devuelve el claim del contexto (después del middleware de auth), o nil.
func GetClaim(c *fiber.Ctx) *entity.Claim {
	claim, _ := c.Locals(LocalClaim).(*entity.Claim)
	return claim
}

// GetRole devuelve el rol del claim, o "" sin autenticar.
func GetRole(c *fiber.Ctx) string {
	if claim := GetClaim(c); claim != nil {
		return string(claim.Role)
	}
	return ""
}
