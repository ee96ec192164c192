package auth

import (
	"strings"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/pkg/jwt"
)

// CredentialVerifier convierte el valor del header Authorization en un Claim.
// Cualquier fallo (ausente, formato, firma, expiración, rol desconocido) es ErrUnauthenticated.
type CredentialVerifier interface {
	Verify(authorization string) (*entity.Claim, error)
}

// JWTVerifier verifica tokens HS256 emitidos por Login.
type JWTVerifier struct {
	secret string
}

// NewJWTVerifier construye el verificador con el secreto compartido.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify espera "Bearer <token>".
func (v *JWTVerifier) Verify(authorization string) (*entity.Claim, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := jwt.Parse(v.secret, token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	role, err := entity.ParseRole(claims.Role)
	if err != nil || claims.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &entity.Claim{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}
