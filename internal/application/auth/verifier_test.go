package auth_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/pkg/jwt"
)

func TestJWTVerifier_Valido(t *testing.T) {
	tok, err := jwt.Generate(testSecret, "u1", "ana@example.com", "editor", "test", 5)
	require.NoError(t, err)

	claim, err := auth.NewJWTVerifier(testSecret).Verify("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, &entity.Claim{UserID: "u1", Email: "ana@example.com", Role: entity.RoleEditor}, claim)
}

func TestJWTVerifier_TodosLosFallosSonIguales(t *testing.T) {
	good, err := jwt.Generate(testSecret, "u1", "a@b.c", "admin", "test", 5)
	require.NoError(t, err)
	expired, err := jwt.Generate(testSecret, "u1", "a@b.c", "admin", "test", -5)
	require.NoError(t, err)
	otherKey, err := jwt.Generate("otra-clave", "u1", "a@b.c", "admin", "test", 5)
	require.NoError(t, err)
	badRole, err := jwt.Generate(testSecret, "u1", "a@b.c", "root", "test", 5)
	require.NoError(t, err)
	noID, err := jwt.Generate(testSecret, "", "a@b.c", "admin", "test", 5)
	require.NoError(t, err)

	cases := map[string]string{
		"sin header":      "",
		"esquema basic":   "Basic " + good,
		"bearer vacío":    "Bearer ",
		"sin esquema":     good,
		"token basura":    "Bearer abc.def.ghi",
		"expirado":        "Bearer " + expired,
		"otra firma":      "Bearer " + otherKey,
		"rol desconocido": "Bearer " + badRole,
		"sin id":          "Bearer " + noID,
	}
	v := auth.NewJWTVerifier(testSecret)
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			claim, err := v.Verify(header)
			assert.Nil(t, claim)
			assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
			assert.Equal(t, domain.ErrUnauthenticated.Error(), err.Error())
		})
	}
}
