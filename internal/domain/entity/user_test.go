package entity_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

func TestParseRole(t *testing.T) {
	cases := map[string]entity.Role{
		"viewer":  entity.RoleViewer,
		"editor":  entity.RoleEditor,
		"admin":   entity.RoleAdmin,
		" Admin ": entity.RoleAdmin,
	}
	for in, want := range cases {
		got, err := entity.ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "root", "bodeguero", "admins"} {
		_, err := entity.ParseRole(in)
		assert.True(t, errors.Is(err, entity.ErrInvalidRole), "%q debe ser inválido", in)
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, entity.RoleEditor.Valid())
	assert.False(t, entity.Role("superuser").Valid())
	assert.False(t, entity.Role("").Valid())
}

func TestUserSnapshot_SinPasswordHash(t *testing.T) {
	u := &entity.User{ID: "u1", Email: "a@b.c", PasswordHash: "$2a$...", Role: entity.RoleAdmin, CreatedAt: time.Unix(0, 0)}
	s := u.Snapshot()
	assert.Equal(t, "u1", s.ID)
	assert.Equal(t, entity.RoleAdmin, s.Role)

	var nilUser *entity.User
	assert.Nil(t, nilUser.Snapshot())
}

func TestClaim_SnapshotCongelado(t *testing.T) {
	c := entity.Claim{UserID: "u1", Email: "a@b.c", Role: entity.RoleEditor}
	snap := c.Snapshot()
	c.Role = entity.RoleAdmin
	c.Email = "otro@b.c"
	assert.Equal(t, entity.RoleEditor, snap.Role)
	assert.Equal(t, "a@b.c", snap.Email)
}
