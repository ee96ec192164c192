package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var userCols = []string{"id", "email", "password_hash", "role", "created_at"}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	u := &entity.User{ID: "u1", Email: "ana@example.com", PasswordHash: "h", Role: entity.RoleEditor, CreatedAt: time.Now()}
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash, "editor", u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash, "editor", u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	repo := NewUserRepository(mock)
	require.NoError(t, repo.Create(context.Background(), u))

	err = repo.Create(context.Background(), u)
	assert.True(t, cerrors.Is(err, domain.ErrEmailAlreadyExists))
	assert.True(t, cerrors.Is(err, domain.ErrConflict), "email duplicado es un Conflict")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM users WHERE lower\\(email\\)").
		WithArgs("ANA@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "ana@example.com", "h", "admin", now))
	mock.ExpectQuery("SELECT .+ FROM users WHERE lower\\(email\\)").
		WithArgs("nadie@example.com").
		WillReturnRows(pgxmock.NewRows(userCols))

	repo := NewUserRepository(mock)
	u, err := repo.GetByEmail(context.Background(), "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	_, err = repo.GetByEmail(context.Background(), "nadie@example.com")
	assert.True(t, cerrors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_RolCorruptoNoSeAcepta(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "a@b.c", "h", "superuser", time.Now()))

	_, err = NewUserRepository(mock).GetByID(context.Background(), "u1")
	assert.True(t, cerrors.Is(err, entity.ErrInvalidRole))
}

func TestUserRepo_UpdateRoleDeleteCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("UPDATE users SET role").
		WithArgs("u2", "viewer").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u2", "b@b.c", "h", "viewer", now))
	mock.ExpectQuery("DELETE FROM users").
		WithArgs("u2").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u2", "b@b.c", "h", "viewer", now))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM \\(SELECT id FROM users WHERE role = 'admin' FOR UPDATE\\)").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	repo := NewUserRepository(mock)
	u, err := repo.UpdateRole(context.Background(), "u2", entity.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleViewer, u.Role)

	d, err := repo.Delete(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", d.ID)

	n, err := repo.CountAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_CommitYRollback(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectCommit()

		var count int
		err = NewTxRunner(mock).RunIdentity(context.Background(), func(users repository.UserRepository) error {
			var err error
			count, err = users.CountAdmins(context.Background())
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback si fn falla", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = NewTxRunner(mock).RunIdentity(context.Background(), func(repository.UserRepository) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepo_GetByIDNoUUIDEsNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("abc").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err = NewUserRepository(mock).GetByID(context.Background(), "abc")
	assert.True(t, cerrors.Is(err, domain.ErrNotFound))
	assert.False(t, cerrors.Is(err, domain.ErrStoreUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}
