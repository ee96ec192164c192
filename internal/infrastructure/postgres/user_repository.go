package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = "id, email, password_hash, role, created_at"

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u    entity.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := entity.ParseRole(role)
	if err != nil {
		// el CHECK de la tabla lo impide; si aparece es corrupción de datos
		return nil, errors.Wrapf(err, "usuario %s", u.ID)
	}
	u.Role = parsed
	return &u, nil
}

// Create persiste un nuevo usuario. Email duplicado -> ErrEmailAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return storeErr(err, "insert user")
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, storeErr(err, "get user by id")
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (comparación sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email))
	if err != nil {
		return nil, storeErr(err, "get user by email")
	}
	return u, nil
}

// List lista usuarios, más recientes primero.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, storeErr(err, "list users")
	}
	defer rows.Close()
	list := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeErr(err, "scan user")
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "list users")
	}
	return list, nil
}

// UpdateRole actualiza el rol y devuelve la fila resultante.
func (r *UserRepo) UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error) {
	query := `UPDATE users SET role = $2 WHERE id = $1 RETURNING ` + userColumns
	u, err := scanUser(r.q.QueryRow(ctx, query, id, string(role)))
	if err != nil {
		return nil, storeErr(err, "update user role")
	}
	return u, nil
}

// Delete elimina un usuario por ID y devuelve la fila borrada.
func (r *UserRepo) Delete(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
	if err != nil {
		return nil, storeErr(err, "delete user")
	}
	return u, nil
}

// CountAdmins cuenta los admins bloqueando sus filas (FOR UPDATE) para que, dentro de una tx,
// la verificación del último admin y la escritura vean el mismo estado.
func (r *UserRepo) CountAdmins(ctx context.Context) (int, error) {
	query := `SELECT count(*) FROM (SELECT id FROM users WHERE role = 'admin' FOR UPDATE) AS admins`
	var n int
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, storeErr(err, "count admins")
	}
	return n, nil
}
