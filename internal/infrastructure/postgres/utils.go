package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventory-manager/internal/domain"
)

// Querier es lo común entre *pgxpool.Pool, pgx.Tx y pgxmock: los repos funcionan con cualquiera.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner abre transacciones (pool real o pgxmock).
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// psql builder de squirrel con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isInvalidText 22P02: el valor no se puede convertir al tipo de la columna (p. ej. un id que no es UUID).
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.InvalidTextRepresentation
	}
	return false
}

// storeErr clasifica errores del driver: sin filas o id con formato imposible (22P02) -> NotFound,
// 23505 -> Conflict, contexto cancelado se propaga tal cual, el resto -> StoreUnavailable.
func storeErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case isNoRows(err), isInvalidText(err):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return errors.Wrap(domain.ErrConflict, op)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, op)
	default:
		return errors.Mark(errors.Wrap(err, op), domain.ErrStoreUnavailable)
	}
}
