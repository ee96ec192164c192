package postgres

import (
	"context"

	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ usecase.IdentityTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db Beginner
}

// NewTxRunner construye el runner con el pool (o un mock que implemente Begin).
func NewTxRunner(db Beginner) *TxRunner {
	return &TxRunner{db: db}
}

// RunIdentity inicia una transacción, ejecuta fn con el repo de usuarios atado a la tx y hace Commit o Rollback.
func (r *TxRunner) RunIdentity(ctx context.Context, fn func(users repository.UserRepository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeErr(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewUserRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr(err, "commit transaction")
	}
	return nil
}
