package postgres

import (
	"context"
	"embed"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/inventory-manager/pkg/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations aplica las migraciones embebidas con goose sobre el mismo pool de la app.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Wrap(err, "aplicar migraciones")
	}
	return nil
}

// ApplyCatalogPolicy crea o quita el índice único sobre products.referencia según la configuración.
// Con datos duplicados previos la creación falla y se devuelve el error; la unicidad sigue
// verificándose en el caso de uso.
func ApplyCatalogPolicy(ctx context.Context, q Querier, uniqueReferencia bool) error {
	stmt := `DROP INDEX IF EXISTS products_referencia_key`
	if uniqueReferencia {
		stmt = `CREATE UNIQUE INDEX IF NOT EXISTS products_referencia_key ON products (referencia)`
	}
	if _, err := q.Exec(ctx, stmt); err != nil {
		return storeErr(err, "catalog policy")
	}
	return nil
}

// gooseLogger adapta zerolog a la interfaz goose.Logger.
type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal().Msgf(format, v...)
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info().Str("component", "goose").Msgf(format, v...)
}
