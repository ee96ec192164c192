// import_products carga un catálogo CSV (por defecto ';' y Latin-1) como productos nuevos.
// Cada fila pasa por el mismo pipeline que la API, así que queda auditada con el actor indicado.
//
// Uso: go run ./cmd/import_products -file catalogo.csv -as admin@empresa.com [-sep ,] [-utf8] [-workers 4]
package main

import (
	"context"
	"flag"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventory-manager/internal/application/audit"
	"github.com/jhoicas/inventory-manager/internal/application/mutation"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/csvimport"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func main() {
	file := flag.String("file", "", "ruta del CSV")
	as := flag.String("as", "", "email del usuario (editor o admin) que firma la importación")
	sep := flag.String("sep", ";", "separador de columnas")
	utf8 := flag.Bool("utf8", false, "el archivo ya está en UTF-8")
	workers := flag.Int("workers", 4, "inserciones concurrentes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Format: cfg.App.LogFormat}).Named("import_products")

	if *file == "" || *as == "" || len([]rune(*sep)) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, rowErrs, err := csvimport.Read(f, csvimport.Options{Separator: []rune(*sep)[0], Latin1: !*utf8})
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	for _, re := range rowErrs {
		log.Warn().Int("line", re.Line).Err(re.Err).Msg("fila descartada")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	actor, err := postgres.NewUserRepository(pool).GetByEmail(ctx, *as)
	if err != nil {
		log.Fatal().Err(err).Str("email", *as).Msg("usuario de importación")
	}
	claim := &entity.Claim{UserID: actor.ID, Email: actor.Email, Role: actor.Role}

	pipeline := mutation.New(audit.NewRecorder(postgres.NewAuditRepository(pool)), nil, log, cfg.Audit.Timeout)
	products := usecase.NewProductUseCase(postgres.NewProductRepository(pool), pipeline, cfg.Catalog.UniqueReferencia)

	start := time.Now()
	var created, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, row := range rows {
		g.Go(func() error {
			if _, err := products.Create(gctx, claim, row.Product); err != nil {
				failed.Add(1)
				log.Warn().Int("line", row.Line).Str("referencia", row.Product.Referencia).Err(err).Msg("fila no importada")
				return nil
			}
			created.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	pipeline.Wait()

	log.Info().
		Int64("creados", created.Load()).
		Int64("fallidos", failed.Load()).
		Int("descartados", len(rowErrs)).
		Dur("duracion", time.Since(start)).
		Msg("importación terminada")
	if failed.Load() > 0 || len(rowErrs) > 0 {
		os.Exit(1)
	}
}
