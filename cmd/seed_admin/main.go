// seed_admin crea el primer administrador a partir de SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD.
// Si el email ya existe no hace nada.
//
// Uso: go run ./cmd/seed_admin
package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jhoicas/inventory-manager/internal/application/audit"
	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/mutation"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Format: cfg.App.LogFormat}).Named("seed_admin")

	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		log.Fatal().Msg("SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD son obligatorios")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.Migrate {
		if err := postgres.RunMigrations(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	users := postgres.NewUserRepository(pool)
	if existing, err := users.GetByEmail(ctx, cfg.Seed.AdminEmail); err == nil {
		log.Info().Str("user_id", existing.ID).Str("role", string(existing.Role)).Msg("el usuario ya existe; nada que hacer")
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Fatal().Err(err).Msg("buscar usuario")
	}

	admin, err := auth.NewUser(cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, entity.RoleAdmin, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("construir admin")
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("crear admin")
	}

	pipeline := mutation.New(audit.NewRecorder(postgres.NewAuditRepository(pool)), nil, log, cfg.Audit.Timeout)
	pipeline.Audit(ctx, audit.Entry{
		Actor:    entity.ActorSnapshot{UserID: admin.ID, Email: admin.Email, Role: admin.Role},
		Action:   entity.AuditCreate,
		Entity:   entity.EntityUser,
		EntityID: admin.ID,
		After:    admin.Snapshot(),
	})
	pipeline.Wait()

	log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("admin creado")
}
