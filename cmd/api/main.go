package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventory-manager/internal/application/audit"
	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/mutation"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventory-manager/internal/infrastructure/pdf"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventory-manager/internal/interfaces/http"
	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:    cfg.App.Env,
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		App:    cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
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
	if err := postgres.ApplyCatalogPolicy(ctx, pool, cfg.Catalog.UniqueReferencia); err != nil {
		log.Fatal().Err(err).Msg("política de catálogo")
	}

	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	collectors := metrics.New("inventory")
	pipeline := mutation.New(audit.NewRecorder(auditRepo), collectors, log, cfg.Audit.Timeout)

	productUC := usecase.NewProductUseCase(productRepo, pipeline, cfg.Catalog.UniqueReferencia)
	reportUC := usecase.NewReportUseCase(productUC, infrapdf.NewMarotoReportGenerator(cfg.App.Name))
	userUC := usecase.NewUserUseCase(userRepo, txRunner, pipeline)
	auditUC := usecase.NewAuditUseCase(auditRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.Auth.OpenRegistration, pipeline)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Inventory Manager API",
		}))
	} else {
		log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		ReportUC:    reportUC,
		UserUC:      userUC,
		AuditUC:     auditUC,
		Verifier:    auth.NewJWTVerifier(cfg.JWT.Secret),
		Logger:      log,
		Metrics:     collectors,
		Ping:        pool.Ping,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Auditorías desacopladas de peticiones canceladas que aún estén en vuelo.
	pipeline.Wait()

	log.Info().Msg("aplicación detenida")
}
