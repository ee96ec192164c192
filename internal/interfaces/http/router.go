package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/policy"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/metrics"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	ProductUC *usecase.ProductUseCase
	ReportUC  *usecase.ReportUseCase
	UserUC    *usecase.UserUseCase
	AuditUC   *usecase.AuditUseCase
	Verifier  auth.CredentialVerifier
	Logger    *logger.Logger
	// Metrics opcional: sin él no se expone /metrics.
	Metrics *metrics.Collectors
	// Ping opcional para /health (p. ej. pool.Ping).
	Ping func(ctx context.Context) error
	// CORSOrigins lista separada por comas; vacío = "*".
	CORSOrigins string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	origins := deps.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	var httpMetrics HTTPMetrics
	if deps.Metrics != nil {
		httpMetrics = deps.Metrics
	}
	app.Use(RequestLogger(log.Named("http"), httpMetrics))

	app.Get("/health", health(deps.Ping))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	authenticated := AuthMiddleware(deps.Verifier)

	// Auth (register y login públicos)
	authGroup := app.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authenticated, authHandler.Me)

	// Products: lectura para todos los roles; report.pdf antes de /:id
	products := app.Group("/products", authenticated)
	productHandler := NewProductHandler(deps.ProductUC, deps.ReportUC)
	products.Get("/", productHandler.List)
	products.Get("/report.pdf", productHandler.Report)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole(policy.ActionCreate, policy.ResourceProduct), productHandler.Create)
	products.Put("/:id", RequireRole(policy.ActionUpdate, policy.ResourceProduct), productHandler.Update)
	products.Delete("/:id", RequireRole(policy.ActionDelete, policy.ResourceProduct), productHandler.Delete)

	// Users (solo admin)
	users := app.Group("/users", authenticated)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", RequireRole(policy.ActionRead, policy.ResourceUser), userHandler.List)
	users.Post("/", RequireRole(policy.ActionCreate, policy.ResourceUser), userHandler.Create)
	users.Put("/:id", RequireRole(policy.ActionUpdate, policy.ResourceUser), userHandler.UpdateRole)
	users.Delete("/:id", RequireRole(policy.ActionDelete, policy.ResourceUser), userHandler.Delete)

	// Historial (solo admin)
	auditHandler := NewAuditHandler(deps.AuditUC)
	app.Get("/audit-logs", authenticated, RequireRole(policy.ActionRead, policy.ResourceAuditLog), auditHandler.List)
}

func health(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				loggerFrom(c).Warn().Err(err).Msg("health: base de datos no responde")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
