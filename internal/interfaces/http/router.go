package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Activos-api/internal/application/analytics"
	"github.com/jhoicas/Activos-api/internal/application/assets"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/ledger"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	AssetUC     *assets.AssetUseCase
	LifecycleUC *assets.LifecycleUseCase
	CategoryUC  *usecase.CategoryUseCase
	LocationUC  *usecase.LocationUseCase
	UserUC      *usecase.UserUseCase
	LedgerUC    *ledger.QueryUseCase
	ReceiptUC   *ledger.ReceiptUseCase
	ArchiveUC   *ledger.ArchiveUseCase
	DashboardUC *analytics.DashboardUseCase
	UserRepo    repository.UserRepository

	// Idempotency nil deshabilita Idempotency-Key en los movimientos.
	Idempotency ports.IdempotencyStore
	// Metrics nil deshabilita /metrics.
	Metrics nethttp.Handler

	JWTSecret string
	AppName   string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (Bearer o Basic)
	protected := api.Group("/", AuthMiddleware(AuthConfig{
		JWTSecret:   deps.JWTSecret,
		Credentials: deps.AuthUC,
		Users:       deps.UserRepo,
	}))
	protected.Get("/me", authHandler.Me)

	// Categorías y ubicaciones: lectura para todos, escritura ADMIN/CUSTODIAN
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories := protected.Group("/categories")
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", RequireMover(), categoryHandler.Create)
	categories.Put("/:id", RequireMover(), categoryHandler.Update)
	categories.Delete("/:id", RequireMover(), categoryHandler.Delete)

	locationHandler := NewLocationHandler(deps.LocationUC, log)
	locations := protected.Group("/locations")
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Post("/", RequireMover(), locationHandler.Create)
	locations.Put("/:id", RequireMover(), locationHandler.Update)
	locations.Delete("/:id", RequireMover(), locationHandler.Delete)

	// Usuarios (solo ADMIN)
	userHandler := NewUserHandler(deps.UserUC, log)
	users := protected.Group("/users", RequireAdmin())
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Activos y ciclo de vida
	assetHandler := NewAssetHandler(deps.AssetUC, deps.LifecycleUC, deps.LedgerUC, log)
	idem := Idempotency(deps.Idempotency, log)
	assetsGroup := protected.Group("/assets")
	assetsGroup.Get("/", assetHandler.List)
	assetsGroup.Post("/", RequireMover(), assetHandler.Create)
	assetsGroup.Get("/:id", assetHandler.GetByID)
	assetsGroup.Put("/:id", RequireAdmin(), assetHandler.Update)
	assetsGroup.Delete("/:id", RequireAdmin(), assetHandler.Delete)
	assetsGroup.Get("/:id/transactions", assetHandler.Transactions)
	assetsGroup.Post("/:id/checkout", RequireMover(), idem, assetHandler.Checkout)
	assetsGroup.Post("/:id/return_asset", RequireMover(), idem, assetHandler.Return)
	assetsGroup.Post("/:id/transfer", RequireMover(), idem, assetHandler.Transfer)
	assetsGroup.Post("/:id/repair", RequireMover(), idem, assetHandler.Repair)
	assetsGroup.Post("/:id/retire", RequireMover(), idem, assetHandler.Retire)

	// Libro de movimientos (solo lectura; el archivo es ADMIN)
	txHandler := NewTransactionHandler(deps.LedgerUC, deps.ReceiptUC, deps.ArchiveUC, log)
	txs := protected.Group("/transactions")
	txs.Get("/", txHandler.List)
	txs.Get("/recent", txHandler.Recent)
	txs.Post("/archive", RequireAdmin(), txHandler.Archive)
	txs.Get("/:id", txHandler.GetByID)
	txs.Get("/:id/receipt", txHandler.Receipt)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
