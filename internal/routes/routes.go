package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vesta-ledger/vesta/internal/auth"
	"github.com/vesta-ledger/vesta/internal/config"
	"github.com/vesta-ledger/vesta/internal/events"
	"github.com/vesta-ledger/vesta/internal/identity"
	"github.com/vesta-ledger/vesta/internal/ledger"
	"github.com/vesta-ledger/vesta/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Stores
	var store ledger.Store
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
	} else {
		store = ledger.NewMemoryStore()
	}
	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}

	// Services and handlers
	core, err := ledger.New(store, d.Cfg.SupplyCap, events.NewLoggerSink(d.Logger))
	if err != nil {
		return err
	}
	if err := core.Bootstrap(context.Background(), d.Cfg.AdminAddress); err != nil {
		return fmt.Errorf("bootstrap admin role: %w", err)
	}
	identitySvc := identity.NewService(identityRepo)
	if d.Cfg.AdminSecret != "" {
		if _, err := identitySvc.Ensure(context.Background(), d.Cfg.AdminAddress, d.Cfg.AdminName, d.Cfg.AdminSecret); err != nil {
			return fmt.Errorf("ensure admin principal: %w", err)
		}
	}
	locks := ledger.NewLockManager(core)

	identityHandler := identity.NewHandler(identitySvc)
	authHandler := auth.NewHandler(identitySvc, auth.NewService(d.Cfg, identityRepo))
	ledgerHandler := ledger.NewHandler(core, d.Cfg.TokenDenom)
	lockHandler := ledger.NewLockHandler(locks)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	api.Get("/supply", ledgerHandler.Supply)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, identityHandler, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, identityRepo)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterLedgerRoutes(protected, ledgerHandler)
	RegisterLockRoutes(protected, lockHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
