package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vesta-ledger/vesta/internal/auth"
	"github.com/vesta-ledger/vesta/internal/identity"
)

// RegisterAuthRoutes wires registration and authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, ids *identity.Handler, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", ids.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
}
