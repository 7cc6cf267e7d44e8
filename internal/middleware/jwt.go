package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vesta-ledger/vesta/internal/auth"
	"github.com/vesta-ledger/vesta/internal/config"
	"github.com/vesta-ledger/vesta/internal/identity"
)

// JWTAuth validates bearer tokens and loads the authenticated principal. The
// principal's address is exposed to handlers under the "principal" local.
func JWTAuth(cfg config.Config, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.Parse(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		principal, err := repo.FindByAddress(c.UserContext(), claims.Address)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "unknown principal")
		}

		c.Locals("principal", principal.Address)
		c.Locals("principal_name", principal.Name)
		return c.Next()
	}
}
