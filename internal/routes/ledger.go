package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vesta-ledger/vesta/internal/ledger"
)

// RegisterLedgerRoutes wires balance, supply movement, allowance, role and
// audit endpoints.
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler) {
	r.Get("/accounts/:address/balance", h.Balance)
	r.Get("/accounts/:address/allowances/:spender", h.Allowance)
	r.Get("/accounts/:address/roles", h.Roles)
	r.Get("/events", h.Events)

	r.Post("/transfers", h.Transfer)
	r.Post("/transfers/from", h.TransferFrom)
	r.Post("/approvals", h.Approve)
	r.Post("/mint", h.Mint)
	r.Post("/burn", h.Burn)
	r.Post("/roles/grant", h.GrantRole)
	r.Post("/roles/revoke", h.RevokeRole)
}
