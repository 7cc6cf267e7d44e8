package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vesta-ledger/vesta/internal/ledger"
)

// RegisterLockRoutes wires the time-lock endpoints.
func RegisterLockRoutes(r fiber.Router, h *ledger.LockHandler) {
	r.Get("/accounts/:address/locks", h.List)
	r.Get("/accounts/:address/locks/:reason", h.Get)
	r.Get("/accounts/:address/locks/:reason/at", h.LockedAt)
	r.Get("/accounts/:address/unlockable", h.Unlockable)
	r.Get("/accounts/:address/total-balance", h.TotalBalance)

	r.Post("/locks", h.Lock)
	r.Post("/locks/transfer", h.TransferWithLock)
	r.Post("/locks/extend", h.Extend)
	r.Post("/locks/increase", h.Increase)
	r.Post("/unlock", h.Unlock)
}
