package ledger

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LockHandler exposes the time-lock HTTP endpoints.
type LockHandler struct {
	locks *LockManager
}

// NewLockHandler builds a lock manager HTTP handler.
func NewLockHandler(locks *LockManager) *LockHandler {
	return &LockHandler{locks: locks}
}

// Lock escrows part of the authenticated principal's balance under a reason.
func (h *LockHandler) Lock(c *fiber.Ctx) error {
	var req LockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Reason == "" {
		return fiber.NewError(http.StatusBadRequest, "reason is required")
	}
	caller := callerAddress(c)
	lock, err := h.locks.Lock(c.UserContext(), caller, req.Reason, req.Amount, secondsToDuration(req.DurationSeconds))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(lockResponse(caller, req.Reason, lock))
}

// TransferWithLock escrows the authenticated principal's units as a lock
// recorded against another account.
func (h *LockHandler) TransferWithLock(c *fiber.Ctx) error {
	var req TransferWithLockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Reason == "" {
		return fiber.NewError(http.StatusBadRequest, "reason is required")
	}
	lock, err := h.locks.TransferWithLock(c.UserContext(), callerAddress(c), req.To, req.Reason, req.Amount, secondsToDuration(req.DurationSeconds))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(lockResponse(req.To, req.Reason, lock))
}

// Extend pushes the unlock time of the authenticated principal's live lock
// further out.
func (h *LockHandler) Extend(c *fiber.Ctx) error {
	var req ExtendLockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Reason == "" {
		return fiber.NewError(http.StatusBadRequest, "reason is required")
	}
	caller := callerAddress(c)
	lock, err := h.locks.ExtendLock(c.UserContext(), caller, req.Reason, secondsToDuration(req.DurationSeconds))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(lockResponse(caller, req.Reason, lock))
}

// Increase adds escrowed units to the authenticated principal's live lock.
func (h *LockHandler) Increase(c *fiber.Ctx) error {
	var req IncreaseLockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Reason == "" {
		return fiber.NewError(http.StatusBadRequest, "reason is required")
	}
	caller := callerAddress(c)
	lock, err := h.locks.IncreaseLockAmount(c.UserContext(), caller, req.Reason, req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(lockResponse(caller, req.Reason, lock))
}

// Unlock claims every matured lock of the requested account and returns the
// total moved back to its spendable balance.
func (h *LockHandler) Unlock(c *fiber.Ctx) error {
	var req UnlockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account := req.Account
	if account == "" {
		account = callerAddress(c)
	}
	unlocked, err := h.locks.Unlock(c.UserContext(), callerAddress(c), account)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account":  account,
		"unlocked": unlocked,
	})
}

// List returns every lock ever recorded for an account, claimed included.
func (h *LockHandler) List(c *fiber.Ctx) error {
	address := c.Params("address")
	locks, err := h.locks.Locks(c.UserContext(), address)
	if err != nil {
		return httpError(err)
	}
	out := make([]LockResponse, 0, len(locks))
	for _, l := range locks {
		out = append(out, lockResponse(address, l.Reason, l.Lock))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account": address,
		"locks":   out,
	})
}

// Get returns a single lock with its live and unlockable views.
func (h *LockHandler) Get(c *fiber.Ctx) error {
	address := c.Params("address")
	reason := c.Params("reason")
	ctx := c.UserContext()

	lock, found, err := h.locks.Locked(ctx, address, reason)
	if err != nil {
		return httpError(err)
	}
	if !found {
		return fiber.NewError(http.StatusNotFound, ErrNoSuchLock.Error())
	}
	locked, err := h.locks.TokensLocked(ctx, address, reason)
	if err != nil {
		return httpError(err)
	}
	unlockable, err := h.locks.TokensUnlockable(ctx, address, reason)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"lock":       lockResponse(address, reason, lock),
		"locked":     locked,
		"unlockable": unlockable,
	})
}

// LockedAt reports the amount still locked under a reason as of a given
// instant, claimed or not.
func (h *LockHandler) LockedAt(c *fiber.Ctx) error {
	address := c.Params("address")
	reason := c.Params("reason")
	at, err := time.Parse(time.RFC3339, c.Query("time"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "time must be RFC 3339")
	}
	amount, err := h.locks.TokensLockedAtTime(c.UserContext(), address, reason, at)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account": address,
		"reason":  reason,
		"time":    at,
		"locked":  amount,
	})
}

// Unlockable returns the total a call to Unlock would claim right now.
func (h *LockHandler) Unlockable(c *fiber.Ctx) error {
	address := c.Params("address")
	total, err := h.locks.UnlockableTokens(c.UserContext(), address)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account":    address,
		"unlockable": total,
	})
}

// TotalBalance returns spendable plus live locked holdings.
func (h *LockHandler) TotalBalance(c *fiber.Ctx) error {
	address := c.Params("address")
	total, err := h.locks.TotalBalanceOf(c.UserContext(), address)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"address":       address,
		"total_balance": total,
	})
}

func lockResponse(account, reason string, lock Lock) LockResponse {
	return LockResponse{
		Account:    account,
		Reason:     reason,
		Amount:     lock.Amount,
		UnlockTime: lock.UnlockTime,
		Claimed:    lock.Claimed,
	}
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
