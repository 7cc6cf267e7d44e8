package ledger

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the token ledger HTTP endpoints.
type Handler struct {
	ledger *Ledger
	denom  string
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(ledger *Ledger, denom string) *Handler {
	return &Handler{ledger: ledger, denom: denom}
}

// Supply reports the current supply snapshot.
func (h *Handler) Supply(c *fiber.Ctx) error {
	snap, err := h.ledger.Snapshot(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(SupplyResponse{
		Denom:       h.denom,
		Total:       snap.Total,
		Cap:         snap.Cap,
		Escrowed:    snap.Escrowed,
		Circulating: snap.Circulating,
	})
}

// Balance returns the spendable balance of an account.
func (h *Handler) Balance(c *fiber.Ctx) error {
	address := c.Params("address")
	balance, err := h.ledger.BalanceOf(c.UserContext(), address)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"address": address,
		"balance": balance,
	})
}

// Allowance returns the live allowance for an (owner, spender) pair.
func (h *Handler) Allowance(c *fiber.Ctx) error {
	owner := c.Params("address")
	spender := c.Params("spender")
	allowance, err := h.ledger.Allowance(c.UserContext(), owner, spender)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"owner":     owner,
		"spender":   spender,
		"allowance": allowance,
	})
}

// Transfer moves units from the authenticated principal to another account.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	from := callerAddress(c)
	if err := h.ledger.Transfer(c.UserContext(), from, req.To, req.Amount); err != nil {
		return httpError(err)
	}
	balance, err := h.ledger.BalanceOf(c.UserContext(), from)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"from":    from,
		"to":      req.To,
		"amount":  req.Amount,
		"balance": balance,
	})
}

// Approve sets the allowance a spender may draw from the authenticated
// principal.
func (h *Handler) Approve(c *fiber.Ctx) error {
	var req ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	owner := callerAddress(c)
	if err := h.ledger.Approve(c.UserContext(), owner, req.Spender, req.Amount); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"owner":     owner,
		"spender":   req.Spender,
		"allowance": req.Amount,
	})
}

// TransferFrom spends an allowance granted to the authenticated principal.
func (h *Handler) TransferFrom(c *fiber.Ctx) error {
	var req TransferFromRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	spender := callerAddress(c)
	if err := h.ledger.TransferFrom(c.UserContext(), spender, req.From, req.To, req.Amount); err != nil {
		return httpError(err)
	}
	remaining, err := h.ledger.Allowance(c.UserContext(), req.From, spender)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"from":      req.From,
		"to":        req.To,
		"amount":    req.Amount,
		"allowance": remaining,
	})
}

// Mint creates new units. The authenticated principal must hold the minter
// role.
func (h *Handler) Mint(c *fiber.Ctx) error {
	var req MintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.ledger.Mint(c.UserContext(), callerAddress(c), req.To, req.Amount); err != nil {
		return httpError(err)
	}
	supply, err := h.ledger.TotalSupply(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"to":           req.To,
		"amount":       req.Amount,
		"total_supply": supply,
	})
}

// Burn destroys units. The authenticated principal must hold the burner role.
func (h *Handler) Burn(c *fiber.Ctx) error {
	var req BurnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.ledger.Burn(c.UserContext(), callerAddress(c), req.From, req.Amount); err != nil {
		return httpError(err)
	}
	supply, err := h.ledger.TotalSupply(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"from":         req.From,
		"amount":       req.Amount,
		"total_supply": supply,
	})
}

// GrantRole gives a principal a role. The authenticated principal must hold
// the admin role.
func (h *Handler) GrantRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.ledger.GrantRole(c.UserContext(), callerAddress(c), req.Principal, role); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"principal": req.Principal,
		"role":      string(role),
		"granted":   true,
	})
}

// RevokeRole removes a role from a principal. The authenticated principal
// must hold the admin role.
func (h *Handler) RevokeRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.ledger.RevokeRole(c.UserContext(), callerAddress(c), req.Principal, role); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"principal": req.Principal,
		"role":      string(role),
		"granted":   false,
	})
}

// Roles lists the roles a principal holds.
func (h *Handler) Roles(c *fiber.Ctx) error {
	address := c.Params("address")
	roles, err := h.ledger.Roles(c.UserContext(), address)
	if err != nil {
		return httpError(err)
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"principal": address,
		"roles":     names,
	})
}

// Events returns the latest audit records, newest first.
func (h *Handler) Events(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	records, err := h.ledger.RecentEvents(c.UserContext(), limit)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"events": records,
	})
}

// callerAddress returns the authenticated principal's address set by the auth
// middleware.
func callerAddress(c *fiber.Ctx) string {
	address, _ := c.Locals("principal").(string)
	return address
}

// httpError maps ledger errors onto HTTP status codes. Unknown errors are
// treated as internal.
func httpError(err error) error {
	return fiber.NewError(errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNoSuchLock):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyLocked):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRecipient),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrInsufficientAllowance),
		errors.Is(err, ErrSupplyCapExceeded):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
