package ledger

import "time"

// TransferRequest moves units from the authenticated principal to another
// account.
type TransferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// TransferFromRequest spends an allowance granted to the authenticated
// principal.
type TransferFromRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// ApproveRequest sets the allowance a spender may draw from the
// authenticated principal.
type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

// MintRequest creates new units on an account.
type MintRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// BurnRequest destroys units held by an account.
type BurnRequest struct {
	From   string `json:"from"`
	Amount int64  `json:"amount"`
}

// RoleRequest grants or revokes a role for a principal.
type RoleRequest struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}

// LockRequest escrows part of the authenticated principal's balance under a
// reason until the duration elapses.
type LockRequest struct {
	Reason          string `json:"reason"`
	Amount          int64  `json:"amount"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// TransferWithLockRequest escrows part of the authenticated principal's
// balance as a lock recorded against another account.
type TransferWithLockRequest struct {
	To              string `json:"to"`
	Reason          string `json:"reason"`
	Amount          int64  `json:"amount"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// ExtendLockRequest pushes a live lock's unlock time further out.
type ExtendLockRequest struct {
	Reason          string `json:"reason"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// IncreaseLockRequest adds escrowed units to a live lock.
type IncreaseLockRequest struct {
	Reason string `json:"reason"`
	Amount int64  `json:"amount"`
}

// UnlockRequest claims every matured lock of an account.
type UnlockRequest struct {
	Account string `json:"account"`
}

// LockResponse describes one lock on the wire.
type LockResponse struct {
	Account    string    `json:"account"`
	Reason     string    `json:"reason"`
	Amount     int64     `json:"amount"`
	UnlockTime time.Time `json:"unlock_time"`
	Claimed    bool      `json:"claimed"`
}

// SupplyResponse reports the supply snapshot for the configured denomination.
type SupplyResponse struct {
	Denom       string `json:"denom"`
	Total       int64  `json:"total"`
	Cap         int64  `json:"cap"`
	Escrowed    int64  `json:"escrowed"`
	Circulating int64  `json:"circulating"`
}
