package ledger

import (
	"context"
	"fmt"

	"github.com/vesta-ledger/vesta/internal/events"
)

// Role names a capability a principal can hold.
type Role string

const (
	// RoleAdmin may grant and revoke roles and operate the lock manager.
	RoleAdmin Role = "admin"
	// RoleMinter may create new units within the supply cap.
	RoleMinter Role = "minter"
	// RoleBurner may destroy units from spendable balances.
	RoleBurner Role = "burner"
)

// ParseRole maps a wire-level role name onto a known Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMinter, RoleBurner:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// GrantRole gives principal the role. The caller must hold the admin role.
// Granting a role the principal already holds is a no-op and records nothing.
func (l *Ledger) GrantRole(ctx context.Context, caller, principal string, role Role) error {
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleAdmin); err != nil {
			return nil, err
		}
		if _, err := ParseRole(string(role)); err != nil {
			return nil, err
		}
		if principal == "" {
			return nil, ErrInvalidRecipient
		}
		held, err := tx.HasRole(principal, role)
		if err != nil {
			return nil, err
		}
		if held {
			return nil, nil
		}
		if err := tx.SetRole(principal, role, true); err != nil {
			return nil, err
		}
		rec := events.NewRecord(events.KindRoleGranted, events.RoleGranted{Principal: principal, Role: string(role)})
		return []events.Record{rec}, nil
	})
}

// RevokeRole removes the role from principal. The caller must hold the admin
// role. Admins may revoke their own roles, including the last admin grant.
func (l *Ledger) RevokeRole(ctx context.Context, caller, principal string, role Role) error {
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleAdmin); err != nil {
			return nil, err
		}
		if _, err := ParseRole(string(role)); err != nil {
			return nil, err
		}
		held, err := tx.HasRole(principal, role)
		if err != nil {
			return nil, err
		}
		if !held {
			return nil, nil
		}
		if err := tx.SetRole(principal, role, false); err != nil {
			return nil, err
		}
		rec := events.NewRecord(events.KindRoleRevoked, events.RoleRevoked{Principal: principal, Role: string(role)})
		return []events.Record{rec}, nil
	})
}

// HasRole reports whether principal currently holds the role.
func (l *Ledger) HasRole(ctx context.Context, principal string, role Role) (bool, error) {
	var held bool
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		held, err = tx.HasRole(principal, role)
		return err
	})
	return held, err
}

// Roles returns the roles principal currently holds.
func (l *Ledger) Roles(ctx context.Context, principal string) ([]Role, error) {
	var held []Role
	err := l.store.View(ctx, func(tx Tx) error {
		for _, role := range []Role{RoleAdmin, RoleMinter, RoleBurner} {
			ok, err := tx.HasRole(principal, role)
			if err != nil {
				return err
			}
			if ok {
				held = append(held, role)
			}
		}
		return nil
	})
	return held, err
}

// Bootstrap grants the admin role to the given principal if no grant exists
// yet. Called once at startup so the configured operator can administer a
// fresh ledger.
func (l *Ledger) Bootstrap(ctx context.Context, admin string) error {
	if admin == "" {
		return ErrInvalidRecipient
	}
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		held, err := tx.HasRole(admin, RoleAdmin)
		if err != nil {
			return nil, err
		}
		if held {
			return nil, nil
		}
		if err := tx.SetRole(admin, RoleAdmin, true); err != nil {
			return nil, err
		}
		rec := events.NewRecord(events.KindRoleGranted, events.RoleGranted{Principal: admin, Role: string(RoleAdmin)})
		return []events.Record{rec}, nil
	})
}

// requireRole checks a role inside an open unit of work.
func requireRole(tx Tx, principal string, role Role) error {
	held, err := tx.HasRole(principal, role)
	if err != nil {
		return err
	}
	if !held {
		return ErrUnauthorized
	}
	return nil
}
