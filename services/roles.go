package services

import (
	"context"
	"fmt"

	"github.com/ferreirogomes/energytradehub/models"
)

// GrantRole concede role a account. Só ADMIN pode conceder; conceder um papel
// já detido é um sucesso sem efeito.
func (h *Hub) GrantRole(ctx context.Context, caller, account models.Account, role models.Role) error {
	return h.execute(ctx, "grant_role", func(tx *txn) error {
		if err := requireRole(tx, caller, models.RoleAdmin); err != nil {
			return err
		}
		if !role.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidRole, role)
		}
		if tx.hasRole(account, role) {
			return nil
		}
		tx.setRole(account, role, true)
		tx.emit(h.event(models.EventRoleGranted, func(ev *models.Event) {
			ev.Account = account.String()
			ev.Role = role
		}))
		return nil
	})
}

// RevokeRole remove role de account. Remover o último ADMIN é recusado.
func (h *Hub) RevokeRole(ctx context.Context, caller, account models.Account, role models.Role) error {
	return h.execute(ctx, "revoke_role", func(tx *txn) error {
		if err := requireRole(tx, caller, models.RoleAdmin); err != nil {
			return err
		}
		if !tx.hasRole(account, role) {
			return nil
		}
		if role == models.RoleAdmin && tx.roleCount(models.RoleAdmin) <= 1 {
			return fmt.Errorf("%w: %s é o último ADMIN", ErrInvariantViolation, account)
		}
		tx.setRole(account, role, false)
		tx.emit(h.event(models.EventRoleRevoked, func(ev *models.Event) {
			ev.Account = account.String()
			ev.Role = role
		}))
		return nil
	})
}

// AddProvider concede PROVIDER a account.
func (h *Hub) AddProvider(ctx context.Context, caller, account models.Account) error {
	return h.GrantRole(ctx, caller, account, models.RoleProvider)
}

// AddConsumer concede CONSUMER a account.
func (h *Hub) AddConsumer(ctx context.Context, caller, account models.Account) error {
	return h.GrantRole(ctx, caller, account, models.RoleConsumer)
}

func (h *Hub) HasRole(account models.Account, role models.Role) bool {
	var ok bool
	h.read(func(s *ledgerState) {
		_, ok = s.roles[role][account]
	})
	return ok
}

// RoleMembers lista as contas que detêm role.
func (h *Hub) RoleMembers(role models.Role) []models.Account {
	var out []models.Account
	h.read(func(s *ledgerState) {
		for a := range s.roles[role] {
			out = append(out, a)
		}
	})
	return out
}

func requireRole(tx *txn, account models.Account, role models.Role) error {
	if !tx.hasRole(account, role) {
		return fmt.Errorf("%w: %s não possui o papel %s", ErrUnauthorized, account, role)
	}
	return nil
}
