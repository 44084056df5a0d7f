package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ferreirogomes/energytradehub/models"
)

// Mint cria um novo token de contrato de energia em nome do PROVIDER chamador.
func (h *Hub) Mint(ctx context.Context, caller models.Account, attrs models.TokenAttributes) (uint64, error) {
	var id uint64
	err := h.execute(ctx, "mint", func(tx *txn) error {
		if err := requireRole(tx, caller, models.RoleProvider); err != nil {
			return err
		}
		if err := validateAttributes(attrs); err != nil {
			return err
		}
		attrs = attrs.Canonical()
		id = tx.nextTokenID
		tx.nextTokenID++
		tx.putToken(models.EnergyToken{
			ID:         id,
			Attributes: attrs,
			Owner:      caller,
			State:      models.TokenOwned,
			CreatedAt:  h.now().UTC(),
		})
		tx.emit(h.event(models.EventTokenCreated, func(ev *models.Event) {
			ev.TokenID = id
			ev.Account = caller.String()
			a := attrs
			ev.Attrs = &a
		}))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func validateAttributes(attrs models.TokenAttributes) error {
	switch {
	case !attrs.EnergyAmount.IsPositive():
		return fmt.Errorf("%w: quantidade de energia deve ser positiva", ErrInvalidAttributes)
	case !attrs.PricePerUnit.IsPositive():
		return fmt.Errorf("%w: preço por unidade deve ser positivo", ErrInvalidAttributes)
	case !attrs.EndTime.After(attrs.StartTime):
		return fmt.Errorf("%w: fim do contrato deve ser posterior ao início", ErrInvalidAttributes)
	}
	return nil
}

// transferOwnership move o token de from para to. Uso interno do marketplace
// e da ponte de arbitragem.
func transferOwnership(tx *txn, tokenID uint64, from, to models.Account) error {
	t, ok := tx.token(tokenID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
	}
	if t.Owner != from {
		return fmt.Errorf("%w: token %d pertence a %s", ErrNotOwner, tokenID, t.Owner)
	}
	if t.State == models.TokenHeld {
		return fmt.Errorf("%w: token %d", ErrTokenHeld, tokenID)
	}
	t.Owner = to
	tx.putToken(t)
	return nil
}

// holdForDispute congela o token enquanto a disputa estiver aberta.
func holdForDispute(tx *txn, tokenID uint64) error {
	t, ok := tx.token(tokenID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
	}
	if t.State == models.TokenHeld {
		return fmt.Errorf("%w: token %d", ErrTokenHeld, tokenID)
	}
	t.State = models.TokenHeld
	tx.putToken(t)
	return nil
}

func releaseHold(tx *txn, tokenID uint64) error {
	t, ok := tx.token(tokenID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
	}
	if t.State != models.TokenHeld {
		return fmt.Errorf("%w: token %d não está retido", ErrInvariantViolation, tokenID)
	}
	t.State = models.TokenOwned
	tx.putToken(t)
	return nil
}

// OwnerOf retorna o proprietário atual do token.
func (h *Hub) OwnerOf(tokenID uint64) (models.Account, error) {
	t, err := h.Token(tokenID)
	if err != nil {
		return models.Account{}, err
	}
	return t.Owner, nil
}

func (h *Hub) Token(tokenID uint64) (models.EnergyToken, error) {
	var (
		t  models.EnergyToken
		ok bool
	)
	h.read(func(s *ledgerState) {
		t, ok = s.tokens[tokenID]
	})
	if !ok {
		return models.EnergyToken{}, fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
	}
	return t, nil
}

// TokensOf lista os tokens de account em ordem de id.
func (h *Hub) TokensOf(account models.Account) []models.EnergyToken {
	var out []models.EnergyToken
	h.read(func(s *ledgerState) {
		for _, t := range s.tokens {
			if t.Owner == account {
				out = append(out, t)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
