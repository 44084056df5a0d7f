package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ferreirogomes/energytradehub/models"
)

// ListForSale coloca o token à venda pelo preço informado. Uma nova chamada do
// proprietário substitui o preço pedido.
func (h *Hub) ListForSale(ctx context.Context, caller models.Account, tokenID uint64, price decimal.Decimal) error {
	return h.execute(ctx, "list_for_sale", func(tx *txn) error {
		t, ok := tx.token(tokenID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
		}
		if t.Owner != caller {
			return fmt.Errorf("%w: %s", ErrNotOwner, caller)
		}
		if t.State == models.TokenHeld {
			return fmt.Errorf("%w: token %d", ErrTokenHeld, tokenID)
		}
		if !price.IsPositive() {
			return fmt.Errorf("%w: %s", ErrInvalidPrice, price)
		}
		tx.putListing(models.SaleListing{
			TokenID:   tokenID,
			Seller:    caller,
			AskPrice:  price,
			IsForSale: true,
		})
		tx.emit(h.event(models.EventTokenListed, func(ev *models.Event) {
			ev.TokenID = tokenID
			ev.Account = caller.String()
			ev.Amount = price.String()
		}))
		return nil
	})
}

// Delist retira o token de venda.
func (h *Hub) Delist(ctx context.Context, caller models.Account, tokenID uint64) error {
	return h.execute(ctx, "delist", func(tx *txn) error {
		t, ok := tx.token(tokenID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
		}
		if t.Owner != caller {
			return fmt.Errorf("%w: %s", ErrNotOwner, caller)
		}
		l, ok := tx.listing(tokenID)
		if !ok || !l.IsForSale {
			return fmt.Errorf("%w: %d", ErrNotListed, tokenID)
		}
		tx.clearListing(tokenID)
		tx.emit(h.event(models.EventTokenDelisted, func(ev *models.Event) {
			ev.TokenID = tokenID
			ev.Account = caller.String()
		}))
		return nil
	})
}

// Buy executa a compra atômica: confere a oferta, remove a oferta, transfere a
// posse e credita o pagamento ao vendedor. O pagamento precisa ser exatamente
// o preço pedido.
func (h *Hub) Buy(ctx context.Context, buyer models.Account, tokenID uint64, payment decimal.Decimal) error {
	return h.execute(ctx, "buy", func(tx *txn) error {
		l, ok := tx.listing(tokenID)
		if !ok || !l.IsForSale {
			return fmt.Errorf("%w: %d", ErrNotListed, tokenID)
		}
		if h.opts.RequireConsumerRole {
			if err := requireRole(tx, buyer, models.RoleConsumer); err != nil {
				return err
			}
		}
		if !payment.Equal(l.AskPrice) {
			return fmt.Errorf("%w: pago %s, pedido %s", ErrPaymentMismatch, payment, l.AskPrice)
		}
		if buyer == l.Seller {
			return fmt.Errorf("%w: %s", ErrSelfPurchase, buyer)
		}
		tx.clearListing(tokenID)
		if err := transferOwnership(tx, tokenID, l.Seller, buyer); err != nil {
			return err
		}
		tx.credit(l.Seller, payment)
		tx.putSale(models.Sale{
			TokenID: tokenID,
			Seller:  l.Seller,
			Buyer:   buyer,
			Price:   payment,
		})
		tx.emit(h.event(models.EventTokenPurchased, func(ev *models.Event) {
			ev.TokenID = tokenID
			ev.Account = buyer.String()
			ev.Amount = payment.String()
		}))
		return nil
	})
}

// TokenSales retorna a oferta vigente do token. Tokens sem oferta retornam
// uma oferta vazia com IsForSale falso.
func (h *Hub) TokenSales(tokenID uint64) models.SaleListing {
	var (
		l  models.SaleListing
		ok bool
	)
	h.read(func(s *ledgerState) {
		l, ok = s.listings[tokenID]
	})
	if !ok {
		return models.SaleListing{TokenID: tokenID, AskPrice: decimal.Zero}
	}
	return l
}

// LastSale retorna a venda concluída mais recente do token.
func (h *Hub) LastSale(tokenID uint64) (models.Sale, bool) {
	var (
		sale models.Sale
		ok   bool
	)
	h.read(func(s *ledgerState) {
		sale, ok = s.sales[tokenID]
	})
	return sale, ok
}

// BalanceOf retorna o saldo sacável de account.
func (h *Hub) BalanceOf(account models.Account) decimal.Decimal {
	b := decimal.Zero
	h.read(func(s *ledgerState) {
		if v, ok := s.balances[account]; ok {
			b = v
		}
	})
	return b
}

// Withdraw zera o saldo de caller e retorna o valor sacado.
func (h *Hub) Withdraw(ctx context.Context, caller models.Account) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := h.execute(ctx, "withdraw", func(tx *txn) error {
		amount = tx.balance(caller)
		if !amount.IsPositive() {
			return fmt.Errorf("%w: %s", ErrNothingToWithdraw, caller)
		}
		tx.setBalance(caller, decimal.Zero)
		tx.emit(h.event(models.EventWithdrawal, func(ev *models.Event) {
			ev.Account = caller.String()
			ev.Amount = amount.String()
		}))
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}
