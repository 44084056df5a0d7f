package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ferreirogomes/energytradehub/models"
)

// OpenDispute abre uma disputa sobre a venda mais recente do token. O valor
// informado fica retido em escrow pelo hub, e o token fica congelado até a
// decisão do árbitro.
func (h *Hub) OpenDispute(ctx context.Context, disputant models.Account, tokenID uint64, amount decimal.Decimal) (uint64, error) {
	var id uint64
	err := h.execute(ctx, "open_dispute", func(tx *txn) error {
		t, ok := tx.token(tokenID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
		}
		if t.State == models.TokenHeld {
			return fmt.Errorf("%w: token %d", ErrTokenHeld, tokenID)
		}
		sale, ok := tx.sale(tokenID)
		if !ok || sale.Disputed {
			return fmt.Errorf("%w: token %d", ErrNoSale, tokenID)
		}
		if disputant != sale.Buyer && disputant != sale.Seller {
			return fmt.Errorf("%w: %s não participou da venda do token %d", ErrUnauthorized, disputant, tokenID)
		}
		if !amount.IsPositive() {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
		}

		tx.setEscrow(tx.escrowBalance().Add(amount))
		tx.clearListing(tokenID)
		if err := holdForDispute(tx, tokenID); err != nil {
			return err
		}
		sale.Disputed = true
		tx.putSale(sale)

		id = tx.nextDisputeID
		tx.nextDisputeID++
		tx.putDispute(models.Dispute{
			ID:             id,
			TokenID:        tokenID,
			Disputant:      disputant,
			Seller:         sale.Seller,
			Buyer:          sale.Buyer,
			EscrowedAmount: amount,
			Status:         models.DisputeOpen,
			OpenedAt:       h.now().UTC(),
		})
		tx.emit(h.event(models.EventDisputeOpened, func(ev *models.Event) {
			ev.DisputeID = id
			ev.TokenID = tokenID
			ev.Account = disputant.String()
			ev.Amount = amount.String()
		}))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SubmitEvidence anexa uma evidência a uma disputa aberta. Só as partes da
// venda podem enviar evidências.
func (h *Hub) SubmitEvidence(ctx context.Context, caller models.Account, disputeID uint64, uri string) error {
	return h.execute(ctx, "submit_evidence", func(tx *txn) error {
		d, ok := tx.dispute(disputeID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrDisputeNotFound, disputeID)
		}
		if caller != d.Buyer && caller != d.Seller {
			return fmt.Errorf("%w: %s não é parte da disputa %d", ErrUnauthorized, caller, disputeID)
		}
		if d.Status != models.DisputeOpen {
			return fmt.Errorf("%w: %d", ErrAlreadyRuled, disputeID)
		}
		if uri == "" {
			return fmt.Errorf("%w: uri da evidência vazia", ErrInvalidAttributes)
		}
		tx.emit(h.event(models.EventEvidenceSubmitted, func(ev *models.Event) {
			ev.DisputeID = disputeID
			ev.TokenID = d.TokenID
			ev.Account = caller.String()
			ev.URI = uri
		}))
		return nil
	})
}

// SubmitRuling aplica a decisão do árbitro. Só a conta do árbitro pode
// chamá-la, e cada disputa aceita exatamente uma decisão.
func (h *Hub) SubmitRuling(ctx context.Context, caller models.Account, disputeID uint64, ruling models.Ruling) error {
	err := h.execute(ctx, "submit_ruling", func(tx *txn) error {
		if caller != h.opts.ArbitratorAccount {
			return fmt.Errorf("%w: %s não é o árbitro", ErrUnauthorized, caller)
		}
		return h.applyRuling(tx, disputeID, ruling)
	})
	if err != nil {
		return err
	}
	h.logRuling(disputeID, ruling, "submit")
	return nil
}

// ResolveDispute consulta o Arbitrator configurado e aplica a decisão
// devolvida. Enquanto o árbitro é consultado, qualquer escrita reentrante no
// hub é rejeitada.
func (h *Hub) ResolveDispute(ctx context.Context, disputeID uint64) (models.Ruling, error) {
	if h.opts.Arbitrator == nil {
		return "", fmt.Errorf("%w: nenhum árbitro configurado", ErrArbitratorUnavailable)
	}
	if err := h.enter(ctx); err != nil {
		return "", err
	}

	var ruling models.Ruling
	committed, err := func() ([]models.Event, error) {
		defer h.opMu.Unlock()

		var d models.Dispute
		var ok bool
		h.read(func(s *ledgerState) { d, ok = s.disputes[disputeID] })
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrDisputeNotFound, disputeID)
		}
		if d.Status != models.DisputeOpen {
			return nil, fmt.Errorf("%w: %d", ErrAlreadyRuled, disputeID)
		}

		r, err := h.askArbitrator(ctx, disputeID)
		if err != nil {
			var lerr *Error
			if errors.As(err, &lerr) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrArbitratorUnavailable, err)
		}
		ruling = r
		return h.run("resolve_dispute", func(tx *txn) error {
			return h.applyRuling(tx, disputeID, r)
		})
	}()
	if err != nil {
		return "", err
	}
	h.dispatch(ctx, committed)
	h.logRuling(disputeID, ruling, "arbitrator")
	return ruling, nil
}

func (h *Hub) applyRuling(tx *txn, disputeID uint64, ruling models.Ruling) error {
	d, ok := tx.dispute(disputeID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrDisputeNotFound, disputeID)
	}
	if d.Status != models.DisputeOpen {
		return fmt.Errorf("%w: %d", ErrAlreadyRuled, disputeID)
	}
	if !ruling.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRuling, ruling)
	}

	escrow := tx.escrowBalance()
	if escrow.LessThan(d.EscrowedAmount) {
		return fmt.Errorf("%w: escrow %s menor que o valor da disputa %d", ErrInvariantViolation, escrow, disputeID)
	}
	if err := releaseHold(tx, d.TokenID); err != nil {
		return err
	}
	tx.setEscrow(escrow.Sub(d.EscrowedAmount))

	switch ruling {
	case models.FavorSeller:
		tx.credit(d.Seller, d.EscrowedAmount)
	case models.FavorBuyer:
		if err := transferOwnership(tx, d.TokenID, d.Buyer, d.Seller); err != nil {
			return err
		}
		tx.credit(d.Buyer, d.EscrowedAmount)
	}

	now := h.now().UTC()
	d.Status = models.DisputeRuled
	d.Ruling = ruling
	d.RuledAt = &now
	tx.putDispute(d)
	tx.emit(h.event(models.EventDisputeRuled, func(ev *models.Event) {
		ev.DisputeID = disputeID
		ev.TokenID = d.TokenID
		ev.Outcome = ruling
		ev.Amount = d.EscrowedAmount.String()
	}))
	return nil
}

func (h *Hub) logRuling(disputeID uint64, ruling models.Ruling, via string) {
	h.log.Info("disputa decidida",
		zap.Uint64("dispute_id", disputeID),
		zap.String("ruling", string(ruling)),
		zap.String("via", via))
}

// askArbitrator consulta o árbitro com o hub marcado como em chamada externa.
func (h *Hub) askArbitrator(ctx context.Context, disputeID uint64) (models.Ruling, error) {
	h.callout.Store(true)
	defer h.callout.Store(false)
	return h.opts.Arbitrator.Rule(withCallout(ctx, h), disputeID)
}

// GetDispute retorna a disputa pelo id.
func (h *Hub) GetDispute(disputeID uint64) (models.Dispute, error) {
	var (
		d  models.Dispute
		ok bool
	)
	h.read(func(s *ledgerState) {
		d, ok = s.disputes[disputeID]
	})
	if !ok {
		return models.Dispute{}, fmt.Errorf("%w: %d", ErrDisputeNotFound, disputeID)
	}
	return d, nil
}

// EscrowBalance retorna o total retido em disputas abertas.
func (h *Hub) EscrowBalance() decimal.Decimal {
	var b decimal.Decimal
	h.read(func(s *ledgerState) { b = s.escrow })
	return b
}
