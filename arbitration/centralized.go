// Package arbitration contém implementações do árbitro externo consumido
// pelo hub através da interface services.Arbitrator.
package arbitration

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ferreirogomes/energytradehub/models"
)

var (
	ErrNotOperator      = errors.New("conta não é a operadora do árbitro")
	ErrNoDecision       = errors.New("árbitro ainda não decidiu a disputa")
	ErrAlreadyDecided   = errors.New("disputa já decidida pelo árbitro")
	ErrAlreadyDelivered = errors.New("decisão já entregue ao hub")
	ErrInvalidRuling    = errors.New("decisão inválida")
)

type decision struct {
	ruling    models.Ruling
	delivered bool
}

// Centralized é um árbitro de autoridade única: a conta operadora registra a
// decisão de cada disputa e Rule a entrega ao hub uma única vez.
type Centralized struct {
	operator models.Account
	log      *zap.Logger

	mu        sync.Mutex
	decisions map[uint64]*decision
}

// NewCentralized cria um árbitro operado por operator.
func NewCentralized(operator models.Account, log *zap.Logger) *Centralized {
	if log == nil {
		log = zap.NewNop()
	}
	return &Centralized{
		operator:  operator,
		log:       log.Named("arbitrator"),
		decisions: make(map[uint64]*decision),
	}
}

// Operator retorna a conta operadora.
func (c *Centralized) Operator() models.Account { return c.operator }

// Decide registra a decisão da disputa. Uma decisão registrada não muda.
func (c *Centralized) Decide(caller models.Account, disputeID uint64, ruling models.Ruling) error {
	if caller != c.operator {
		return fmt.Errorf("%w: %s", ErrNotOperator, caller)
	}
	if !ruling.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRuling, ruling)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.decisions[disputeID]; ok {
		return fmt.Errorf("%w: %d", ErrAlreadyDecided, disputeID)
	}
	c.decisions[disputeID] = &decision{ruling: ruling}
	c.log.Info("decisão registrada", zap.Uint64("dispute_id", disputeID), zap.String("ruling", string(ruling)))
	return nil
}

// Rule entrega a decisão registrada, exatamente uma vez por disputa.
func (c *Centralized) Rule(ctx context.Context, disputeID uint64) (models.Ruling, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.decisions[disputeID]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrNoDecision, disputeID)
	}
	if d.delivered {
		return "", fmt.Errorf("%w: %d", ErrAlreadyDelivered, disputeID)
	}
	d.delivered = true
	return d.ruling, nil
}
