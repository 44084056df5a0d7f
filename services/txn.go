package services

import (
	"github.com/shopspring/decimal"

	"github.com/ferreirogomes/energytradehub/models"
)

// ledgerState é o estado autoritativo do hub. Só é escrito por txn.commit.
type ledgerState struct {
	roles    map[models.Role]map[models.Account]struct{}
	tokens   map[uint64]models.EnergyToken
	listings map[uint64]models.SaleListing
	sales    map[uint64]models.Sale
	disputes map[uint64]models.Dispute
	balances map[models.Account]decimal.Decimal
	escrow   decimal.Decimal

	nextTokenID   uint64
	nextDisputeID uint64
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		roles:         make(map[models.Role]map[models.Account]struct{}),
		tokens:        make(map[uint64]models.EnergyToken),
		listings:      make(map[uint64]models.SaleListing),
		sales:         make(map[uint64]models.Sale),
		disputes:      make(map[uint64]models.Dispute),
		balances:      make(map[models.Account]decimal.Decimal),
		escrow:        decimal.Zero,
		nextTokenID:   1,
		nextDisputeID: 1,
	}
}

type roleKey struct {
	role    models.Role
	account models.Account
}

// txn acumula as mudanças de uma operação sobre o estado base. Leituras
// enxergam as mudanças já preparadas; nada chega ao estado base antes do commit.
type txn struct {
	base *ledgerState

	roles    map[roleKey]bool
	tokens   map[uint64]models.EnergyToken
	listings map[uint64]*models.SaleListing // nil = removida
	sales    map[uint64]models.Sale
	disputes map[uint64]models.Dispute
	balances map[models.Account]decimal.Decimal
	escrow   *decimal.Decimal

	nextTokenID   uint64
	nextDisputeID uint64

	events []models.Event
}

func begin(base *ledgerState) *txn {
	return &txn{
		base:          base,
		roles:         make(map[roleKey]bool),
		tokens:        make(map[uint64]models.EnergyToken),
		listings:      make(map[uint64]*models.SaleListing),
		sales:         make(map[uint64]models.Sale),
		disputes:      make(map[uint64]models.Dispute),
		balances:      make(map[models.Account]decimal.Decimal),
		nextTokenID:   base.nextTokenID,
		nextDisputeID: base.nextDisputeID,
	}
}

func (tx *txn) hasRole(account models.Account, role models.Role) bool {
	if held, ok := tx.roles[roleKey{role, account}]; ok {
		return held
	}
	_, ok := tx.base.roles[role][account]
	return ok
}

func (tx *txn) setRole(account models.Account, role models.Role, held bool) {
	tx.roles[roleKey{role, account}] = held
}

// roleCount conta os detentores de role considerando as mudanças preparadas.
func (tx *txn) roleCount(role models.Role) int {
	n := len(tx.base.roles[role])
	for k, held := range tx.roles {
		if k.role != role {
			continue
		}
		_, inBase := tx.base.roles[role][k.account]
		switch {
		case held && !inBase:
			n++
		case !held && inBase:
			n--
		}
	}
	return n
}

func (tx *txn) token(id uint64) (models.EnergyToken, bool) {
	if t, ok := tx.tokens[id]; ok {
		return t, true
	}
	t, ok := tx.base.tokens[id]
	return t, ok
}

func (tx *txn) putToken(t models.EnergyToken) {
	tx.tokens[t.ID] = t
}

func (tx *txn) listing(id uint64) (models.SaleListing, bool) {
	if l, ok := tx.listings[id]; ok {
		if l == nil {
			return models.SaleListing{}, false
		}
		return *l, true
	}
	l, ok := tx.base.listings[id]
	return l, ok
}

func (tx *txn) putListing(l models.SaleListing) {
	tx.listings[l.TokenID] = &l
}

func (tx *txn) clearListing(id uint64) {
	tx.listings[id] = nil
}

func (tx *txn) sale(id uint64) (models.Sale, bool) {
	if s, ok := tx.sales[id]; ok {
		return s, true
	}
	s, ok := tx.base.sales[id]
	return s, ok
}

func (tx *txn) putSale(s models.Sale) {
	tx.sales[s.TokenID] = s
}

func (tx *txn) dispute(id uint64) (models.Dispute, bool) {
	if d, ok := tx.disputes[id]; ok {
		return d, true
	}
	d, ok := tx.base.disputes[id]
	return d, ok
}

func (tx *txn) putDispute(d models.Dispute) {
	tx.disputes[d.ID] = d
}

func (tx *txn) balance(account models.Account) decimal.Decimal {
	if b, ok := tx.balances[account]; ok {
		return b
	}
	if b, ok := tx.base.balances[account]; ok {
		return b
	}
	return decimal.Zero
}

func (tx *txn) credit(account models.Account, amount decimal.Decimal) {
	tx.balances[account] = tx.balance(account).Add(amount)
}

func (tx *txn) setBalance(account models.Account, amount decimal.Decimal) {
	tx.balances[account] = amount
}

func (tx *txn) escrowBalance() decimal.Decimal {
	if tx.escrow != nil {
		return *tx.escrow
	}
	return tx.base.escrow
}

func (tx *txn) setEscrow(amount decimal.Decimal) {
	tx.escrow = &amount
}

func (tx *txn) emit(ev models.Event) {
	tx.events = append(tx.events, ev)
}

// commit aplica todas as mudanças preparadas ao estado base. Deve ser chamado
// com o lock de escrita do hub.
func (tx *txn) commit() {
	s := tx.base
	for k, held := range tx.roles {
		holders := s.roles[k.role]
		if held {
			if holders == nil {
				holders = make(map[models.Account]struct{})
				s.roles[k.role] = holders
			}
			holders[k.account] = struct{}{}
		} else if holders != nil {
			delete(holders, k.account)
		}
	}
	for id, t := range tx.tokens {
		s.tokens[id] = t
	}
	for id, l := range tx.listings {
		if l == nil {
			delete(s.listings, id)
			continue
		}
		s.listings[id] = *l
	}
	for id, sale := range tx.sales {
		s.sales[id] = sale
	}
	for id, d := range tx.disputes {
		s.disputes[id] = d
	}
	for a, b := range tx.balances {
		if b.IsZero() {
			delete(s.balances, a)
			continue
		}
		s.balances[a] = b
	}
	if tx.escrow != nil {
		s.escrow = *tx.escrow
	}
	s.nextTokenID = tx.nextTokenID
	s.nextDisputeID = tx.nextDisputeID
}
