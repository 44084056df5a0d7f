package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ruling é a decisão vinculante do árbitro.
type Ruling string

const (
	FavorSeller Ruling = "FavorSeller"
	FavorBuyer  Ruling = "FavorBuyer"
)

func (r Ruling) Valid() bool {
	return r == FavorSeller || r == FavorBuyer
}

type DisputeStatus string

const (
	DisputeOpen  DisputeStatus = "Open"
	DisputeRuled DisputeStatus = "Ruled"
)

// Dispute é uma contestação aberta contra a venda mais recente de um token.
// O valor em EscrowedAmount fica retido pelo hub até a decisão.
type Dispute struct {
	ID             uint64          `json:"id"`
	TokenID        uint64          `json:"token_id"`
	Disputant      Account         `json:"disputant"`
	Seller         Account         `json:"seller"`
	Buyer          Account         `json:"buyer"`
	EscrowedAmount decimal.Decimal `json:"escrowed_amount"`
	Status         DisputeStatus   `json:"status"`
	Ruling         Ruling          `json:"ruling,omitempty"`
	OpenedAt       time.Time       `json:"opened_at"`
	RuledAt        *time.Time      `json:"ruled_at,omitempty"`
}
