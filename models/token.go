package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenState indica se o token está livre ou retido por uma disputa.
type TokenState string

const (
	TokenOwned TokenState = "owned"
	TokenHeld  TokenState = "held"
)

// TokenAttributes descreve o contrato de fornecimento de energia representado pelo token.
type TokenAttributes struct {
	EnergyAmount  decimal.Decimal `json:"energy_amount"`  // MWh contratados
	PricePerUnit  decimal.Decimal `json:"price_per_unit"` // preço por MWh
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	SourceType    string          `json:"source_type"` // Ex: "Wind", "Solar"
	DeliveryPoint string          `json:"delivery_point"`
	TermsHash     string          `json:"terms_hash"`
	MetadataURI   string          `json:"metadata_uri"`
}

// EnergyToken representa um contrato de energia negociável.
type EnergyToken struct {
	ID         uint64          `json:"id"`
	Attributes TokenAttributes `json:"attributes"`
	Owner      Account         `json:"owner"`
	State      TokenState      `json:"state"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Canonical devolve os atributos na forma em que voltam de uma leitura JSON:
// decimais reduzidos e horários em UTC. O hash dos eventos depende disso.
func (a TokenAttributes) Canonical() TokenAttributes {
	a.EnergyAmount = decimal.RequireFromString(a.EnergyAmount.String())
	a.PricePerUnit = decimal.RequireFromString(a.PricePerUnit.String())
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	return a
}
