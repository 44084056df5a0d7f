package models

import "github.com/shopspring/decimal"

// SaleListing é a oferta de venda vigente de um token. O valor zero significa
// que o token não está à venda.
type SaleListing struct {
	TokenID   uint64          `json:"token_id"`
	Seller    Account         `json:"seller"`
	AskPrice  decimal.Decimal `json:"ask_price"`
	IsForSale bool            `json:"is_for_sale"`
}

// Sale registra a venda concluída mais recente de um token.
type Sale struct {
	TokenID  uint64          `json:"token_id"`
	Seller   Account         `json:"seller"`
	Buyer    Account         `json:"buyer"`
	Price    decimal.Decimal `json:"price"`
	Disputed bool            `json:"disputed"`
}
