package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ferreirogomes/energytradehub/services"
)

// MarketHandler lida com ofertas, compras e saques.
type MarketHandler struct {
	Hub *services.Hub
}

func NewMarketHandler(hub *services.Hub) *MarketHandler {
	return &MarketHandler{Hub: hub}
}

type ListRequest struct {
	Price decimal.Decimal `json:"price"`
}

type BuyRequest struct {
	Payment decimal.Decimal `json:"payment"`
}

type BuyResponse struct {
	TokenID uint64          `json:"token_id"`
	Buyer   string          `json:"buyer"`
	Amount  decimal.Decimal `json:"amount"`
}

type BalanceResponse struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// List coloca um token à venda.
// POST /market/{id}/listing
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	seller, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req ListRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Hub.ListForSale(r.Context(), seller, id, req.Price); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Hub.TokenSales(id))
}

// Delist retira um token de venda.
// DELETE /market/{id}/listing
func (h *MarketHandler) Delist(w http.ResponseWriter, r *http.Request) {
	seller, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Hub.Delist(r.Context(), seller, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Hub.TokenSales(id))
}

// TokenSales obtém a oferta vigente de um token.
// GET /market/{id}
func (h *MarketHandler) TokenSales(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Hub.TokenSales(id))
}

// Buy compra um token pelo preço pedido.
// POST /market/{id}/buy
func (h *MarketHandler) Buy(w http.ResponseWriter, r *http.Request) {
	buyer, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req BuyRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Hub.Buy(r.Context(), buyer, id, req.Payment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BuyResponse{TokenID: id, Buyer: buyer.String(), Amount: req.Payment})
}

// Balance consulta o saldo sacável de uma conta.
// GET /accounts/{account}/balance
func (h *MarketHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Account: account.String(), Balance: h.Hub.BalanceOf(account)})
}

// Withdraw saca todo o saldo do chamador.
// POST /accounts/withdraw
func (h *MarketHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	amount, err := h.Hub.Withdraw(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Account: account.String(), Balance: amount})
}
