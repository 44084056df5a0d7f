package handlers

import (
	"net/http"

	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

type TokenHandler struct {
	Hub *services.Hub
}

func NewTokenHandler(hub *services.Hub) *TokenHandler {
	return &TokenHandler{Hub: hub}
}

// MintResponse devolve o id do token criado.
type MintResponse struct {
	ID    uint64 `json:"id"`
	Owner string `json:"owner"`
}

type OwnerResponse struct {
	TokenID uint64 `json:"token_id"`
	Owner   string `json:"owner"`
}

// Mint cria um token de contrato de energia para o PROVIDER chamador.
// POST /tokens
func (h *TokenHandler) Mint(w http.ResponseWriter, r *http.Request) {
	provider, ok := caller(w, r)
	if !ok {
		return
	}
	var attrs models.TokenAttributes
	if !decode(w, r, &attrs) {
		return
	}

	id, err := h.Hub.Mint(r.Context(), provider, attrs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MintResponse{ID: id, Owner: provider.String()})
}

// GetTokenByID obtém um token pelo id.
// GET /tokens/{id}
func (h *TokenHandler) GetTokenByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Hub.Token(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// OwnerOf obtém o proprietário atual de um token.
// GET /tokens/{id}/owner
func (h *TokenHandler) OwnerOf(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	owner, err := h.Hub.OwnerOf(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerResponse{TokenID: id, Owner: owner.String()})
}

// GetAccountTokens lista os tokens de uma conta.
// GET /accounts/{account}/tokens
func (h *TokenHandler) GetAccountTokens(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	tokens := h.Hub.TokensOf(account)
	if tokens == nil {
		tokens = []models.EnergyToken{}
	}
	writeJSON(w, http.StatusOK, tokens)
}
