package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ferreirogomes/energytradehub/arbitration"
	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

// DisputeHandler lida com disputas, evidências e decisões do árbitro.
type DisputeHandler struct {
	Hub *services.Hub
	// Arbitrator é o árbitro centralizado operado por este servidor, se houver.
	Arbitrator *arbitration.Centralized
}

func NewDisputeHandler(hub *services.Hub, arb *arbitration.Centralized) *DisputeHandler {
	return &DisputeHandler{Hub: hub, Arbitrator: arb}
}

type OpenDisputeRequest struct {
	TokenID uint64          `json:"token_id"`
	Amount  decimal.Decimal `json:"amount"`
}

type RulingRequest struct {
	Ruling models.Ruling `json:"ruling"`
}

type EvidenceRequest struct {
	URI string `json:"uri"`
}

// Open abre uma disputa sobre a última venda de um token.
// POST /disputes
func (h *DisputeHandler) Open(w http.ResponseWriter, r *http.Request) {
	disputant, ok := caller(w, r)
	if !ok {
		return
	}
	var req OpenDisputeRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.Hub.OpenDispute(r.Context(), disputant, req.TokenID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondDispute(w, http.StatusCreated, id)
}

// GetDispute obtém uma disputa pelo id.
// GET /disputes/{id}
func (h *DisputeHandler) GetDispute(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	h.respondDispute(w, http.StatusOK, id)
}

// SubmitRuling recebe a decisão enviada pela conta do árbitro.
// POST /disputes/{id}/ruling
func (h *DisputeHandler) SubmitRuling(w http.ResponseWriter, r *http.Request) {
	arbitrator, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req RulingRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Hub.SubmitRuling(r.Context(), arbitrator, id, req.Ruling); err != nil {
		writeError(w, err)
		return
	}
	h.respondDispute(w, http.StatusOK, id)
}

// Resolve pede ao árbitro configurado a decisão da disputa e a aplica.
// POST /disputes/{id}/resolve
func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.Hub.ResolveDispute(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.respondDispute(w, http.StatusOK, id)
}

// SubmitEvidence anexa uma evidência a uma disputa aberta.
// POST /disputes/{id}/evidence
func (h *DisputeHandler) SubmitEvidence(w http.ResponseWriter, r *http.Request) {
	party, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req EvidenceRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Hub.SubmitEvidence(r.Context(), party, id, req.URI); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Decide registra a decisão do operador no árbitro centralizado.
// POST /arbitrator/disputes/{id}/decision
func (h *DisputeHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if h.Arbitrator == nil {
		http.Error(w, "árbitro centralizado não configurado", http.StatusNotFound)
		return
	}
	operator, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req RulingRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Arbitrator.Decide(operator, id, req.Ruling); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *DisputeHandler) respondDispute(w http.ResponseWriter, status int, id uint64) {
	d, err := h.Hub.GetDispute(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, d)
}
