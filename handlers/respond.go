package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/energytradehub/arbitration"
	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

// AccountHeader carrega a conta do chamador, já autenticada pelo front end de identidade.
const AccountHeader = "X-Account"

// ErrorResponse é o corpo das respostas de erro.
type ErrorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := services.CodeOf(err)
	writeJSON(w, statusFor(err, code), ErrorResponse{Code: string(code), Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func statusFor(err error, code services.Code) int {
	switch code {
	case services.CodeUnauthorized, services.CodeNotOwner:
		return http.StatusForbidden
	case services.CodeInvalidAttributes, services.CodeInvalidPrice, services.CodeInvalidAmount,
		services.CodeInvalidRuling, services.CodeInvalidRole:
		return http.StatusBadRequest
	case services.CodeTokenNotFound, services.CodeDisputeNotFound:
		return http.StatusNotFound
	case services.CodePaymentMismatch:
		return http.StatusUnprocessableEntity
	case services.CodeNotListed, services.CodeTokenHeld, services.CodeNoSale, services.CodeSelfPurchase,
		services.CodeAlreadyRuled, services.CodeNothingToWithdraw, services.CodeInvariantViolation,
		services.CodeReentrancyRejected:
		return http.StatusConflict
	case services.CodeArbitratorUnavailable:
		return http.StatusServiceUnavailable
	}
	switch {
	case errors.Is(err, arbitration.ErrNotOperator):
		return http.StatusForbidden
	case errors.Is(err, arbitration.ErrInvalidRuling):
		return http.StatusBadRequest
	case errors.Is(err, arbitration.ErrAlreadyDecided):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// caller lê a conta do cabeçalho X-Account.
func caller(w http.ResponseWriter, r *http.Request) (models.Account, bool) {
	raw := r.Header.Get(AccountHeader)
	if raw == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Code:  string(services.CodeUnauthorized),
			Error: "cabeçalho " + AccountHeader + " é obrigatório",
		})
		return models.Account{}, false
	}
	acct, err := models.ParseAccount(raw)
	if err != nil {
		badRequest(w, err.Error())
		return models.Account{}, false
	}
	return acct, true
}

func accountParam(w http.ResponseWriter, r *http.Request, name string) (models.Account, bool) {
	acct, err := models.ParseAccount(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, err.Error())
		return models.Account{}, false
	}
	return acct, true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		badRequest(w, "id inválido: "+chi.URLParam(r, name))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, err.Error())
		return false
	}
	return true
}
