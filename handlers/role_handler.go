package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

// RoleHandler lida com requisições de concessão e revogação de papéis.
type RoleHandler struct {
	Hub *services.Hub
}

func NewRoleHandler(hub *services.Hub) *RoleHandler {
	return &RoleHandler{Hub: hub}
}

type roleOp func(ctx context.Context, caller, account models.Account, role models.Role) error

type RoleRequest struct {
	Account string      `json:"account"`
	Role    models.Role `json:"role"`
}

type RoleResponse struct {
	Account string      `json:"account"`
	Role    models.Role `json:"role"`
	HasRole bool        `json:"has_role"`
}

// Grant concede um papel.
// POST /roles/grant
func (h *RoleHandler) Grant(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.Hub.GrantRole)
}

// Revoke revoga um papel.
// POST /roles/revoke
func (h *RoleHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.Hub.RevokeRole)
}

func (h *RoleHandler) change(w http.ResponseWriter, r *http.Request, op roleOp) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req RoleRequest
	if !decode(w, r, &req) {
		return
	}
	account, err := models.ParseAccount(req.Account)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := op(r.Context(), from, account, req.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RoleResponse{
		Account: account.String(),
		Role:    req.Role,
		HasRole: h.Hub.HasRole(account, req.Role),
	})
}

// Has consulta se a conta possui o papel.
// GET /roles/{account}/{role}
func (h *RoleHandler) Has(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	role := models.Role(chi.URLParam(r, "role"))
	writeJSON(w, http.StatusOK, RoleResponse{
		Account: account.String(),
		Role:    role,
		HasRole: h.Hub.HasRole(account, role),
	})
}
