package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ferreirogomes/energytradehub/arbitration"
	"github.com/ferreirogomes/energytradehub/services"
)

// NewRouter monta as rotas HTTP do hub. arb e journal são opcionais.
func NewRouter(hub *services.Hub, arb *arbitration.Centralized, journal JournalReader) chi.Router {
	roleHandler := NewRoleHandler(hub)
	tokenHandler := NewTokenHandler(hub)
	marketHandler := NewMarketHandler(hub)
	disputeHandler := NewDisputeHandler(hub, arb)
	eventHandler := NewEventHandler(hub, journal)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/roles", func(r chi.Router) {
		r.Post("/grant", roleHandler.Grant)
		r.Post("/revoke", roleHandler.Revoke)
		r.Get("/{account}/{role}", roleHandler.Has)
	})

	r.Route("/tokens", func(r chi.Router) {
		r.Post("/", tokenHandler.Mint)
		r.Get("/{id}", tokenHandler.GetTokenByID)
		r.Get("/{id}/owner", tokenHandler.OwnerOf)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/{account}/tokens", tokenHandler.GetAccountTokens)
		r.Get("/{account}/balance", marketHandler.Balance)
		r.Post("/withdraw", marketHandler.Withdraw)
	})

	r.Route("/market", func(r chi.Router) {
		r.Get("/{id}", marketHandler.TokenSales)
		r.Post("/{id}/listing", marketHandler.List)
		r.Delete("/{id}/listing", marketHandler.Delist)
		r.Post("/{id}/buy", marketHandler.Buy)
	})

	r.Route("/disputes", func(r chi.Router) {
		r.Post("/", disputeHandler.Open)
		r.Get("/{id}", disputeHandler.GetDispute)
		r.Post("/{id}/ruling", disputeHandler.SubmitRuling)
		r.Post("/{id}/resolve", disputeHandler.Resolve)
		r.Post("/{id}/evidence", disputeHandler.SubmitEvidence)
	})

	r.Post("/arbitrator/disputes/{id}/decision", disputeHandler.Decide)

	r.Get("/events", eventHandler.ListEvents)
	r.Get("/events/verify", eventHandler.Verify)
	r.Get("/journal", eventHandler.ListJournal)
	r.Get("/journal/tokens/{id}", eventHandler.ListTokenJournal)

	return r
}
