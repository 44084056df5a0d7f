package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

const defaultJournalLimit = 500

// JournalReader lê eventos já gravados no journal.
type JournalReader interface {
	Events(ctx context.Context, since uint64, limit int) ([]models.Event, error)
	TokenEvents(ctx context.Context, tokenID uint64) ([]models.Event, error)
}

// EventHandler expõe o EventLog em memória e o journal persistido.
type EventHandler struct {
	Hub     *services.Hub
	Journal JournalReader
}

func NewEventHandler(hub *services.Hub, journal JournalReader) *EventHandler {
	return &EventHandler{Hub: hub, Journal: journal}
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Events int    `json:"events"`
	Head   string `json:"head"`
	Error  string `json:"error,omitempty"`
}

// ListEvents retorna os eventos com seq maior que ?since.
// GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	since, ok := sinceParam(w, r)
	if !ok {
		return
	}
	events := h.Hub.Events().Since(since)
	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Verify recalcula a cadeia de hashes do EventLog.
// GET /events/verify
func (h *EventHandler) Verify(w http.ResponseWriter, r *http.Request) {
	log := h.Hub.Events()
	resp := VerifyResponse{Valid: true, Events: log.Len(), Head: log.Head()}
	if err := log.Verify(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListJournal lê os eventos gravados no banco.
// GET /journal
func (h *EventHandler) ListJournal(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		http.Error(w, "journal não configurado", http.StatusNotFound)
		return
	}
	since, ok := sinceParam(w, r)
	if !ok {
		return
	}
	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, "limit inválido: "+raw)
			return
		}
		limit = n
	}
	events, err := h.Journal.Events(r.Context(), since, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// ListTokenJournal lê o histórico gravado de um token.
// GET /journal/tokens/{id}
func (h *EventHandler) ListTokenJournal(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		http.Error(w, "journal não configurado", http.StatusNotFound)
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	events, err := h.Journal.TokenEvents(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func sinceParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, true
	}
	since, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(w, "since inválido: "+raw)
		return 0, false
	}
	return since, true
}
