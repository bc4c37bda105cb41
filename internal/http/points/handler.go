// Package points exposes the requester's ledger: balance, history, and the
// configured redemption tiers.
package points

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recyclehub/recyclehub/internal/http/httperr"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/points"
)

type Handler struct {
	svc *points.Service
}

func NewHandler(svc *points.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/balance", h.balance)
	r.Get("/history", h.history)
	r.Get("/tiers", h.tiers)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFrom(r.Context())

	balance, err := h.svc.Balance(r.Context(), actor.ID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, map[string]float64{"balance": balance})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFrom(r.Context())

	history, err := h.svc.History(r.Context(), actor.ID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, toHistoryResponse(history))
}

func (h *Handler) tiers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	encode(w, toTiersResponse(h.svc.Tiers()))
}

func encode(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
