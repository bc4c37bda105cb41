// Package voucher exposes point redemption and issued-voucher retrieval.
package voucher

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/http/httperr"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/user"
	"github.com/recyclehub/recyclehub/internal/voucher"
)

type Handler struct {
	issuer   *voucher.Issuer
	users    *user.Service
	validate *validator.Validate
}

func NewHandler(issuer *voucher.Issuer, users *user.Service, validate *validator.Validate) *Handler {
	return &Handler{issuer: issuer, users: users, validate: validate}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}/document", h.document)
}

type createRequest struct {
	Points float64 `json:"points" validate:"required,gt=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	actor, _ := identity.ActorFrom(r.Context())

	u, err := h.users.Get(r.Context(), actor.ID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	issued, err := h.issuer.Issue(r.Context(), actor.ID, req.Points, u.FullName())
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encode(w, toResponse(issued))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFrom(r.Context())

	vouchers, err := h.issuer.List(r.Context(), actor.ID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	resp := make([]voucherResponse, len(vouchers))
	for i, v := range vouchers {
		resp[i] = toResponse(v)
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, resp)
}

// document serves the rendered voucher artifact as a download.
func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	actor, _ := identity.ActorFrom(r.Context())

	vouchers, err := h.issuer.List(r.Context(), actor.ID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	for _, v := range vouchers {
		if v.ID == id {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="voucher-`+v.Number+`.txt"`)
			_, _ = w.Write(voucher.RenderText(v))

			return
		}
	}

	http.Error(w, "voucher not found", http.StatusNotFound)
}

type voucherResponse struct {
	ID          uuid.UUID `json:"id"`
	Number      string    `json:"number"`
	Value       float64   `json:"value"`
	PointsSpent float64   `json:"points_spent"`
	Beneficiary string    `json:"beneficiary"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toResponse(v *voucher.Voucher) voucherResponse {
	return voucherResponse(*v)
}

func encode(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
