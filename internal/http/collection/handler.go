// Package collection exposes the pickup lifecycle over HTTP. All routes are
// authenticated; the workflow layer decides what each role may do.
package collection

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/http/httperr"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/photo"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

type Handler struct {
	flow     *workflow.Workflow
	photos   *photo.Ingestor
	validate *validator.Validate
}

func NewHandler(flow *workflow.Workflow, photos *photo.Ingestor, validate *validator.Validate) *Handler {
	return &Handler{flow: flow, photos: photos, validate: validate}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/mine", h.listMine)
	r.Get("/available", h.listAvailable)
	r.Get("/assigned", h.listAssigned)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/claim", h.claim)
	r.Post("/{id}/start", h.start)
	r.Post("/{id}/validate", h.validateCollection)
	r.Post("/{id}/reject", h.reject)
}

type materialPayload struct {
	Kind      material.Kind `json:"kind" validate:"required"`
	Kilograms float64       `json:"kilograms" validate:"required,gt=0"`
}

type createRequest struct {
	Materials []materialPayload `json:"materials" validate:"required,min=1,dive"`
	Address   string            `json:"address" validate:"required"`
	Date      string            `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot  string            `json:"time_slot" validate:"required"`
	Notes     string            `json:"notes"`
	Photos    []string          `json:"photos"`
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

	date, _ := time.Parse(time.DateOnly, req.Date)
	actor, _ := identity.ActorFrom(r.Context())

	created, err := h.flow.CreateRequest(r.Context(), actor, collection.CreateParams{
		Materials: toEntries(req.Materials),
		Address:   req.Address,
		Date:      date,
		TimeSlot:  req.TimeSlot,
		Notes:     req.Notes,
		Photos:    req.Photos,
	})
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encode(w, toResponse(created))
}

type updateRequest struct {
	Materials *[]materialPayload `json:"materials,omitempty" validate:"omitempty,min=1,dive"`
	Address   *string            `json:"address,omitempty"`
	Date      *string            `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TimeSlot  *string            `json:"time_slot,omitempty"`
	Notes     *string            `json:"notes,omitempty"`
	Photos    *[]string          `json:"photos,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := collection.UpdateParams{
		Address:  req.Address,
		TimeSlot: req.TimeSlot,
		Notes:    req.Notes,
		Photos:   req.Photos,
	}

	if req.Materials != nil {
		params.Materials = new(toEntries(*req.Materials))
	}

	if req.Date != nil {
		t, _ := time.Parse(time.DateOnly, *req.Date)
		params.Date = &t
	}

	actor, _ := identity.ActorFrom(r.Context())

	updated, err := h.flow.UpdateRequest(r.Context(), actor, id, params)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	actor, _ := identity.ActorFrom(r.Context())

	if err := h.flow.DeleteRequest(r.Context(), actor, id); err != nil {
		httperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	actor, _ := identity.ActorFrom(r.Context())

	found, err := h.flow.Get(r.Context(), actor, id)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, toResponse(found))
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFrom(r.Context())

	list, err := h.flow.ListOwn(r.Context(), actor)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, toResponseList(list))
}

func (h *Handler) listAvailable(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFrom(r.Context())

	list, err := h.flow.ListAvailable(r.Context(), actor, r.URL.Query().Get("city"))
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, toResponseList(list))
}

func (h *Handler) listAssigned(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFrom(r.Context())

	list, err := h.flow.ListAssigned(r.Context(), actor)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, toResponseList(list))
}

func (h *Handler) claim(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor identity.Actor, id uuid.UUID) (*collection.Request, error) {
		return h.flow.Claim(r.Context(), actor, id)
	})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor identity.Actor, id uuid.UUID) (*collection.Request, error) {
		return h.flow.Start(r.Context(), actor, id)
	})
}

type validateRequest struct {
	ActualWeight float64 `json:"actual_weight" validate:"required,gt=0"`
}

func (h *Handler) validateCollection(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(actor identity.Actor, id uuid.UUID) (*collection.Request, error) {
		return h.flow.Validate(r.Context(), actor, id, req.ActualWeight)
	})
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(actor identity.Actor, id uuid.UUID) (*collection.Request, error) {
		return h.flow.Reject(r.Context(), actor, id, req.Reason)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(identity.Actor, uuid.UUID) (*collection.Request, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	actor, _ := identity.ActorFrom(r.Context())

	updated, err := op(actor, id)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, toResponse(updated))
}

// UploadPhoto accepts raw image bytes and returns a reference to store on a
// collection request.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	ref, err := h.photos.Ingest(data)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, photo.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}

		http.Error(w, err.Error(), status)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encode(w, map[string]string{"ref": ref})
}

func toEntries(payload []materialPayload) []material.Entry {
	entries := make([]material.Entry, len(payload))
	for i, p := range payload {
		entries[i] = material.Entry{Kind: p.Kind, Kilograms: p.Kilograms}
	}

	return entries
}

func encode(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
