package collection

import (
	"time"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/material"
)

type materialResponse struct {
	Kind      material.Kind `json:"kind"`
	Kilograms float64       `json:"kilograms"`
}

type requestResponse struct {
	ID              uuid.UUID          `json:"id"`
	RequesterID     uuid.UUID          `json:"requester_id"`
	Materials       []materialResponse `json:"materials"`
	TotalWeight     float64            `json:"total_weight"`
	Address         string             `json:"address"`
	Date            string             `json:"date"`
	TimeSlot        string             `json:"time_slot"`
	Notes           string             `json:"notes,omitempty"`
	Photos          []string           `json:"photos,omitempty"`
	Status          collection.Status  `json:"status"`
	CollectorID     *uuid.UUID         `json:"collector_id,omitempty"`
	ActualWeight    *float64           `json:"actual_weight,omitempty"`
	PointsAwarded   float64            `json:"points_awarded,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(r *collection.Request) requestResponse {
	resp := requestResponse{
		ID:              r.ID,
		RequesterID:     r.RequesterID,
		Materials:       make([]materialResponse, len(r.Materials)),
		TotalWeight:     r.TotalWeight,
		Address:         r.Address,
		Date:            r.Date.Format(time.DateOnly),
		TimeSlot:        r.TimeSlot,
		Notes:           r.Notes,
		Photos:          r.Photos,
		Status:          r.Status,
		CollectorID:     r.CollectorID,
		ActualWeight:    r.ActualWeight,
		PointsAwarded:   r.PointsAwarded,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}

	for i, e := range r.Materials {
		resp.Materials[i] = materialResponse(e)
	}

	return resp
}

func toResponseList(list []*collection.Request) []requestResponse {
	resp := make([]requestResponse, len(list))
	for i, r := range list {
		resp[i] = toResponse(r)
	}

	return resp
}
