// Package collection owns the collection-request lifecycle: requesters declare
// waste pickups, collectors claim and perform them, and validation reconciles
// the measured weight against the declared one before awarding points.
package collection

import (
	"time"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/material"
)

// Status is the lifecycle state of a collection request.
//
// The machine is one-directional:
//
//	requested → assigned → in_progress → validated | rejected
//
// validated and rejected are absorbing.
type Status string

const (
	StatusRequested  Status = "requested"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusValidated  Status = "validated"
	StatusRejected   Status = "rejected"
)

// Open reports whether the request still counts against the requester's
// open-request ceiling.
func (s Status) Open() bool {
	switch s {
	case StatusRequested, StatusAssigned, StatusInProgress:
		return true
	}

	return false
}

// Terminal reports whether the state can no longer change.
func (s Status) Terminal() bool {
	return s == StatusValidated || s == StatusRejected
}

// Request is a waste-collection request.
type Request struct {
	ID          uuid.UUID
	RequesterID uuid.UUID
	Materials   []material.Entry
	TotalWeight float64 // Sum of declared kilograms
	Address     string
	Date        time.Time
	TimeSlot    string // "HH:MM-HH:MM"
	Notes       string
	Photos      []string // Opaque refs from the photo collaborator
	Status      Status

	CollectorID *uuid.UUID // Set on assignment

	// Set on validation
	ActualWeight  *float64
	PointsAwarded float64

	// Set on rejection
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt *time.Time
}
