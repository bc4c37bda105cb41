// Package workflow is the authorization layer over the collection service:
// it maps the requester and collector roles to the lifecycle operations each
// may invoke, and enforces ownership of requests and assignments.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/user"
)

// ErrForbidden is returned when the actor's role or ownership does not cover
// the operation. Callers surface it; nothing retries.
var ErrForbidden = errors.New("operation not permitted")

type Workflow struct {
	collections *collection.Service
}

func New(collections *collection.Service) *Workflow {
	return &Workflow{collections: collections}
}

// CreateRequest lets a requester open a pickup in their own name.
func (w *Workflow) CreateRequest(ctx context.Context, actor identity.Actor, params collection.CreateParams) (*collection.Request, error) {
	if err := requireRole(actor, user.RoleRequester); err != nil {
		return nil, err
	}

	params.RequesterID = actor.ID

	return w.collections.Create(ctx, params)
}

// UpdateRequest lets a requester edit one of their own pending pickups.
func (w *Workflow) UpdateRequest(ctx context.Context, actor identity.Actor, id uuid.UUID, params collection.UpdateParams) (*collection.Request, error) {
	if err := requireRole(actor, user.RoleRequester); err != nil {
		return nil, err
	}

	if err := w.requireOwnership(ctx, actor, id); err != nil {
		return nil, err
	}

	return w.collections.Update(ctx, id, params)
}

// DeleteRequest lets a requester delete one of their own pending pickups.
func (w *Workflow) DeleteRequest(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := requireRole(actor, user.RoleRequester); err != nil {
		return err
	}

	if err := w.requireOwnership(ctx, actor, id); err != nil {
		return err
	}

	return w.collections.Delete(ctx, id)
}

// ListOwn returns the requester's own pickups.
func (w *Workflow) ListOwn(ctx context.Context, actor identity.Actor) ([]*collection.Request, error) {
	if err := requireRole(actor, user.RoleRequester); err != nil {
		return nil, err
	}

	return w.collections.ListByRequester(ctx, actor.ID)
}

// ListAvailable returns open work in a city for a collector to browse.
func (w *Workflow) ListAvailable(ctx context.Context, actor identity.Actor, city string) ([]*collection.Request, error) {
	if err := requireRole(actor, user.RoleCollector); err != nil {
		return nil, err
	}

	return w.collections.ListAvailable(ctx, city)
}

// ListAssigned returns the collector's claimed pickups.
func (w *Workflow) ListAssigned(ctx context.Context, actor identity.Actor) ([]*collection.Request, error) {
	if err := requireRole(actor, user.RoleCollector); err != nil {
		return nil, err
	}

	return w.collections.ListByCollector(ctx, actor.ID)
}

// Claim assigns an open pickup to the acting collector.
func (w *Workflow) Claim(ctx context.Context, actor identity.Actor, id uuid.UUID) (*collection.Request, error) {
	if err := requireRole(actor, user.RoleCollector); err != nil {
		return nil, err
	}

	return w.collections.Assign(ctx, id, actor.ID)
}

// Start moves the collector's own claimed pickup to in_progress.
func (w *Workflow) Start(ctx context.Context, actor identity.Actor, id uuid.UUID) (*collection.Request, error) {
	if err := w.requireAssignment(ctx, actor, id); err != nil {
		return nil, err
	}

	return w.collections.Start(ctx, id)
}

// Validate completes the collector's own pickup with the measured weight.
func (w *Workflow) Validate(ctx context.Context, actor identity.Actor, id uuid.UUID, actualKilograms float64) (*collection.Request, error) {
	if err := w.requireAssignment(ctx, actor, id); err != nil {
		return nil, err
	}

	return w.collections.Validate(ctx, id, actualKilograms)
}

// Reject terminates the collector's own pickup with a reason.
func (w *Workflow) Reject(ctx context.Context, actor identity.Actor, id uuid.UUID, reason string) (*collection.Request, error) {
	if err := w.requireAssignment(ctx, actor, id); err != nil {
		return nil, err
	}

	return w.collections.Reject(ctx, id, reason)
}

// Get fetches a pickup the actor is allowed to see: its requester, its
// assigned collector, or any collector while it is still unassigned.
func (w *Workflow) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*collection.Request, error) {
	r, err := w.collections.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case r.RequesterID == actor.ID:
	case r.CollectorID != nil && *r.CollectorID == actor.ID:
	case actor.Role == user.RoleCollector && r.Status == collection.StatusRequested:
	default:
		return nil, fmt.Errorf("%w: not your collection", ErrForbidden)
	}

	return r, nil
}

func requireRole(actor identity.Actor, role user.Role) error {
	if actor.Role != role {
		return fmt.Errorf("%w: requires the %s role", ErrForbidden, role)
	}

	return nil
}

func (w *Workflow) requireOwnership(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	r, err := w.collections.Get(ctx, id)
	if err != nil {
		return err
	}

	if r.RequesterID != actor.ID {
		return fmt.Errorf("%w: not your collection", ErrForbidden)
	}

	return nil
}

func (w *Workflow) requireAssignment(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := requireRole(actor, user.RoleCollector); err != nil {
		return err
	}

	r, err := w.collections.Get(ctx, id)
	if err != nil {
		return err
	}

	if r.CollectorID == nil || *r.CollectorID != actor.ID {
		return fmt.Errorf("%w: collection is not assigned to you", ErrForbidden)
	}

	return nil
}
