package collection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/points"
)

// Business rules. Weight bounds and the slot window come from the product
// rules; they are invariants, not tunables.
const (
	MinWeightKg     = 1.0
	MaxWeightKg     = 10.0
	MaxOpenRequests = 3
	SlotOpenHour    = 8
	SlotCloseHour   = 18
)

var (
	ErrNotFound = errors.New("collection request not found")

	// ErrInvalidState marks an operation attempted against a request whose
	// state does not permit it.
	ErrInvalidState = errors.New("invalid request state")

	// ErrLimitExceeded marks a breached open-request-count or
	// total-open-weight ceiling.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrValidation marks malformed or out-of-range input. Invalid input is
	// always rejected, never clamped or defaulted.
	ErrValidation = errors.New("invalid input")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=collection
type Repository interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	UpdateRequest(ctx context.Context, r *Request) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error

	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*Request, error)
	// ListAvailable returns requested-state requests whose address contains
	// city (case- and diacritic-insensitive).
	ListAvailable(ctx context.Context, city string) ([]*Request, error)
	ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]*Request, error)
}

// Accruer awards ledger points for collected materials.
type Accruer interface {
	Accrue(ctx context.Context, userID uuid.UUID, entries []material.Entry) (*points.Transaction, error)
}

// Observer is notified after every successful mutation. Observers are a UI
// convenience; no core behavior depends on them.
type Observer func(*Request)

type Service struct {
	repo      Repository
	ledger    Accruer
	observers []Observer
}

func NewService(repo Repository, ledger Accruer) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// Subscribe registers an observer. Not safe for concurrent use with the
// service's operations; register observers during wiring.
func (s *Service) Subscribe(fn Observer) {
	s.observers = append(s.observers, fn)
}

func (s *Service) notify(r *Request) {
	for _, fn := range s.observers {
		fn(r)
	}
}

type CreateParams struct {
	RequesterID uuid.UUID
	Materials   []material.Entry
	Address     string
	Date        time.Time
	TimeSlot    string
	Notes       string
	Photos      []string
}

// Create registers a new request in the requested state after checking the
// declared weight bounds, the time slot window, and the requester's
// open-request ceiling.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Request, error) {
	if err := validateMaterials(params.Materials); err != nil {
		return nil, err
	}

	total := material.TotalWeight(params.Materials)
	if err := validateTotalWeight(total); err != nil {
		return nil, err
	}

	if err := validateTimeSlot(params.TimeSlot); err != nil {
		return nil, err
	}

	if params.Address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrValidation)
	}

	open, err := s.openRequests(ctx, params.RequesterID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	if len(open) >= MaxOpenRequests {
		return nil, fmt.Errorf("%w: at most %d open requests allowed", ErrLimitExceeded, MaxOpenRequests)
	}

	r := &Request{
		RequesterID: params.RequesterID,
		Materials:   params.Materials,
		TotalWeight: total,
		Address:     params.Address,
		Date:        params.Date,
		TimeSlot:    params.TimeSlot,
		Notes:       params.Notes,
		Photos:      params.Photos,
		Status:      StatusRequested,
	}

	if err := s.repo.CreateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	s.notify(r)

	return r, nil
}

// UpdateParams carries the declared fields a requester may edit while the
// request is still in the requested state. Nil fields are left untouched.
type UpdateParams struct {
	Materials *[]material.Entry
	Address   *string
	Date      *time.Time
	TimeSlot  *string
	Notes     *string
	Photos    *[]string
}

func (p UpdateParams) empty() bool {
	return p.Materials == nil && p.Address == nil && p.Date == nil &&
		p.TimeSlot == nil && p.Notes == nil && p.Photos == nil
}

// Update edits the declared fields of a requested-state request. Changing the
// materials re-validates both the per-request weight bounds and the
// requester's total open weight.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Request, error) {
	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status != StatusRequested && !params.empty() {
		return nil, fmt.Errorf("%w: only requested collections can be edited", ErrInvalidState)
	}

	if params.Materials != nil {
		if err := validateMaterials(*params.Materials); err != nil {
			return nil, err
		}

		total := material.TotalWeight(*params.Materials)
		if err := validateTotalWeight(total); err != nil {
			return nil, err
		}

		open, err := s.openRequests(ctx, r.RequesterID, r.ID)
		if err != nil {
			return nil, err
		}

		openWeight := decimal.NewFromFloat(total)
		for _, other := range open {
			openWeight = openWeight.Add(decimal.NewFromFloat(other.TotalWeight))
		}

		if openWeight.GreaterThan(decimal.NewFromFloat(MaxWeightKg)) {
			return nil, fmt.Errorf("%w: total open weight cannot exceed %vkg", ErrLimitExceeded, MaxWeightKg)
		}

		r.Materials = *params.Materials
		r.TotalWeight = total
	}

	if params.TimeSlot != nil {
		if err := validateTimeSlot(*params.TimeSlot); err != nil {
			return nil, err
		}

		r.TimeSlot = *params.TimeSlot
	}

	if params.Address != nil {
		if *params.Address == "" {
			return nil, fmt.Errorf("%w: address is required", ErrValidation)
		}

		r.Address = *params.Address
	}

	if params.Date != nil {
		r.Date = *params.Date
	}

	if params.Notes != nil {
		r.Notes = *params.Notes
	}

	if params.Photos != nil {
		r.Photos = *params.Photos
	}

	if err := s.repo.UpdateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("updating request: %w", err)
	}

	s.notify(r)

	return r, nil
}

// Delete removes a request. Only requested-state requests can be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}

	if r.Status != StatusRequested {
		return fmt.Errorf("%w: only requested collections can be deleted", ErrInvalidState)
	}

	if err := s.repo.DeleteRequest(ctx, id); err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}

	return nil
}

// Assign transitions requested → assigned and records the collector.
func (s *Service) Assign(ctx context.Context, id, collectorID uuid.UUID) (*Request, error) {
	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status != StatusRequested {
		return nil, fmt.Errorf("%w: cannot assign a %s collection", ErrInvalidState, r.Status)
	}

	r.Status = StatusAssigned
	r.CollectorID = &collectorID

	if err := s.repo.UpdateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("assigning request: %w", err)
	}

	s.notify(r)

	return r, nil
}

// Start transitions assigned → in_progress.
func (s *Service) Start(ctx context.Context, id uuid.UUID) (*Request, error) {
	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status != StatusAssigned {
		return nil, fmt.Errorf("%w: cannot start a %s collection", ErrInvalidState, r.Status)
	}

	r.Status = StatusInProgress

	if err := s.repo.UpdateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("starting request: %w", err)
	}

	s.notify(r)

	return r, nil
}

// Validate completes a collection with the measured weight. The declared
// per-material weights are scaled by actual/declared (the declared mix is
// assumed proportionally accurate), points are accrued on the requester's
// ledger from the scaled weights, and the total is stored on the request.
func (s *Service) Validate(ctx context.Context, id uuid.UUID, actualKilograms float64) (*Request, error) {
	if actualKilograms <= 0 {
		return nil, fmt.Errorf("%w: measured weight must be positive", ErrValidation)
	}

	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status != StatusAssigned && r.Status != StatusInProgress {
		return nil, fmt.Errorf("%w: cannot validate a %s collection", ErrInvalidState, r.Status)
	}

	scaled := material.Scale(r.Materials, actualKilograms)

	tx, err := s.ledger.Accrue(ctx, r.RequesterID, scaled)
	if err != nil {
		return nil, fmt.Errorf("accruing points: %w", err)
	}

	r.Status = StatusValidated
	r.ActualWeight = &actualKilograms
	r.PointsAwarded = tx.Points

	if err := s.repo.UpdateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("validating request: %w", err)
	}

	s.notify(r)

	return r, nil
}

// Reject terminates a collection without awarding points. A reason is
// required.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Request, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", ErrValidation)
	}

	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status != StatusAssigned && r.Status != StatusInProgress {
		return nil, fmt.Errorf("%w: cannot reject a %s collection", ErrInvalidState, r.Status)
	}

	r.Status = StatusRejected
	r.RejectionReason = reason

	if err := s.repo.UpdateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("rejecting request: %w", err)
	}

	s.notify(r)

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetRequest(ctx, id)
}

// ListByRequester returns every request the user has created.
func (s *Service) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*Request, error) {
	return s.repo.ListByRequester(ctx, requesterID)
}

// ListAvailable returns requested-state requests in the given city.
func (s *Service) ListAvailable(ctx context.Context, city string) ([]*Request, error) {
	return s.repo.ListAvailable(ctx, city)
}

// ListByCollector returns every request the collector has claimed.
func (s *Service) ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]*Request, error) {
	return s.repo.ListByCollector(ctx, collectorID)
}

// openRequests returns the requester's open requests, excluding the given id.
func (s *Service) openRequests(ctx context.Context, requesterID, exclude uuid.UUID) ([]*Request, error) {
	all, err := s.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}

	var open []*Request

	for _, r := range all {
		if r.ID != exclude && r.Status.Open() {
			open = append(open, r)
		}
	}

	return open, nil
}

func validateMaterials(entries []material.Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: at least one material is required", ErrValidation)
	}

	for _, e := range entries {
		if !e.Kind.Valid() {
			return fmt.Errorf("%w: unknown material %q", ErrValidation, e.Kind)
		}

		if e.Kilograms <= 0 {
			return fmt.Errorf("%w: material weight must be positive", ErrValidation)
		}
	}

	return nil
}

func validateTotalWeight(total float64) error {
	if total < MinWeightKg || total > MaxWeightKg {
		return fmt.Errorf("%w: declared weight must be between %vkg and %vkg", ErrValidation, MinWeightKg, MaxWeightKg)
	}

	return nil
}

// validateTimeSlot checks the "HH:MM-HH:MM" shape and the pickup window:
// slots start between 08:00 and 17:59 and must end after they start.
func validateTimeSlot(slot string) error {
	start, end, ok := strings.Cut(slot, "-")
	if !ok {
		return fmt.Errorf("%w: time slot must look like 09:00-10:00", ErrValidation)
	}

	startH, startM, err := parseClock(start)
	if err != nil {
		return err
	}

	endH, endM, err := parseClock(end)
	if err != nil {
		return err
	}

	if startH < SlotOpenHour || startH >= SlotCloseHour {
		return fmt.Errorf("%w: slots must start between 08:00 and 18:00", ErrValidation)
	}

	if endH*60+endM <= startH*60+startM {
		return fmt.Errorf("%w: time slot must end after it starts", ErrValidation)
	}

	return nil
}

func parseClock(v string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(v), ":")
	if ok {
		hour, err = strconv.Atoi(h)
		if err == nil {
			minute, err = strconv.Atoi(m)
		}
	}

	if !ok || err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: invalid time %q", ErrValidation, v)
	}

	return hour, minute, nil
}
