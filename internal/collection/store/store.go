// Package store persists the full collection-request set as a single JSON
// document, read-modify-written under a mutex.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/storage"
)

const requestsKey = "recyclehub:collections"

type Store struct {
	kv storage.KV
	mu sync.Mutex
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

type entryRecord struct {
	Kind      material.Kind `json:"kind"`
	Kilograms float64       `json:"kilograms"`
}

type record struct {
	ID              uuid.UUID         `json:"id"`
	RequesterID     uuid.UUID         `json:"requester_id"`
	Materials       []entryRecord     `json:"materials"`
	TotalWeight     float64           `json:"total_weight"`
	Address         string            `json:"address"`
	Date            time.Time         `json:"date"`
	TimeSlot        string            `json:"time_slot"`
	Notes           string            `json:"notes,omitempty"`
	Photos          []string          `json:"photos,omitempty"`
	Status          collection.Status `json:"status"`
	CollectorID     *uuid.UUID        `json:"collector_id,omitempty"`
	ActualWeight    *float64          `json:"actual_weight,omitempty"`
	PointsAwarded   float64           `json:"points_awarded,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
}

func (s *Store) CreateRequest(ctx context.Context, r *collection.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()

	records = append(records, toRecord(r))

	return s.save(ctx, records)
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*collection.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == id {
			return fromRecord(records[i]), nil
		}
	}

	return nil, collection.ErrNotFound
}

func (s *Store) UpdateRequest(ctx context.Context, r *collection.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID == r.ID {
			now := time.Now().UTC()
			r.UpdatedAt = &now
			records[i] = toRecord(r)

			return s.save(ctx, records)
		}
	}

	return collection.ErrNotFound
}

func (s *Store) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID == id {
			records = append(records[:i], records[i+1:]...)
			return s.save(ctx, records)
		}
	}

	return collection.ErrNotFound
}

func (s *Store) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*collection.Request, error) {
	return s.list(ctx, func(r record) bool {
		return r.RequesterID == requesterID
	})
}

// ListAvailable matches requested-state collections whose address contains
// the city, ignoring case and diacritics so "Médina" matches "medina".
func (s *Store) ListAvailable(ctx context.Context, city string) ([]*collection.Request, error) {
	needle := foldText(city)

	return s.list(ctx, func(r record) bool {
		return r.Status == collection.StatusRequested && strings.Contains(foldText(r.Address), needle)
	})
}

func (s *Store) ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]*collection.Request, error) {
	return s.list(ctx, func(r record) bool {
		return r.CollectorID != nil && *r.CollectorID == collectorID
	})
}

func (s *Store) list(ctx context.Context, keep func(record) bool) ([]*collection.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var out []*collection.Request

	for i := range records {
		if keep(records[i]) {
			out = append(out, fromRecord(records[i]))
		}
	}

	return out, nil
}

func (s *Store) load(ctx context.Context) ([]record, error) {
	blob, err := s.kv.Load(ctx, requestsKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("loading collections: %w", err)
	}

	var records []record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("decoding collections: %w", err)
	}

	return records, nil
}

func (s *Store) save(ctx context.Context, records []record) error {
	if records == nil {
		records = []record{}
	}

	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding collections: %w", err)
	}

	if err := s.kv.Save(ctx, requestsKey, blob); err != nil {
		return fmt.Errorf("saving collections: %w", err)
	}

	return nil
}

func toRecord(r *collection.Request) record {
	rec := record{
		ID:              r.ID,
		RequesterID:     r.RequesterID,
		Materials:       make([]entryRecord, len(r.Materials)),
		TotalWeight:     r.TotalWeight,
		Address:         r.Address,
		Date:            r.Date,
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
		rec.Materials[i] = entryRecord(e)
	}

	return rec
}

func fromRecord(rec record) *collection.Request {
	r := &collection.Request{
		ID:              rec.ID,
		RequesterID:     rec.RequesterID,
		Materials:       make([]material.Entry, len(rec.Materials)),
		TotalWeight:     rec.TotalWeight,
		Address:         rec.Address,
		Date:            rec.Date,
		TimeSlot:        rec.TimeSlot,
		Notes:           rec.Notes,
		Photos:          rec.Photos,
		Status:          rec.Status,
		CollectorID:     rec.CollectorID,
		ActualWeight:    rec.ActualWeight,
		PointsAwarded:   rec.PointsAwarded,
		RejectionReason: rec.RejectionReason,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}

	for i, e := range rec.Materials {
		r.Materials[i] = material.Entry(e)
	}

	return r
}
