// Package store persists issued vouchers as one JSON document per user,
// most recent first.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/storage"
	"github.com/recyclehub/recyclehub/internal/voucher"
)

const keyPrefix = "recyclehub:vouchers:"

type Store struct {
	kv storage.KV
	mu sync.Mutex
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

type record struct {
	ID          uuid.UUID `json:"id"`
	Number      string    `json:"number"`
	Value       float64   `json:"value"`
	PointsSpent float64   `json:"points_spent"`
	Beneficiary string    `json:"beneficiary"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Store) AppendVoucher(ctx context.Context, userID uuid.UUID, v *voucher.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	records = append([]record{record(*v)}, records...)

	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding vouchers: %w", err)
	}

	if err := s.kv.Save(ctx, keyPrefix+userID.String(), blob); err != nil {
		return fmt.Errorf("saving vouchers: %w", err)
	}

	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID) ([]*voucher.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*voucher.Voucher, len(records))
	for i := range records {
		v := voucher.Voucher(records[i])
		out[i] = &v
	}

	return out, nil
}

func (s *Store) load(ctx context.Context, userID uuid.UUID) ([]record, error) {
	blob, err := s.kv.Load(ctx, keyPrefix+userID.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("loading vouchers: %w", err)
	}

	var records []record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("decoding vouchers: %w", err)
	}

	return records, nil
}
