// Package store persists the account registry as a single JSON document.
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
	"github.com/recyclehub/recyclehub/internal/user"
)

const usersKey = "recyclehub:users"

type Store struct {
	kv storage.KV
	mu sync.Mutex
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

type record struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	City         string     `json:"city,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Role         user.Role  `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()

	records = append(records, record(*u))

	return s.save(ctx, records)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == id {
			u := user.User(records[i])
			return &u, nil
		}
	}

	return nil, user.ErrNotFound
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Email == email {
			u := user.User(records[i])
			return &u, nil
		}
	}

	return nil, user.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID == u.ID {
			now := time.Now().UTC()
			u.UpdatedAt = &now
			records[i] = record(*u)

			return s.save(ctx, records)
		}
	}

	return user.ErrNotFound
}

func (s *Store) load(ctx context.Context) ([]record, error) {
	blob, err := s.kv.Load(ctx, usersKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("loading users: %w", err)
	}

	var records []record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	return records, nil
}

func (s *Store) save(ctx context.Context, records []record) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}

	if err := s.kv.Save(ctx, usersKey, blob); err != nil {
		return fmt.Errorf("saving users: %w", err)
	}

	return nil
}
