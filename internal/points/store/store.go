// Package store persists point ledgers as one JSON document per user.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/points"
	"github.com/recyclehub/recyclehub/internal/storage"
)

const keyPrefix = "recyclehub:ledger:"

type Store struct {
	kv storage.KV

	// Serializes the read-modify-write cycle over a ledger document.
	mu sync.Mutex
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

type transactionRecord struct {
	ID          uuid.UUID              `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	Kind        points.TransactionKind `json:"kind"`
	Points      float64                `json:"points"`
	Description string                 `json:"description"`
	Materials   []materialRecord       `json:"materials,omitempty"`
	Reward      *rewardRecord          `json:"reward,omitempty"`
}

type materialRecord struct {
	Kind      material.Kind `json:"kind"`
	Kilograms float64       `json:"kilograms"`
	Points    float64       `json:"points"`
}

type rewardRecord struct {
	Value  float64 `json:"value"`
	Points float64 `json:"points"`
}

type ledgerRecord struct {
	UserID       uuid.UUID           `json:"user_id"`
	Balance      float64             `json:"balance"`
	Transactions []transactionRecord `json:"transactions"`
}

func (s *Store) GetLedger(ctx context.Context, userID uuid.UUID) (*points.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, userID)
}

func (s *Store) SaveLedger(ctx context.Context, ledger *points.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := ledgerRecord{
		UserID:       ledger.UserID,
		Balance:      ledger.Balance,
		Transactions: make([]transactionRecord, len(ledger.Transactions)),
	}

	for i, tx := range ledger.Transactions {
		record.Transactions[i] = toRecord(tx)
	}

	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	if err := s.kv.Save(ctx, keyPrefix+ledger.UserID.String(), blob); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}

	return nil
}

func (s *Store) load(ctx context.Context, userID uuid.UUID) (*points.Ledger, error) {
	blob, err := s.kv.Load(ctx, keyPrefix+userID.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &points.Ledger{UserID: userID}, nil
		}

		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	var record ledgerRecord
	if err := json.Unmarshal(blob, &record); err != nil {
		return nil, fmt.Errorf("decoding ledger: %w", err)
	}

	ledger := &points.Ledger{
		UserID:       record.UserID,
		Balance:      record.Balance,
		Transactions: make([]points.Transaction, len(record.Transactions)),
	}

	for i, tx := range record.Transactions {
		ledger.Transactions[i] = fromRecord(tx)
	}

	return ledger, nil
}

func toRecord(tx points.Transaction) transactionRecord {
	record := transactionRecord{
		ID:          tx.ID,
		CreatedAt:   tx.CreatedAt,
		Kind:        tx.Kind,
		Points:      tx.Points,
		Description: tx.Description,
	}

	for _, m := range tx.Materials {
		record.Materials = append(record.Materials, materialRecord(m))
	}

	if tx.Reward != nil {
		record.Reward = &rewardRecord{Value: tx.Reward.Value, Points: tx.Reward.Points}
	}

	return record
}

func fromRecord(record transactionRecord) points.Transaction {
	tx := points.Transaction{
		ID:          record.ID,
		CreatedAt:   record.CreatedAt,
		Kind:        record.Kind,
		Points:      record.Points,
		Description: record.Description,
	}

	for _, m := range record.Materials {
		tx.Materials = append(tx.Materials, points.MaterialPoints(m))
	}

	if record.Reward != nil {
		tx.Reward = &points.RewardDetail{Value: record.Reward.Value, Points: record.Reward.Points}
	}

	return tx
}
