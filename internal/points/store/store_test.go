package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/points"
	"github.com/recyclehub/recyclehub/internal/points/store"
	"github.com/recyclehub/recyclehub/internal/storage"
)

func TestStore_GetLedger_Fresh(t *testing.T) {
	s := store.New(storage.NewMemory())

	userID := uuid.New()
	ledger, err := s.GetLedger(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, ledger.UserID)
	assert.Zero(t, ledger.Balance)
	assert.Empty(t, ledger.Transactions)
}

func TestStore_SaveAndReload(t *testing.T) {
	s := store.New(storage.NewMemory())
	ctx := context.Background()

	userID := uuid.New()
	ledger := &points.Ledger{
		UserID:  userID,
		Balance: 12,
		Transactions: []points.Transaction{
			{
				ID:          uuid.New(),
				CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
				Kind:        points.KindAccrual,
				Points:      12,
				Description: "Points earned for a validated collection",
				Materials: []points.MaterialPoints{
					{Kind: material.KindPlastic, Kilograms: 4, Points: 8},
					{Kind: material.KindGlass, Kilograms: 4, Points: 4},
				},
			},
		},
	}

	require.NoError(t, s.SaveLedger(ctx, ledger))

	got, err := s.GetLedger(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Balance, got.Balance)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, ledger.Transactions[0].Materials, got.Transactions[0].Materials)
	assert.Equal(t, got.Balance, got.Replayed())
}

func TestStore_LedgersAreIsolatedPerUser(t *testing.T) {
	s := store.New(storage.NewMemory())
	ctx := context.Background()

	first := &points.Ledger{UserID: uuid.New(), Balance: 10}
	second := &points.Ledger{UserID: uuid.New(), Balance: 99}

	require.NoError(t, s.SaveLedger(ctx, first))
	require.NoError(t, s.SaveLedger(ctx, second))

	got, err := s.GetLedger(ctx, first.UserID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Balance)
}
