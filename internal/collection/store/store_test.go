package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/collection/store"
	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/storage"
)

func seedRequest(t *testing.T, s *store.Store, requesterID uuid.UUID, address string) *collection.Request {
	t.Helper()

	r := &collection.Request{
		RequesterID: requesterID,
		Materials:   []material.Entry{{Kind: material.KindPlastic, Kilograms: 2}},
		TotalWeight: 2,
		Address:     address,
		Date:        time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		TimeSlot:    "09:00-11:00",
		Status:      collection.StatusRequested,
	}
	require.NoError(t, s.CreateRequest(context.Background(), r))
	require.NotEmpty(t, r.ID)

	return r
}

func TestStore_RoundTrip(t *testing.T) {
	s := store.New(storage.NewMemory())
	ctx := context.Background()

	created := seedRequest(t, s, uuid.New(), "12 Rue de la Liberté, Marrakech")

	got, err := s.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.RequesterID, got.RequesterID)
	assert.Equal(t, created.Materials, got.Materials)
	assert.Equal(t, collection.StatusRequested, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Nil(t, got.UpdatedAt)

	got.Status = collection.StatusAssigned
	collectorID := uuid.New()
	got.CollectorID = &collectorID
	require.NoError(t, s.UpdateRequest(ctx, got))

	updated, err := s.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusAssigned, updated.Status)
	require.NotNil(t, updated.CollectorID)
	assert.Equal(t, collectorID, *updated.CollectorID)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestStore_NotFound(t *testing.T) {
	s := store.New(storage.NewMemory())
	ctx := context.Background()

	_, err := s.GetRequest(ctx, uuid.New())
	assert.ErrorIs(t, err, collection.ErrNotFound)

	err = s.UpdateRequest(ctx, &collection.Request{ID: uuid.New()})
	assert.ErrorIs(t, err, collection.ErrNotFound)

	err = s.DeleteRequest(ctx, uuid.New())
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := store.New(storage.NewMemory())
	ctx := context.Background()

	created := seedRequest(t, s, uuid.New(), "Gueliz, Marrakech")
	require.NoError(t, s.DeleteRequest(ctx, created.ID))

	_, err := s.GetRequest(ctx, created.ID)
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestStore_ListByRequester(t *testing.T) {
	s := store.New(storage.NewMemory())
	ctx := context.Background()

	mine := uuid.New()
	seedRequest(t, s, mine, "Gueliz, Marrakech")
	seedRequest(t, s, mine, "Hivernage, Marrakech")
	seedRequest(t, s, uuid.New(), "Agdal, Rabat")

	got, err := s.ListByRequester(ctx, mine)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_ListAvailable(t *testing.T) {
	s := store.New(storage.NewMemory())
	ctx := context.Background()

	seedRequest(t, s, uuid.New(), "Quartier de la Médina, Marrakech")
	inRabat := seedRequest(t, s, uuid.New(), "Agdal, Rabat")

	claimed := seedRequest(t, s, uuid.New(), "Gueliz, Marrakech")
	claimed.Status = collection.StatusAssigned
	collectorID := uuid.New()
	claimed.CollectorID = &collectorID
	require.NoError(t, s.UpdateRequest(ctx, claimed))

	type testCase struct {
		name string
		city string
		want int
	}

	tests := []testCase{
		{name: "ExactCity", city: "Marrakech", want: 1},
		{name: "Lowercase", city: "marrakech", want: 1},
		{name: "FoldedDiacritics", city: "medina", want: 1},
		{name: "OtherCity", city: "Rabat", want: 1},
		{name: "NoMatch", city: "Tangier", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListAvailable(ctx, tt.city)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	got, err := s.ListAvailable(ctx, "Rabat")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inRabat.ID, got[0].ID)

	assigned, err := s.ListByCollector(ctx, collectorID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, claimed.ID, assigned[0].ID)
}
