package points_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/points"
)

func newService(t *testing.T, repo points.Repository) *points.Service {
	t.Helper()

	var table material.PointsTable
	require.NoError(t, table.Decode("plastic:2,glass:1,paper:1,metal:5"))

	var tiers points.TierTable
	require.NoError(t, tiers.Decode("100:50,200:120,500:350"))

	return points.NewService(repo, table, tiers)
}

func TestService_Accrue(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name       string
		entries    []material.Entry
		setupMock  func(m *points.MockRepository)
		wantPoints float64
		wantErr    bool
	}

	tests := []testCase{
		{
			name: "FreshLedger",
			entries: []material.Entry{
				{Kind: material.KindPlastic, Kilograms: 4},
				{Kind: material.KindGlass, Kilograms: 4},
			},
			setupMock: func(m *points.MockRepository) {
				m.EXPECT().
					GetLedger(gomock.Any(), userID).
					Return(&points.Ledger{UserID: userID}, nil)
				m.EXPECT().
					SaveLedger(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *points.Ledger) error {
						assert.Equal(t, 12.0, l.Balance)
						require.Len(t, l.Transactions, 1)
						assert.Equal(t, points.KindAccrual, l.Transactions[0].Kind)
						assert.Len(t, l.Transactions[0].Materials, 2)
						return nil
					})
			},
			wantPoints: 12,
		},
		{
			name: "ExistingBalancePrependsTransaction",
			entries: []material.Entry{
				{Kind: material.KindMetal, Kilograms: 1},
			},
			setupMock: func(m *points.MockRepository) {
				m.EXPECT().
					GetLedger(gomock.Any(), userID).
					Return(&points.Ledger{
						UserID:  userID,
						Balance: 30,
						Transactions: []points.Transaction{
							{ID: uuid.New(), Kind: points.KindAccrual, Points: 30},
						},
					}, nil)
				m.EXPECT().
					SaveLedger(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *points.Ledger) error {
						assert.Equal(t, 35.0, l.Balance)
						require.Len(t, l.Transactions, 2)
						assert.Equal(t, 5.0, l.Transactions[0].Points)
						assert.Equal(t, l.Balance, l.Replayed())
						return nil
					})
			},
			wantPoints: 5,
		},
		{
			name:    "SaveFails",
			entries: []material.Entry{{Kind: material.KindPaper, Kilograms: 1}},
			setupMock: func(m *points.MockRepository) {
				m.EXPECT().
					GetLedger(gomock.Any(), userID).
					Return(&points.Ledger{UserID: userID}, nil)
				m.EXPECT().
					SaveLedger(gomock.Any(), gomock.Any()).
					Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := points.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := newService(t, repo)
			tx, err := svc.Accrue(context.Background(), userID, tt.entries)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, tx)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, tx.Points)
			assert.NotEmpty(t, tx.ID)
		})
	}
}

func TestService_Redeem(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name      string
		pointCost float64
		setupMock func(m *points.MockRepository)
		wantValue float64
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "Success",
			pointCost: 100,
			setupMock: func(m *points.MockRepository) {
				m.EXPECT().
					GetLedger(gomock.Any(), userID).
					Return(&points.Ledger{UserID: userID, Balance: 150}, nil)
				m.EXPECT().
					SaveLedger(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *points.Ledger) error {
						assert.Equal(t, 50.0, l.Balance)
						require.Len(t, l.Transactions, 1)
						assert.Equal(t, points.KindRedemption, l.Transactions[0].Kind)
						assert.Equal(t, -100.0, l.Transactions[0].Points)
						require.NotNil(t, l.Transactions[0].Reward)
						assert.Equal(t, 50.0, l.Transactions[0].Reward.Value)
						return nil
					})
			},
			wantValue: 50,
		},
		{
			name:      "OffTierAmountFailsBeforeBalanceCheck",
			pointCost: 150,
			wantErr:   points.ErrUnknownTier,
		},
		{
			name:      "InsufficientBalance",
			pointCost: 200,
			setupMock: func(m *points.MockRepository) {
				m.EXPECT().
					GetLedger(gomock.Any(), userID).
					Return(&points.Ledger{UserID: userID, Balance: 150}, nil)
			},
			wantErr: points.ErrInsufficientPoints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := points.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := newService(t, repo)
			got, err := svc.Redeem(context.Background(), userID, tt.pointCost)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.pointCost, got.Points)
		})
	}
}

func TestService_BalanceAndHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	ledger := &points.Ledger{
		UserID:  userID,
		Balance: 42,
		Transactions: []points.Transaction{
			{Kind: points.KindRedemption, Points: -100},
			{Kind: points.KindAccrual, Points: 142},
		},
	}

	repo := points.NewMockRepository(ctrl)
	repo.EXPECT().GetLedger(gomock.Any(), userID).Return(ledger, nil).Times(2)

	svc := newService(t, repo)

	balance, err := svc.Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 42.0, balance)

	history, err := svc.History(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, points.KindRedemption, history[0].Kind)
	assert.Equal(t, ledger.Balance, ledger.Replayed())
}

func TestTierTable_Decode(t *testing.T) {
	var tiers points.TierTable
	require.NoError(t, tiers.Decode("500:350,100:50,200:120"))

	// Sorted by cost regardless of input order.
	require.Len(t, tiers, 3)
	assert.Equal(t, points.Tier{Points: 100, Value: 50}, tiers[0])
	assert.Equal(t, points.Tier{Points: 500, Value: 350}, tiers[2])

	tier, ok := tiers.Find(200)
	assert.True(t, ok)
	assert.Equal(t, 120.0, tier.Value)

	_, ok = tiers.Find(150)
	assert.False(t, ok)

	assert.Error(t, tiers.Decode("100"))
	assert.Error(t, tiers.Decode("abc:50"))
}
