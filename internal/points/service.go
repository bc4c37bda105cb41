package points

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recyclehub/recyclehub/internal/material"
)

var (
	// ErrInsufficientPoints is returned when a redemption would drive the
	// balance negative.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrUnknownTier is returned when a redemption cost matches no
	// configured tier.
	ErrUnknownTier = errors.New("no reward tier for requested points")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=points
type Repository interface {
	// GetLedger returns the user's ledger, or a fresh zero-balance ledger
	// if the user has no history yet.
	GetLedger(ctx context.Context, userID uuid.UUID) (*Ledger, error)
	SaveLedger(ctx context.Context, ledger *Ledger) error
}

// Redemption is the outcome of a successful point exchange, sufficient for
// voucher issuance.
type Redemption struct {
	Value  float64
	Points float64
}

type Service struct {
	repo  Repository
	table material.PointsTable
	tiers TierTable
	now   func() time.Time
}

func NewService(repo Repository, table material.PointsTable, tiers TierTable) *Service {
	return &Service{
		repo:  repo,
		table: table,
		tiers: tiers,
		now:   time.Now,
	}
}

// Table exposes the configured points-per-kg table.
func (s *Service) Table() material.PointsTable {
	return s.table
}

// Tiers exposes the configured redemption tiers.
func (s *Service) Tiers() TierTable {
	return s.tiers
}

// Accrue awards points for the given collected materials, appending an accrual
// transaction with the per-material breakdown. The ledger is persisted before
// the call returns.
func (s *Service) Accrue(ctx context.Context, userID uuid.UUID, entries []material.Entry) (*Transaction, error) {
	ledger, err := s.repo.GetLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	breakdown := make([]MaterialPoints, len(entries))
	total := decimal.Zero

	for i, e := range entries {
		pts := s.table.EntryPoints(e)
		breakdown[i] = MaterialPoints{Kind: e.Kind, Kilograms: e.Kilograms, Points: pts}
		total = total.Add(decimal.NewFromFloat(pts))
	}

	earned, _ := total.Float64()

	tx := Transaction{
		ID:          uuid.New(),
		CreatedAt:   s.now(),
		Kind:        KindAccrual,
		Points:      earned,
		Description: "Points earned for a validated collection",
		Materials:   breakdown,
	}

	ledger.Transactions = append([]Transaction{tx}, ledger.Transactions...)
	ledger.Balance = add(ledger.Balance, earned)

	if err := s.repo.SaveLedger(ctx, ledger); err != nil {
		return nil, fmt.Errorf("saving ledger: %w", err)
	}

	return &tx, nil
}

// Redeem exchanges pointCost for the matching tier's monetary value. The tier
// lookup runs before the balance check, so an off-tier amount fails with
// ErrUnknownTier even when the balance could cover it.
func (s *Service) Redeem(ctx context.Context, userID uuid.UUID, pointCost float64) (*Redemption, error) {
	tier, ok := s.tiers.Find(pointCost)
	if !ok {
		return nil, fmt.Errorf("%w: %v points", ErrUnknownTier, pointCost)
	}

	ledger, err := s.repo.GetLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	if ledger.Balance < pointCost {
		return nil, fmt.Errorf("%w: balance %v, need %v", ErrInsufficientPoints, ledger.Balance, pointCost)
	}

	tx := Transaction{
		ID:          uuid.New(),
		CreatedAt:   s.now(),
		Kind:        KindRedemption,
		Points:      -pointCost,
		Description: "Points exchanged for a voucher",
		Reward:      &RewardDetail{Value: tier.Value, Points: pointCost},
	}

	ledger.Transactions = append([]Transaction{tx}, ledger.Transactions...)
	ledger.Balance = add(ledger.Balance, -pointCost)

	if err := s.repo.SaveLedger(ctx, ledger); err != nil {
		return nil, fmt.Errorf("saving ledger: %w", err)
	}

	return &Redemption{Value: tier.Value, Points: pointCost}, nil
}

// Balance returns the user's current point balance.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	ledger, err := s.repo.GetLedger(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading ledger: %w", err)
	}

	return ledger.Balance, nil
}

// History returns the user's transactions, most recent first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	ledger, err := s.repo.GetLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	return ledger.Transactions, nil
}

func add(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Float64()
	return f
}
