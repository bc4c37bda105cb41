package voucher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/points"
)

// Redeemer deducts points against a configured tier. Failures pass through
// the issuer unchanged.
type Redeemer interface {
	Redeem(ctx context.Context, userID uuid.UUID, pointCost float64) (*points.Redemption, error)
}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=voucher
type Repository interface {
	AppendVoucher(ctx context.Context, userID uuid.UUID, v *Voucher) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Voucher, error)
}

type Issuer struct {
	ledger   Redeemer
	repo     Repository
	validity time.Duration
	now      func() time.Time
}

func NewIssuer(ledger Redeemer, repo Repository, validity time.Duration) *Issuer {
	return &Issuer{
		ledger:   ledger,
		repo:     repo,
		validity: validity,
		now:      time.Now,
	}
}

// Issue exchanges pointCost from the user's ledger and records the resulting
// voucher. The ledger decides whether the exchange is allowed; its errors are
// propagated unchanged.
func (i *Issuer) Issue(ctx context.Context, userID uuid.UUID, pointCost float64, beneficiary string) (*Voucher, error) {
	redemption, err := i.ledger.Redeem(ctx, userID, pointCost)
	if err != nil {
		return nil, err
	}

	now := i.now()

	v := &Voucher{
		ID:          uuid.New(),
		Number:      number(now),
		Value:       redemption.Value,
		PointsSpent: redemption.Points,
		Beneficiary: beneficiary,
		IssuedAt:    now,
		ExpiresAt:   now.Add(i.validity),
	}

	if err := i.repo.AppendVoucher(ctx, userID, v); err != nil {
		return nil, fmt.Errorf("recording voucher: %w", err)
	}

	return v, nil
}

// List returns the user's issued vouchers, most recent first.
func (i *Issuer) List(ctx context.Context, userID uuid.UUID) ([]*Voucher, error) {
	return i.repo.ListByUser(ctx, userID)
}
