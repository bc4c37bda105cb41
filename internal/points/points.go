// Package points implements the per-user loyalty ledger: an append-only
// transaction history plus a running balance mutated only by accruals
// (validated collections) and redemptions (voucher exchanges).
package points

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recyclehub/recyclehub/internal/material"
)

// TransactionKind distinguishes the two balance mutators.
type TransactionKind string

const (
	KindAccrual    TransactionKind = "accrual"
	KindRedemption TransactionKind = "redemption"
)

// MaterialPoints is the per-material breakdown attached to an accrual.
type MaterialPoints struct {
	Kind      material.Kind
	Kilograms float64
	Points    float64
}

// RewardDetail is attached to a redemption transaction.
type RewardDetail struct {
	Value  float64
	Points float64
}

// Transaction is one ledger entry. Points is the signed delta: positive for
// accruals, negative for redemptions.
type Transaction struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Kind        TransactionKind
	Points      float64
	Description string
	Materials   []MaterialPoints
	Reward      *RewardDetail
}

// Ledger is a user's point account. Transactions are ordered most recent first.
type Ledger struct {
	UserID       uuid.UUID
	Balance      float64
	Transactions []Transaction
}

// Replayed recomputes the balance by summing every transaction delta.
// It must always equal Balance; the ledger is repairable from history alone.
func (l *Ledger) Replayed() float64 {
	total := decimal.Zero
	for _, tx := range l.Transactions {
		total = total.Add(decimal.NewFromFloat(tx.Points))
	}

	f, _ := total.Float64()

	return f
}

// Tier is a configured (point cost, monetary value) redemption pair.
// Redemptions are only accepted for exact tier costs.
type Tier struct {
	Points float64
	Value  float64
}

// TierTable is the configured set of redemption tiers, sorted by point cost.
type TierTable []Tier

// Decode implements envconfig.Decoder. The expected format is
// "100:50,200:120,500:350" (points:value pairs).
func (t *TierTable) Decode(value string) error {
	var table TierTable

	for _, pair := range strings.Split(value, ",") {
		cost, val, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return fmt.Errorf("invalid tier entry %q", pair)
		}

		points, err := strconv.ParseFloat(cost, 64)
		if err != nil {
			return fmt.Errorf("invalid tier cost %q: %w", cost, err)
		}

		worth, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid tier value %q: %w", val, err)
		}

		table = append(table, Tier{Points: points, Value: worth})
	}

	sort.Slice(table, func(i, j int) bool { return table[i].Points < table[j].Points })
	*t = table

	return nil
}

// Find returns the tier matching the exact point cost.
func (t TierTable) Find(pointCost float64) (Tier, bool) {
	for _, tier := range t {
		if tier.Points == pointCost {
			return tier, true
		}
	}

	return Tier{}, false
}
