// Package voucher converts point balances into redeemable purchase vouchers.
// Vouchers are immutable once issued; document rendering is a boundary
// concern that only needs the Voucher record.
package voucher

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Voucher is an issued reward. It has no lifecycle after issuance.
type Voucher struct {
	ID          uuid.UUID
	Number      string // Printable reference, e.g. RH-17259301-0042
	Value       float64
	PointsSpent float64
	Beneficiary string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// number builds the printable voucher reference from the issuance time.
func number(now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}

	return fmt.Sprintf("RH-%s-%04d", ts, rand.Intn(10000))
}
