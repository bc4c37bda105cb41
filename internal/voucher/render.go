package voucher

import (
	"fmt"
	"strings"
)

// RenderText produces a plain-text voucher document. The real application
// hands the Voucher record to an external PDF renderer; this artifact exists
// so the download endpoint has something self-contained to serve.
func RenderText(v *Voucher) []byte {
	var b strings.Builder

	line := strings.Repeat("=", 46)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "              RECYCLEHUB VOUCHER")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Value:        %.0f DH\n", v.Value)
	fmt.Fprintf(&b, "Beneficiary:  %s\n", v.Beneficiary)
	fmt.Fprintf(&b, "Points spent: %.0f\n", v.PointsSpent)
	fmt.Fprintf(&b, "Issued:       %s\n", v.IssuedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Expires:      %s\n", v.ExpiresAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Reference:    %s\n", v.Number)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "Valid at all partner stores. Single use only.")
	fmt.Fprintln(&b, "Not refundable or exchangeable.")

	return []byte(b.String())
}
