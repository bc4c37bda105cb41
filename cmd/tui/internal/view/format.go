package view

import (
	"context"
	"fmt"
	"time"
)

const storeTimeout = 5 * time.Second

// FormatWeight formats kilograms for display.
func FormatWeight(kg float64) string {
	return fmt.Sprintf("%.1f kg", kg)
}

// FormatPoints formats a point amount for display.
func FormatPoints(points float64) string {
	return fmt.Sprintf("%.0f pts", points)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// StoreCtx returns a context with a standard timeout for storage operations.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
