// Package material defines the recyclable material kinds and the
// points-per-kilogram table used to reward validated collections.
package material

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies a recyclable material.
type Kind string

const (
	KindPlastic Kind = "plastic"
	KindGlass   Kind = "glass"
	KindPaper   Kind = "paper"
	KindMetal   Kind = "metal"
)

// Kinds lists every supported material kind.
var Kinds = []Kind{KindPlastic, KindGlass, KindPaper, KindMetal}

// Valid reports whether k is a supported material kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPlastic, KindGlass, KindPaper, KindMetal:
		return true
	}

	return false
}

// Entry is a (material kind, kilograms) pair as declared on a collection request.
type Entry struct {
	Kind      Kind
	Kilograms float64
}

// PointsTable maps a material kind to points awarded per kilogram.
// The table is configuration: the values shipped as defaults come from the
// product rules, not from this package.
type PointsTable map[Kind]float64

// Decode implements envconfig.Decoder. The expected format is
// "plastic:2,glass:1,paper:1,metal:5".
func (t *PointsTable) Decode(value string) error {
	table := make(PointsTable)

	for _, pair := range strings.Split(value, ",") {
		kind, rate, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return fmt.Errorf("invalid points table entry %q", pair)
		}

		perKg, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return fmt.Errorf("invalid points rate %q: %w", rate, err)
		}

		table[Kind(strings.ToLower(strings.TrimSpace(kind)))] = perKg
	}

	*t = table

	return nil
}

// PerKg returns the points awarded per kilogram of the given kind.
// Unknown kinds earn nothing, mirroring the product rule that only
// listed materials are rewarded.
func (t PointsTable) PerKg(kind Kind) float64 {
	return t[kind]
}

// Points computes the points earned by the given entries, rounded to two
// decimal places per entry. Decimal arithmetic keeps ratio-scaled weights
// from accumulating binary-float drift.
func (t PointsTable) Points(entries []Entry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(entryPoints(e, t.PerKg(e.Kind)))
	}

	f, _ := total.Float64()

	return f
}

// EntryPoints returns the points earned by a single entry, rounded to two
// decimal places.
func (t PointsTable) EntryPoints(e Entry) float64 {
	f, _ := entryPoints(e, t.PerKg(e.Kind)).Float64()
	return f
}

func entryPoints(e Entry, perKg float64) decimal.Decimal {
	return decimal.NewFromFloat(e.Kilograms).
		Mul(decimal.NewFromFloat(perKg)).
		Round(2)
}

// TotalWeight sums the declared kilograms of the entries.
func TotalWeight(entries []Entry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Kilograms))
	}

	f, _ := total.Float64()

	return f
}

// Scale redistributes a measured total weight over the declared entries,
// preserving the declared material mix. Kilograms are rounded to three
// decimal places. The declared total must be non-zero.
func Scale(entries []Entry, actualKilograms float64) []Entry {
	declared := decimal.NewFromFloat(TotalWeight(entries))
	ratio := decimal.NewFromFloat(actualKilograms).Div(declared)

	scaled := make([]Entry, len(entries))
	for i, e := range entries {
		kg, _ := decimal.NewFromFloat(e.Kilograms).Mul(ratio).Round(3).Float64()
		scaled[i] = Entry{Kind: e.Kind, Kilograms: kg}
	}

	return scaled
}
