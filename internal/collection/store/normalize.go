package store

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks after NFD decomposition, turning
// "Médina" into "Medina". Addresses in the field data are French, where
// users type city names with and without accents interchangeably.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldText(v string) string {
	folded, _, err := transform.String(foldTransformer, v)
	if err != nil {
		folded = v
	}

	return strings.ToLower(folded)
}
