package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/balkashynov/fiches/internal/models"
)

// NormalizeText trims a cell and collapses internal whitespace runs, the
// same way item and subject keys compare
func NormalizeText(s string) string {
	return models.CollapseSpace(s)
}

// fold lowercases s and strips diacritics ("Matière" -> "matiere")
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
