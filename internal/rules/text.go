package rules

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// extractURLs returns all URL-like substrings in text.
func extractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// foldText lowercases text and strips diacritics, so that "Máximo" and
// "maximo" match the same rules. Folding failures fall back to plain
// lowercasing.
func foldText(text string) string {
	lower := strings.ToLower(text)
	// NFD + strip combining marks + NFC. The chain is rebuilt per call;
	// transform.Chain values are not safe for concurrent use.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, lower)
	if err != nil {
		return lower
	}
	return folded
}

// tokenize splits folded text into whitespace-separated tokens.
func tokenize(text string) []string {
	return strings.Fields(foldText(text))
}
