package mapping

import (
	"strings"
	"unicode"
)

// normalizeIdent folds an identifier for field matching:
// OrderID, order_id and orderId all become "orderid".
func normalizeIdent(s string) string {
	return strings.ToLower(strings.Join(splitWords(s), ""))
}

// splitWords splits CamelCase, camelCase and separated identifiers into words.
//   - "OrderID" -> ["Order", "ID"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "price_cents" -> ["price", "cents"]
func splitWords(s string) []string {
	var (
		words   []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}
		if i > 0 && startsWord(runes, i) {
			flush()
		}
		current.WriteRune(r)
	}
	flush()

	return words
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) {
		return false
	}
	// orderID: lower to upper
	if !unicode.IsUpper(prev) && !isSeparator(prev) {
		return true
	}
	// XMLParser: end of an acronym
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
