package utils

import (
	"strings"
	"unicode"
)

// ToSnakeCase turns a label or identifier into a snake_case name:
// "Loan Amount" and "loanAmount" both become "loan_amount". Acronyms stay
// together ("ARVPercent" -> "arv_percent") and runs of separators collapse.
func ToSnakeCase(s string) string {
	runes := []rune(strings.TrimSpace(s))
	var result strings.Builder
	result.Grow(len(runes) + len(runes)/2)

	pendingSeparator := false
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSeparator = result.Len() > 0
			continue
		}

		if unicode.IsUpper(r) && i > 0 && result.Len() > 0 {
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextIsLower) {
				pendingSeparator = true
			}
		}

		if pendingSeparator {
			result.WriteRune('_')
			pendingSeparator = false
		}
		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}
