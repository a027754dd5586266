// Package grading implements deterministic multiple-choice grading: answer
// normalization and per-question scoring over the authoritative question bank.
package grading

import (
	"strconv"
	"strings"
)

// NormalizeAnswer canonicalizes a raw multiple-choice answer into one of the
// option symbols A-D. Stored correct answers and candidate answers arrive in
// mixed encodings (numeric indices, letters, "option_c" style markers), so the
// same normalization must be applied to both sides before comparison.
//
// Rules, first match wins: an all-digit token in range 1-4 maps positionally
// to A-D; an "option_"-prefixed token keeps only the uppercased remainder; a
// single letter a-d is uppercased; anything else falls through to its trimmed
// uppercase form, which simply never matches a real option symbol.
func NormalizeAnswer(raw string) string {
	answer := strings.TrimSpace(raw)

	if isAllDigits(answer) {
		if index, err := strconv.Atoi(answer); err == nil && index >= 1 && index <= 4 {
			return string(rune('A' + index - 1))
		}
	}

	lower := strings.ToLower(answer)
	if strings.HasPrefix(lower, "option_") {
		return strings.ToUpper(strings.TrimSpace(answer[len("option_"):]))
	}

	if len(answer) == 1 && lower >= "a" && lower <= "d" {
		return strings.ToUpper(answer)
	}

	return strings.ToUpper(answer)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
