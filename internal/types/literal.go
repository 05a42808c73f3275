package types

import (
	"math/big"
	"strings"
)

// NormalizeBigIntText canonicalizes BigInt literal text (a trailing `n` and a
// leading `-` are accepted): text with a 0x/0b/0o radix prefix (case
// insensitive) is rewritten in decimal, and leading zeros are stripped, so
// `0x10n`, `007n` and `7n`-style spellings of one value intern to the same
// Literal (spec 4.1).
func NormalizeBigIntText(s string) string {
	s = strings.TrimSuffix(s, "n")
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o") {
		if v, ok := new(big.Int).SetString(lower, 0); ok {
			s = v.String()
		}
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		digits = "0"
	}
	if neg && digits != "0" {
		return "-" + digits
	}
	return digits
}
