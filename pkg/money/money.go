package money

import (
	"fmt"
	"strings"
	"unicode"
)

// Cents represents a BDT amount in poisha (1/100 taka).
type Cents = int

// FormatBDT renders an amount of poisha as a taka string with thousands
// separators, e.g. 123456700 -> "৳1,234,567".
func FormatBDT(amount Cents) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	taka := amount / 100

	digits := fmt.Sprintf("%d", taka)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := "৳" + b.String()
	if negative {
		out = "-" + out
	}
	return out
}

// minLocalDigits is the smallest plausible Bangladeshi subscriber number.
const minLocalDigits = 10

// NormalizePhone strips formatting from a Bangladeshi phone number and
// returns it in local 0-prefixed form. Accepts +880, 880 and 0 prefixes.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		} else if r != ' ' && r != '-' && r != '(' && r != ')' && r != '+' {
			return "", fmt.Errorf("phone contains invalid character %q", r)
		}
	}
	number := digits.String()

	switch {
	case strings.HasPrefix(number, "880"):
		number = "0" + number[3:]
	case hasPlus:
		return "", fmt.Errorf("unsupported country prefix")
	case !strings.HasPrefix(number, "0"):
		number = "0" + number
	}

	if DigitCount(number) < minLocalDigits {
		return "", fmt.Errorf("phone must have at least %d digits", minLocalDigits)
	}
	return number, nil
}

// DigitCount reports how many decimal digits appear in the string.
func DigitCount(raw string) int {
	count := 0
	for _, r := range raw {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}
