package services

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatBRL formats a float64 amount into Brazilian Real notation:
// thousands separated with dots, comma decimal separator, always two decimal
// places (e.g. R$ 1.234.567,89).
func FormatBRL(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)

	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := "R$ " + groupThousands(intPart) + "," + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts dots into an integer string every 3 digits from the
// right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "." + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + "." + result
}

// FormatPercent renders a percentage without trailing zeros (10%, 7.5%).
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// DescribeAdjustment renders a ledger or line adjustment for the read model.
// An empty kind means no adjustment and yields "".
func DescribeAdjustment(kind string, value float64) string {
	switch kind {
	case AdjustPercent:
		return FormatPercent(value)
	case AdjustFixed:
		return "= " + FormatBRL(value)
	case AdjustHonorarium:
		return "honorarium " + FormatPercent(value)
	}
	return ""
}
