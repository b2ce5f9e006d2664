package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatINR formats an amount in Indian Rupee notation: after the rightmost
// three digits, digits are grouped in pairs (₹1,23,45,678.90).
func FormatINR(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	intPart, decPart, _ := strings.Cut(raw, ".")

	result := "₹" + indianGrouping(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

func indianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}
	return result
}

// Title turns catalog keys such as "box-cricket" into "Box Cricket".
func Title(key string) string {
	key = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(key))
	if key == "" {
		return ""
	}
	// Casers keep state, so each call gets its own.
	return cases.Title(language.English).String(key)
}

func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}
