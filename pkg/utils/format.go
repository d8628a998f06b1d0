// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatUSD formats an amount as US dollars with thousands separators.
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")

	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var groups []string
	for n > 3 {
		groups = append([]string{s[n-3:]}, groups...)
		s = s[:n-3]
		n = len(s)
	}
	return s + "," + strings.Join(groups, ",")
}

// FormatPercent formats a percentage with an explicit sign for gains.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats a P&L amount with an explicit sign for gains.
func FormatPnL(pnl float64) string {
	formatted := FormatUSD(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatQuantity formats an asset quantity, trimming trailing zeros so
// 0.50000000 renders as 0.5 and 2.00000000 as 2.
func FormatQuantity(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

// FormatPrice formats a unit price, keeping more precision for sub-dollar
// assets.
func FormatPrice(price float64) string {
	if price != 0 && price < 1 {
		return fmt.Sprintf("$%.6f", price)
	}
	return FormatUSD(price)
}
