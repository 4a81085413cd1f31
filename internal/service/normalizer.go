package service

import (
	"math"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeEmail lowercases and trims the provided email.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// minimumPayment approximates a card issuer's minimum due: 2% of the balance, never below $25.
func minimumPayment(balance float64) float64 {
	if balance <= 0 {
		return 0
	}
	return math.Min(balance, math.Max(25, roundCents(balance*0.02)))
}
