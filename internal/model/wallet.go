package model

import (
	"regexp"
	"strings"
)

var walletRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeWallet trims and lower-cases an address so one wallet maps to one record.
func NormalizeWallet(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ValidateWallet returns the normalized address or a ValidationError.
func ValidateWallet(addr string) (string, error) {
	w := NormalizeWallet(addr)
	if w == "" {
		return "", NewValidationError("walletAddress", "required")
	}
	if !walletRe.MatchString(w) {
		return "", NewValidationError("walletAddress", "must be 0x followed by 40 hex characters")
	}
	return w, nil
}
