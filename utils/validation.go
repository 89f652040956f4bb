package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants
const (
	MaxProfileSize = 4 * 1024
	MaxTitleSize   = 256
	MaxDateSize    = 64
	MaxDataSize    = 4 * 1024
)

var addressRegex = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeAddress lower-cases and validates an address
func NormalizeAddress(address string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if !addressRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid address: %q", address)
	}
	return normalized, nil
}

// ValidateProfile validates the opaque profile reference of a principal
func ValidateProfile(profile string) error {
	if len(profile) > MaxProfileSize {
		return fmt.Errorf("profile exceeds maximum size of %d bytes", MaxProfileSize)
	}
	return nil
}

// ValidateRecord validates the fields of a record
func ValidateRecord(title, date, data string) error {
	if data == "" {
		return fmt.Errorf("data reference is required")
	}
	if len(title) > MaxTitleSize {
		return fmt.Errorf("title exceeds maximum size of %d bytes", MaxTitleSize)
	}
	if len(date) > MaxDateSize {
		return fmt.Errorf("date exceeds maximum size of %d bytes", MaxDateSize)
	}
	if len(data) > MaxDataSize {
		return fmt.Errorf("data reference exceeds maximum size of %d bytes", MaxDataSize)
	}
	return nil
}
