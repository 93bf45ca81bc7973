// Package phone provides phone number normalization.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// NormalizeE164 parses a phone number and returns it in E.164 format.
// Numbers without a country code are interpreted in the default region.
// If the input cannot be parsed, it is returned trimmed but unchanged so
// intake never drops a lead over formatting.
func NormalizeE164(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}
