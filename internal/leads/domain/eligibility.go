package domain

import "strings"

// License class labels carry a short code, either in trailing parentheses
// ("Electrical (C-10)") or as the leading token of the label. Matching is on
// the code, so cosmetic label differences do not block assignment.
const (
	codeGeneralBuilding    = "B"
	codeResidentialRemodel = "B-2"
)

// IsEligible reports whether a contractor holding the given license class
// qualifies for a lead requiring the given trade type.
//
// Rules, in order:
//  1. Either argument empty: never eligible.
//  2. Exact label equality: eligible.
//  3. Equal license codes: eligible.
//  4. Widening: a General Building (B) contractor also qualifies for
//     Residential Remodeling (B-2) leads. The reverse does NOT hold; B-2 is
//     the narrower class and its holders are not qualified for general
//     building work. The asymmetry is intentional.
//
// Pure and total over any two strings; no side effects.
func IsEligible(licenseClass, tradeType string) bool {
	licenseClass = strings.TrimSpace(licenseClass)
	tradeType = strings.TrimSpace(tradeType)
	if licenseClass == "" || tradeType == "" {
		return false
	}

	if strings.EqualFold(licenseClass, tradeType) {
		return true
	}

	licenseCode := LicenseCode(licenseClass)
	requiredCode := LicenseCode(tradeType)
	if strings.EqualFold(licenseCode, requiredCode) {
		return true
	}

	if strings.EqualFold(licenseCode, codeGeneralBuilding) &&
		strings.EqualFold(requiredCode, codeResidentialRemodel) {
		return true
	}

	return false
}

// LicenseCode extracts the class code from a license or trade label.
// A trailing parenthesized token wins ("General Building (B)" → "B");
// otherwise the first whitespace-delimited token is used ("C-10 Electrical"
// → "C-10").
func LicenseCode(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}

	if strings.HasSuffix(label, ")") {
		if open := strings.LastIndex(label, "("); open >= 0 {
			code := strings.TrimSpace(label[open+1 : len(label)-1])
			if code != "" {
				return code
			}
		}
	}

	if idx := strings.IndexFunc(label, func(r rune) bool { return r == ' ' || r == '\t' }); idx > 0 {
		return label[:idx]
	}
	return label
}
