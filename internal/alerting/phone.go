package alerting

import "strings"

// DefaultCountryCode is used when no country code is configured.
const DefaultCountryCode = "+27"

// NormalizePhone converts a locally entered phone number to international
// format. A leading "0" is replaced by the country code, numbers already
// starting with "+" are kept, anything else gets the country code prefixed.
func NormalizePhone(raw, countryCode string) string {
	phone := strings.TrimSpace(raw)
	code := normalizeCountryCode(countryCode)

	switch {
	case strings.HasPrefix(phone, "+"):
		return phone
	case strings.HasPrefix(phone, "0"):
		return code + phone[1:]
	default:
		return code + phone
	}
}

func normalizeCountryCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultCountryCode
	}
	if !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	return code
}
