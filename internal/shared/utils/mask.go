package utils

import "strings"

// MaskEmail keeps the first character of the local part: "u***@example.com".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || domain == "" {
		return "***"
	}
	if local == "" {
		return "***@" + domain
	}
	return local[:1] + "***@" + domain
}

// MaskAddress keeps the 0x prefix plus four hex digits at each end.
func MaskAddress(address string) string {
	address = strings.TrimSpace(address)
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// MaskIdentity picks the mask that fits an activation identifier, which may be
// a wallet, an email or a display string.
func MaskIdentity(s string) string {
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "@"):
		return MaskEmail(s)
	case strings.HasPrefix(strings.ToLower(s), "0x"):
		return MaskAddress(s)
	default:
		return s
	}
}
