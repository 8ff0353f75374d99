package utils

// MaskSecret hides all but the first and last two characters of a credential
// so it can appear in logs without leaking.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return s[:2] + "***" + s[len(s)-2:]
}
