package util

// Arweave transaction ids are 43 characters of base64url with no padding.
const txIdLength = 43

func IsTransactionId(identifier string) bool {
	if len(identifier) != txIdLength {
		return false
	}
	for _, c := range identifier {
		if c >= 'a' && c <= 'z' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			continue
		}
		if c >= '0' && c <= '9' {
			continue
		}
		if c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}
