package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsHex returns true if the string contains only hexadecimal characters
func IsHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// Has0xPrefix reports whether s starts with "0x" or "0X"
func Has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// TrimHexPrefix removes a single leading "0x"/"0X" if present
func TrimHexPrefix(s string) string {
	if Has0xPrefix(s) {
		return s[2:]
	}
	return s
}

// IsBlank returns true for the empty string and strings made only of whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// HasOuterSpace reports whether s begins or ends with whitespace.
// Pasted input with surrounding whitespace is rejected rather than trimmed.
func HasOuterSpace(s string) bool {
	if s == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}

// HasPrefixFold is strings.HasPrefix with ASCII case folding
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
