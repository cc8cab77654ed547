package rules

import (
	"regexp"
	"strings"
)

// canonicalMacLength is six uppercase hex byte pairs joined by colons.
const canonicalMacLength = 17

var completeMacPattern = regexp.MustCompile(`^([0-9A-F]{2}:){5}[0-9A-F]{2}$`)

// NormalizeMac canonicalizes user-entered MAC address text. Every non-hex
// character is dropped, the remainder is uppercased and regrouped into byte
// pairs joined by colons. A trailing lone hex character is held back until its
// pair arrives. The result is capped at the canonical 17 characters and the
// function is idempotent over its own output.
func NormalizeMac(raw string) string {
	var hexDigits []byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'F':
			hexDigits = append(hexDigits, c)
		case c >= 'a' && c <= 'f':
			hexDigits = append(hexDigits, c-'a'+'A')
		}
	}

	var pairs []string
	for i := 0; i+1 < len(hexDigits); i += 2 {
		pairs = append(pairs, string(hexDigits[i:i+2]))
	}

	canonical := strings.Join(pairs, ":")
	if len(canonical) > canonicalMacLength {
		canonical = canonical[:canonicalMacLength]
	}
	return canonical
}

// MacComplete reports whether canonical is a full six-pair MAC address.
func MacComplete(canonical string) bool {
	return len(canonical) == canonicalMacLength && completeMacPattern.MatchString(canonical)
}
