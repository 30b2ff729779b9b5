package export

import (
	"regexp"
	"strings"
)

var (
	// Email addresses: jane.doe@example.com
	emailPattern = regexp.MustCompile(`([A-Za-z0-9._%+-])[A-Za-z0-9._%+-]*@([A-Za-z0-9.-]+\.[A-Za-z]{2,})`)

	// Card-like digit runs: 16 digits, optionally in groups of four
	// (4242424242424242, 4242 4242 4242 4242, 4242-4242-4242-4242)
	panPattern = regexp.MustCompile(`\b(?:\d{4}[ -]?){3}\d{4}\b`)

	// IPv4 addresses: 203.0.113.7
	ipPattern = regexp.MustCompile(`\b(\d{1,3}\.\d{1,3})\.\d{1,3}\.\d{1,3}\b`)
)

// MaskPII masks email addresses, 16-digit card-like number runs and IPv4
// addresses in s. The first character of an email local part, the email
// domain, the last four card digits and the first two IP octets stay
// visible.
func MaskPII(s string) string {
	s = panPattern.ReplaceAllStringFunc(s, maskPAN)
	s = emailPattern.ReplaceAllString(s, "$1***@$2")
	s = ipPattern.ReplaceAllString(s, "$1.x.x")
	return s
}

func maskPAN(match string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match)
	return "**** **** **** " + digits[len(digits)-4:]
}
