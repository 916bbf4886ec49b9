package uri

import "net/url"

// SafeEscape escapes a raw URI string only when doing so is lossless.
// A string whose percent-escapes round-trip unchanged is assumed to be
// already encoded and is left alone; anything else (a literal space, a
// stray '%') gets its unsafe bytes percent-encoded. This avoids
// double-encoding already-encoded URIs.
func SafeEscape(raw string) string {
	unescaped, err := url.PathUnescape(raw)
	if err == nil && unescaped != raw {
		return raw
	}
	return escapeUnsafe(raw)
}

// Unescape decodes percent-escapes, returning the input unchanged when it
// is not valid percent-encoding.
func Unescape(raw string) string {
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return unescaped
}

// escapeUnsafe percent-encodes every byte outside the RFC 3986 unreserved
// and reserved sets. Reserved delimiters are kept verbatim so the string
// still parses into its components.
func escapeUnsafe(raw string) string {
	var b []byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if isURISafe(c) {
			b = append(b, c)
			continue
		}
		b = append(b, '%', upperhex[c>>4], upperhex[c&0x0f])
	}
	return string(b)
}

const upperhex = "0123456789ABCDEF"

func isURISafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~',
		':', '/', '?', '#', '[', ']', '@',
		'!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}
