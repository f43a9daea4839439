package uri

import (
	"strings"

	"litehttpd/application/util/rule"
)

type encodeMode uint

const (
	encodeForm encodeMode = 1 + iota
	encodePath
)

func hex(c byte) (h [2]byte) {
	const hexSet = "0123456789ABCDEF"
	h[0] = hexSet[c>>4]
	h[1] = hexSet[c&0xF]
	return
}

func unhex(h [2]byte) (c byte) {
	return (_hex_to_num(h[0]) << 4) | _hex_to_num(h[1])
}

func _hex_to_num(h byte) byte {
	switch {
	case '0' <= h && h <= '9':
		return h - '0'
	case 'a' <= h && h <= 'f':
		return h - 'a' + 10
	case 'A' <= h && h <= 'F':
		return h - 'A' + 10
	}
	return 0
}

// Escape encodes s for a query string or a form body.
// Space becomes '+', every byte outside the unreserved set becomes %XX.
func Escape(s string) string { return escape(s, encodeForm) }

// EscapePath encodes s for a path. '/' is kept and space becomes %20.
func EscapePath(s string) string { return escape(s, encodePath) }

func escape(s string, mode encodeMode) string {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		switch {
		case c == rule.SP && mode == encodeForm:
			b.WriteByte('+')
		case shouldEscape(c, mode):
			hex := hex(c)
			b.Write([]byte{'%', hex[0], hex[1]})
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func shouldEscape(c byte, mode encodeMode) bool {
	if rule.IsUnreserved(c) {
		return false
	}
	if mode == encodePath && c == '/' {
		return false
	}
	return true
}

// Unescape decodes %XX sequences and turns '+' into space.
// A '%' that does not start a complete hex escape is kept as a literal byte.
func Unescape(s string) string {
	if strings.IndexByte(s, '%') < 0 && strings.IndexByte(s, '+') < 0 {
		return s
	}

	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		switch {
		case c == '+':
			b.WriteByte(rule.SP)
		case c == '%' && idx+2 < len(s) && isPercentEncoded(s[idx:idx+3]):
			b.WriteByte(unhex([2]byte{s[idx+1], s[idx+2]}))
			idx += 2
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func isPercentEncoded(s string) bool {
	return len(s) == 3 && s[0] == '%' && rule.IsHexDigit(s[1]) && rule.IsHexDigit(s[2])
}
