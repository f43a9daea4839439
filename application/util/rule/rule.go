package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	VT   byte = 0x0B
	FF   byte = 0x0C
)

var (
	OWS         = []byte{SP, HTAB}
	CRLF        = []byte{CR, LF}
	Whitespaces = []byte{SP, HTAB, VT, FF, CR, LF}
)

// IsWhitespace reports whether c is in the C locale space class.
func IsWhitespace(c byte) bool {
	for _, ws := range Whitespaces {
		if c == ws {
			return true
		}
	}
	return false
}

func IsAlpha(c byte) bool    { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func IsDigit(c byte) bool    { return '0' <= c && c <= '9' }
func IsHexDigit(c byte) bool { return IsDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F') }

// IsUnreserved reports whether c can appear in a URI without escaping.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.3
func IsUnreserved(c byte) bool {
	return IsAlpha(c) || IsDigit(c) || c == '-' || c == '.' || c == '_' || c == '~'
}
