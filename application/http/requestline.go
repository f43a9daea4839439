package http

import (
	"strings"

	"litehttpd/application/util/rule"
	"litehttpd/application/util/uri"

	"github.com/pkg/errors"
)

// RequestLine is the parsed first line of a request.
type RequestLine struct {
	Method string // Uppercased.
	URL    string // Text between method and version, verbatim.

	Path     string // Percent-decoded part of URL before the first '?'.
	RawQuery string // Undecoded part of URL after the first '?'.
	HasQuery bool

	Version Version
}

var ErrMalformedRequestLine = errors.New("request line is malformed")

// ParseRequestLine parses "METHOD SP URL [SP HTTP/VERSION]".
// Without a version token the request is HTTP/0.9.
func ParseRequestLine(line []byte) (RequestLine, error) {
	s := string(line)

	idx := skipWhitespace(s, 0)

	// Method is the run of letters.
	start := idx
	for idx < len(s) && rule.IsAlpha(s[idx]) {
		idx++
	}
	method := strings.ToUpper(s[start:idx])
	if method == "" {
		return RequestLine{}, errors.Wrap(ErrMalformedRequestLine, "method not found")
	}

	// The byte ending the method is consumed, whatever it is.
	if idx < len(s) {
		idx++
	}

	idx = skipWhitespace(s, idx)
	if idx == len(s) {
		return RequestLine{}, errors.Wrap(ErrMalformedRequestLine, "url not found")
	}

	url := trimRightWhitespace(s[idx:])
	version := Version09

	// Is there a version token at the end?
	if sep := lastWhitespace(url); sep > 0 {
		if ver, err := ParseVersion(url[sep+1:]); err == nil {
			version = ver
			url = trimRightWhitespace(url[:sep])
		}
	}

	if url == "" {
		return RequestLine{}, errors.Wrap(ErrMalformedRequestLine, "url is empty")
	}

	reqLine := RequestLine{Method: method, URL: url, Version: version}

	path, query, found := strings.Cut(url, "?")
	reqLine.Path = uri.Unescape(path)
	if found {
		reqLine.RawQuery = query
		reqLine.HasQuery = true
	}

	return reqLine, nil
}

// Text formats the request line for the wire.
// HTTP/0.9 lines carry no version token.
func (rl RequestLine) Text() []byte {
	if rl.Version.IsSimple() {
		return []byte(rl.Method + " " + rl.URL)
	}
	return []byte(rl.Method + " " + rl.URL + " " + rl.Version.String())
}

func skipWhitespace(s string, idx int) int {
	for idx < len(s) && rule.IsWhitespace(s[idx]) {
		idx++
	}
	return idx
}

func trimRightWhitespace(s string) string {
	end := len(s)
	for end > 0 && rule.IsWhitespace(s[end-1]) {
		end--
	}
	return s[:end]
}

// lastWhitespace returns the index of the last whitespace byte in s, or -1.
func lastWhitespace(s string) int {
	for idx := len(s) - 1; idx >= 0; idx-- {
		if rule.IsWhitespace(s[idx]) {
			return idx
		}
	}
	return -1
}
