package http

import (
	"strings"

	"litehttpd/application/util/rule"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

// Version is the text after "HTTP/" in a request or status line, kept verbatim.
type Version string

const (
	Version09 Version = "0.9"
	Version10 Version = "1.0"
	Version11 Version = "1.1"
)

const versionPrefix = "HTTP/"

// ParseVersion parses http version text(e.g. "HTTP/1.1") into [Version].
// The prefix is matched case-insensitively.
func ParseVersion(s string) (Version, error) {
	if len(s) < len(versionPrefix) || !strings.EqualFold(s[:len(versionPrefix)], versionPrefix) {
		return "", errors.Errorf("http version prefix not found: %q", s)
	}
	return Version(s[len(versionPrefix):]), nil
}

func (ver Version) Text() []byte { return []byte(ver.String()) }

func (ver Version) String() string { return versionPrefix + string(ver) }

// IsSimple reports whether ver is HTTP/0.9, which has no headers on either side.
func (ver Version) IsSimple() bool { return ver == Version09 }

type Field struct{ Name, Value string }

var ErrMalformedFieldLine = errors.New("field line is malformed")

func ParseField(fieldLine []byte) (Field, error) {
	name, value, found := strings.Cut(string(fieldLine), ":")
	if !found {
		return Field{}, errors.Wrapf(ErrMalformedFieldLine, "colon seperator not found on header: %q", fieldLine)
	}

	// No whitespace is allowed between field name and colon.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-2
	if !httpguts.ValidHeaderFieldName(name) {
		return Field{}, errors.Wrapf(ErrMalformedFieldLine, "invalid field name: %q", name)
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
	value = strings.Trim(value, string(rule.OWS))
	if !httpguts.ValidHeaderFieldValue(value) {
		return Field{}, errors.Wrapf(ErrMalformedFieldLine, "invalid value for %q", name)
	}

	return Field{Name: name, Value: value}, nil
}

func (f *Field) Text() []byte {
	return []byte(f.Name + ": " + f.Value)
}
