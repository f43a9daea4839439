package semantic

import (
	"litehttpd/application/http"
)

// Request is a fully read request, as handed to a handler.
// It owns every string and buffer it holds.
type Request struct {
	Method string // Always uppercase.
	URL    string // Verbatim, before the version was stripped.
	Path   string // Percent-decoded.

	// QueryString is raw text after '?'. HasQuery tells an empty query from none.
	QueryString string
	HasQuery    bool

	Version http.Version

	Headers   http.Headers
	Arguments http.Headers // From the query string, then the form body.
	Accept    Accept

	// PathGlob is the part of Path matched by a route's trailing '*'.
	// Empty when the route has no wildcard or the wildcard matched nothing.
	PathGlob string

	// Content is the form body, nil if none was read.
	Content []byte

	RemoteAddr string
	RemotePort uint16
}

// RequestFrom builds a request from its wire form.
// Arguments are decoded from the query string and then the form body.
// Every Accept header contributes to Accept.
func RequestFrom(raw *http.Request) *Request {
	request := &Request{
		Method:      raw.Method,
		URL:         raw.URL,
		Path:        raw.Path,
		QueryString: raw.RawQuery,
		HasQuery:    raw.HasQuery,
		Version:     raw.Version,
		Headers:     raw.Headers,
		Content:     raw.Body,
	}

	if request.HasQuery {
		ParseArguments(&request.Arguments, request.QueryString)
	}
	if request.Content != nil {
		ParseArguments(&request.Arguments, string(request.Content))
	}

	for _, value := range request.Headers.Values("Accept") {
		request.Accept.Parse(value)
	}

	return request
}

// ContentLength returns the length of the body that was read.
func (r *Request) ContentLength() (length int, ok bool) {
	if r.Content == nil {
		return 0, false
	}
	return len(r.Content), true
}

func (r *Request) Header(name string) (string, bool) { return r.Headers.Get(name) }

func (r *Request) Argument(name string) (string, bool) { return r.Arguments.Get(name) }

// Glob returns PathGlob and whether it is present.
func (r *Request) Glob() (string, bool) { return r.PathGlob, r.PathGlob != "" }
