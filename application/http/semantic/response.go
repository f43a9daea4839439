package semantic

import (
	"bytes"
	"html"
	"strconv"

	"litehttpd/application/http"
	"litehttpd/application/http/semantic/status"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

var ErrInvalidHeader = errors.New("invalid header field")

// Response accumulates a status, headers and a body until it is sent.
type Response struct {
	Status  status.Status
	Headers http.Headers

	body bytes.Buffer
}

func NewResponse(s status.Status) *Response {
	return &Response{Status: s}
}

func NewResponseWithType(s status.Status, contentType string) *Response {
	r := NewResponse(s)
	r.Headers.Set("Content-Type", contentType)
	return r
}

// AddHeader appends a header after checking it can be sent as is.
func (r *Response) AddHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return errors.Wrapf(ErrInvalidHeader, "name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return errors.Wrapf(ErrInvalidHeader, "value of %q", name)
	}

	r.Headers.Add(name, value)
	return nil
}

func (r *Response) AppendString(s string) { r.body.WriteString(s) }

func (r *Response) AppendDecimal(n int) {
	r.body.Write(strconv.AppendInt(r.body.AvailableBuffer(), int64(n), 10))
}

// AppendEscaped appends s with & < > " ' escaped for HTML.
func (r *Response) AppendEscaped(s string) { r.body.WriteString(html.EscapeString(s)) }

func (r *Response) AppendBytes(b []byte) { r.body.Write(b) }

func (r *Response) Write(p []byte) (int, error) { return r.body.Write(p) }

func (r *Response) Len() int { return r.body.Len() }

// Body returns the body without copying it.
func (r *Response) Body() []byte { return r.body.Bytes() }

// Raw returns the wire form of r for a request of the given version.
// Content-Length always matches the body.
func (r *Response) Raw(version http.Version) http.Response {
	headers := r.Headers.Clone()
	headers.Set("Content-Length", strconv.Itoa(r.body.Len()))

	return http.Response{
		StatusLine: http.StatusLine{
			Version:      version,
			StatusCode:   r.Status.Code,
			ReasonPhrase: r.Status.ReasonPhrase,
		},
		Headers: headers,
		Body:    r.body.Bytes(),
	}
}
