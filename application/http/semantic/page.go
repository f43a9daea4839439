package semantic

import (
	"litehttpd/application/http/semantic/status"
)

const htmlContentType = "text/html; charset=utf-8"

// NewPage starts an HTML page titled title. Finish it with [Response.EndPage].
func NewPage(s status.Status, title string) *Response {
	r := NewResponseWithType(s, htmlContentType)
	r.AppendString("<!DOCTYPE html>\n<html>\n<head><title>")
	r.AppendEscaped(title)
	r.AppendString("</title></head>\n<body>\n<h1>")
	r.AppendEscaped(title)
	r.AppendString("</h1>\n")
	return r
}

func (r *Response) EndPage() {
	r.AppendString("</body>\n</html>\n")
}

// NewErrorPage renders the status and an escaped explanation as HTML.
func NewErrorPage(s status.Status, explanation string) *Response {
	r := NewPage(s, s.String())
	if explanation != "" {
		r.AppendString("<p>")
		r.AppendEscaped(explanation)
		r.AppendString("</p>\n")
	}
	r.EndPage()
	return r
}

// NewRedirect points the client at url with a Location header and a link.
// A status that is not 3xx is replaced by 303 See Other.
func NewRedirect(url string, s status.Status) *Response {
	if !s.IsRedirect() {
		s = status.SeeOther
	}

	r := NewPage(s, s.String())
	r.Headers.Set("Location", url)
	r.AppendString("<p>The document has moved <a href=\"")
	r.AppendEscaped(url)
	r.AppendString("\">here</a>.</p>\n")
	r.EndPage()
	return r
}
