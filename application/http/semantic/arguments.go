package semantic

import (
	"strings"

	"litehttpd/application/http"
	"litehttpd/application/util/uri"
)

// ParseArguments decodes "key=value&key=value" pairs from a query string
// or form body and appends them to dst. Both halves are percent-decoded.
//
// A token without '=' stops the scan: it and every token after it are dropped.
func ParseArguments(dst *http.Headers, input string) {
	for input != "" {
		var token string
		token, input, _ = strings.Cut(input, "&")

		key, value, found := strings.Cut(token, "=")
		if !found {
			return
		}

		dst.Add(uri.Unescape(key), uri.Unescape(value))
	}
}
