// Package uri implements the percent-encoding used by request paths,
// query strings and form bodies.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc3986#section-2.1
//
// - https://url.spec.whatwg.org/#application/x-www-form-urlencoded
package uri
