// Package http implements the HTTP/1.x wire format of the server:
// request line and header parsing, form body reads and response serialization.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc1945
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
