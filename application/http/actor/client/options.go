package client

import (
	"time"

	"litehttpd/application/http"
)

type Options struct {
	Send    SendOptions
	Receive ReceiveOptions
	Timeout TimeoutOptions

	// UserAgent is sent unless the request carries its own. Empty sends none.
	UserAgent string
}

type SendOptions struct {
	Encode http.EncodeOptions
}

type ReceiveOptions struct {
	Decode http.DecodeOptions

	// UseReceivedReasonPhrase uses reason phrase from response.
	// If false, the reason phrase will instead be filled with default value for the status code.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4-9
	UseReceivedReasonPhrase bool
}

// Zero means no deadline.
type TimeoutOptions struct {
	// Exchange bounds writing the request and reading the whole response.
	Exchange time.Duration
}

func DefaultOptions() Options {
	return Options{
		Send:      SendOptions{Encode: http.DefaultEncodeOptions},
		Receive:   ReceiveOptions{Decode: http.DefaultDecodeOptions},
		UserAgent: "litehttpd-client",
	}
}
