package server

import (
	"time"

	"litehttpd/application/http"
)

type Options struct {
	Decode http.DecodeOptions
	Encode http.EncodeOptions

	Timeout TimeoutOptions

	// Signature is sent as the Server header. Empty sends none.
	Signature string
}

// Zero means no deadline.
type TimeoutOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Decode:    http.DefaultDecodeOptions,
		Encode:    http.DefaultEncodeOptions,
		Signature: "litehttpd",
	}
}
