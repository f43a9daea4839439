// Package client sends single requests to an HTTP/1.0 server,
// one connection per exchange.
package client

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"litehttpd/application/http"
	"litehttpd/application/http/semantic"
	"litehttpd/application/http/semantic/status"
	"litehttpd/application/util/uri"
	"litehttpd/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type Client struct {
	dialer transport.ConnDialer

	logger *slog.Logger
	clock  clock.Clock

	opts Options
}

func New(
	d transport.ConnDialer,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	return &Client{
		dialer: d,
		logger: logger,
		clock:  clock,
		opts:   opts,
	}
}

// Response is a fully read response.
type Response struct {
	Version http.Version
	Status  status.Status
	Headers http.Headers
	Body    []byte
}

// Send dials addr, writes request and reads the response until
// Content-Length is satisfied or the server hangs up.
// Host, User-Agent and Content-Length are filled in when missing.
func (c *Client) Send(ctx context.Context, addr transport.Addr, request http.Request) (_ *Response, err error) {
	con, err := c.dialer.Dial(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	logger := c.logger.With("addr", addr.String())

	stop := context.AfterFunc(ctx, func() { con.Close() })
	defer func() {
		stop()
		con.Close()
		// Closing on cancel shows up as a connection error.
		if err != nil && ctx.Err() != nil {
			err = errors.Wrap(ctx.Err(), err.Error())
		}
	}()

	if timeout := c.opts.Timeout.Exchange; timeout > 0 {
		deadline := c.clock.Now().Add(timeout)
		con.SetReadDeadLine(deadline)
		con.SetWriteDeadLine(deadline)
	}

	c.fillHeaders(&request, addr)

	if err := http.NewRequestEncoder(con, c.opts.Send.Encode).Encode(request); err != nil {
		return nil, errors.Wrap(err, "writing request")
	}
	logger.Debug("request sent", "method", request.Method, "url", request.URL)

	var raw http.Response
	if err := http.NewResponseDecoder(con, c.opts.Receive.Decode).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	response := &Response{
		Version: raw.Version,
		Status:  status.Status{Code: raw.StatusCode, ReasonPhrase: raw.ReasonPhrase},
		Headers: raw.Headers,
		Body:    raw.Body,
	}

	if !c.opts.Receive.UseReceivedReasonPhrase {
		// Overwrite the reason phrase with default one.
		if status, ok := status.FromCode(raw.StatusCode); ok {
			response.Status = status
		}
	}

	logger.Debug("response received", "status", response.Status.Code, "length", len(response.Body))

	return response, nil
}

func (c *Client) fillHeaders(request *http.Request, addr transport.Addr) {
	if request.Version.IsSimple() {
		return
	}

	if !request.Headers.Has("Host") {
		request.Headers.Set("Host", addr.String())
	}
	if c.opts.UserAgent != "" && !request.Headers.Has("User-Agent") {
		request.Headers.Set("User-Agent", c.opts.UserAgent)
	}
	if request.Body != nil && !request.Headers.Has("Content-Length") {
		request.Headers.Set("Content-Length", strconv.Itoa(len(request.Body)))
	}
}

// Get requests target, which is sent as is.
func (c *Client) Get(ctx context.Context, addr transport.Addr, target string) (*Response, error) {
	return c.Send(ctx, addr, NewRequest(semantic.MethodGet, target))
}

// PostForm posts form as an urlencoded body.
func (c *Client) PostForm(ctx context.Context, addr transport.Addr, target string, form http.Headers) (*Response, error) {
	request := NewRequest(semantic.MethodPost, target)
	request.Headers.Set("Content-Type", http.FormContentType)
	request.Body = []byte(EncodeForm(form))

	return c.Send(ctx, addr, request)
}

// NewRequest builds an HTTP/1.0 request for target.
func NewRequest(method, target string) http.Request {
	return http.Request{
		RequestLine: http.RequestLine{
			Method:  method,
			URL:     target,
			Version: http.Version10,
		},
	}
}

// EncodeForm joins fields as name=value pairs with '&', escaping both halves.
func EncodeForm(form http.Headers) string {
	var sb strings.Builder
	for i, field := range form {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(uri.Escape(field.Name))
		sb.WriteByte('=')
		sb.WriteString(uri.Escape(field.Value))
	}
	return sb.String()
}

// Target joins an escaped path and an encoded query.
func Target(path string, query http.Headers) string {
	target := uri.EscapePath(path)
	if len(query) > 0 {
		target += "?" + EncodeForm(query)
	}
	return target
}
