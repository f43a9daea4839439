package server

import (
	"context"
	"log/slog"

	"litehttpd/application/http"
	"litehttpd/application/http/semantic"
	"litehttpd/application/http/semantic/status"
	iolib "litehttpd/lib/io"
	"litehttpd/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// responseVersion is what every response claims, since the server
// closes after one exchange as HTTP/1.0 does.
const responseVersion = http.Version10

// conn serves exactly one request and then closes.
type conn struct {
	con transport.Conn
	lr  *iolib.LineReader

	router *Router
	stats  *Stats
	clock  clock.Clock

	logger *slog.Logger

	opts Options
}

func newConn(con transport.Conn, router *Router, stats *Stats, clock clock.Clock, logger *slog.Logger, opts Options) *conn {
	return &conn{
		con: con,
		lr: iolib.NewLineReader(con, iolib.LineOptions{
			InitialLineSize: opts.Decode.InitialLineSize,
			MaxLineSize:     opts.Decode.MaxLineSize,
			MaxContentSize:  opts.Decode.MaxContentSize,
		}),
		router: router,
		stats:  stats,
		clock:  clock,
		logger: logger.With("conn", con.RemoteAddr().String()),
		opts:   opts,
	}
}

func (c *conn) start(ctx context.Context) {
	c.stats.connections.Add(1)

	// Closing unblocks a read or write when the server shuts down.
	stop := context.AfterFunc(ctx, func() { c.con.Close() })
	defer stop()

	defer func() {
		c.logger.Debug("closing connection")
		if err := c.con.Close(); err != nil {
			c.logger.Error("error when closing connection", "error", err)
		}
	}()

	err := c.serve(ctx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		c.logger.Debug("connection aborted by shutdown", "error", err)
	case errors.Is(err, transport.ErrConnClosed):
		c.logger.Info("unexpected connection closure", "error", err)
	case errors.Is(err, transport.ErrDeadLineExceeded):
		c.logger.Info("write timeout exceeded", "error", err)
	default:
		c.logger.Error("unknown error occured", "error", err)
	}
}

// serve reads one request, dispatches it and writes the response.
func (c *conn) serve(ctx context.Context) error {
	if timeout := c.opts.Timeout.ReadTimeout; timeout > 0 {
		c.con.SetReadDeadLine(c.clock.Now().Add(timeout))
	}

	var raw http.Request
	if err := http.NewRequestDecoder(c.lr, c.opts.Decode).Decode(&raw); err != nil {
		c.stats.badRequests.Add(1)
		c.logger.Info("bad request", "error", err)

		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-9
		response := statusErrToResponse(toStatusError(err))
		return c.writeResponse(response, responseVersion, "")
	}
	c.stats.requests.Add(1)

	request := semantic.RequestFrom(&raw)
	remote := c.con.RemoteAddr()
	request.RemoteAddr, request.RemotePort = remote.Host, remote.Port

	hctx := &HandleContext{
		ctx:        ctx,
		remoteAddr: remote,
		logger:     c.logger,
		request:    request,
		stream:     stream{LineReader: c.lr, Writer: c.con},
	}

	handle := c.router.notFound
	if route, glob, ok := c.router.Match(request.Method, request.Path); ok {
		handle = route.handle
		hctx.userData = route.userData
		request.PathGlob = glob
	} else {
		c.stats.notFound.Add(1)
	}

	response, err := hctx.doHandle(handle)
	if err != nil {
		c.stats.handlerErrors.Add(1)
		response = errorResponse(c.logger, err)
	}

	if hctx.hijacked {
		c.stats.hijacked.Add(1)
		if response == nil {
			c.logger.Debug("response written by handler", "method", request.Method, "path", request.Path)
			return nil
		}
	}

	c.logger.Debug("request handled",
		"method", request.Method,
		"path", request.Path,
		"status", response.Status.Code,
	)

	version := responseVersion
	if request.Version.IsSimple() {
		version = http.Version09
	}

	return c.writeResponse(response, version, request.Method)
}

func (c *conn) writeResponse(response *semantic.Response, version http.Version, method string) error {
	if timeout := c.opts.Timeout.WriteTimeout; timeout > 0 {
		c.con.SetWriteDeadLine(c.clock.Now().Add(timeout))
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-6.6.1-6
	if !response.Headers.Has("Date") {
		response.Headers.Set("Date", semantic.FormatDate(c.clock.Now()))
	}
	if c.opts.Signature != "" && !response.Headers.Has("Server") {
		response.Headers.Set("Server", c.opts.Signature)
	}
	if !response.Headers.Has("Connection") {
		response.Headers.Set("Connection", "close")
	}

	raw := response.Raw(version)
	if method == semantic.MethodHead {
		// Headers describe the body that a GET would get.
		raw.Body = nil
	}

	if err := http.NewResponseEncoder(c.con, c.opts.Encode).Encode(raw); err != nil {
		return errors.Wrap(err, "writing response")
	}

	return nil
}

// toStatusError converts an error from reading a request into a [status.Error].
// Anything not more specific is a bad request.
func toStatusError(err error) status.Error {
	switch {
	case errors.Is(err, transport.ErrDeadLineExceeded):
		return status.NewError(nil, status.RequestTimeout)
	case errors.Is(err, http.ErrRequestLineTooLong):
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-4
		return status.NewError(err, status.URITooLong)
	case errors.Is(err, http.ErrFieldLineTooLong):
		return status.NewError(err, status.HeaderFieldsTooLarge)
	case errors.Is(err, http.ErrContentTooLarge):
		return status.NewError(err, status.ContentTooLarge)
	}

	return status.NewError(err, status.BadRequest)
}

func statusErrToResponse(se status.Error) *semantic.Response {
	explanation := ""
	if se.Status == status.BadRequest {
		explanation = "Your browser sent a request that this server could not understand."
	}
	return semantic.NewErrorPage(se.Status, explanation)
}
