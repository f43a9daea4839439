package server

import (
	"context"
	"io"
	"log/slog"

	"litehttpd/application/http/semantic"
	"litehttpd/application/http/semantic/status"
	iolib "litehttpd/lib/io"
	"litehttpd/transport"

	"github.com/pkg/errors"
)

// HandleFunc answers a request. It returns the response to send,
// or nil once it has written its answer to the hijacked stream itself.
type HandleFunc func(c *HandleContext, request *semantic.Request) *semantic.Response

// Stream is the connection as a handler sees it after hijacking.
// Reads continue right after what the server consumed,
// so an unread request body comes first.
type Stream interface {
	ReadLine() ([]byte, error)
	ReadFull(n uint) ([]byte, error)
	io.ReadWriter
}

type stream struct {
	*iolib.LineReader
	io.Writer
}

var _ Stream = stream{}

type HandleContext struct {
	ctx context.Context

	remoteAddr transport.Addr
	userData   any
	logger     *slog.Logger

	request *semantic.Request
	stream  Stream

	hijacked bool
}

var ErrNilResponse = errors.New("handler returned nil without hijacking")

func (c *HandleContext) doHandle(handle HandleFunc) (res *semantic.Response, err error) {
	defer func() {
		if e := recover(); e != nil {
			res, err = nil, errors.Errorf("handler panicked: %v", e)
		}
	}()

	response := handle(c, c.request)
	if response == nil && !c.hijacked {
		return nil, ErrNilResponse
	}

	return response, nil
}

func (c *HandleContext) Context() context.Context  { return c.ctx }
func (c *HandleContext) RemoteAddr() transport.Addr { return c.remoteAddr }

// UserData returns the value the route was registered with.
func (c *HandleContext) UserData() any { return c.userData }

// Logger is the connection's logger.
func (c *HandleContext) Logger() *slog.Logger { return c.logger }

// Hijack hands the connection to the handler.
// The handler may then return nil to send nothing more.
func (c *HandleContext) Hijack() Stream {
	c.hijacked = true
	return c.stream
}

// Error turns err into an error page.
// A [status.Error] keeps its status and its cause becomes the explanation.
// Anything else is logged and answered with 500.
func (c *HandleContext) Error(err error) *semantic.Response {
	return errorResponse(c.logger, err)
}

func errorResponse(logger *slog.Logger, err error) *semantic.Response {
	var statusErr status.Error
	switch {
	case err == nil:
		logger.Error("error response without error")
		return semantic.NewErrorPage(status.InternalServerError, "")
	case errors.As(err, &statusErr):
		explanation := ""
		if cause := statusErr.Cause(); cause != nil {
			explanation = cause.Error()
		}
		return semantic.NewErrorPage(statusErr.Status, explanation)
	case errors.Is(err, transport.ErrDeadLineExceeded):
		return semantic.NewErrorPage(status.RequestTimeout, "")
	}

	logger.Error("handler failed", "error", err)
	return semantic.NewErrorPage(status.InternalServerError, "")
}
