// Package netconn adapts [net.Listener] and [net.Conn] to the transport interfaces.
package netconn

import (
	"context"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"litehttpd/transport"

	"github.com/pkg/errors"
)

type conn struct {
	c net.Conn
}

var _ transport.Conn = (*conn)(nil)

// NewConn wraps c.
func NewConn(c net.Conn) transport.Conn { return &conn{c: c} }

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.c.Read(p)
	return n, mapError(err)
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.c.Write(p)
	return n, mapError(err)
}

func (c *conn) Close() error {
	if err := c.c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (c *conn) LocalAddr() transport.Addr  { return transport.AddrFrom(c.c.LocalAddr()) }
func (c *conn) RemoteAddr() transport.Addr { return transport.AddrFrom(c.c.RemoteAddr()) }

func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.c.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.c.SetWriteDeadline(t) }

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return errors.Wrap(transport.ErrDeadLineExceeded, err.Error())
	case errors.Is(err, io.EOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET):
		return errors.Wrap(transport.ErrConnClosed, err.Error())
	}
	return err
}

// Listener accepts connections from a [net.Listener].
type Listener struct {
	l net.Listener
}

var _ transport.ConnListener = (*Listener)(nil)

func NewListener(l net.Listener) *Listener { return &Listener{l: l} }

// Listen listens on a stream network such as "tcp" or "unix".
func Listen(network, address string) (*Listener, error) {
	l, err := net.Listen(network, address)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, errors.Wrap(transport.ErrAddrAlreadyInUse, err.Error())
		}
		return nil, errors.Wrapf(err, "listening on %s %s", network, address)
	}
	return NewListener(l), nil
}

func (l *Listener) Addr() transport.Addr { return transport.AddrFrom(l.l.Addr()) }

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Accept waits for a connection.
// Cancelling ctx interrupts the wait if the listener supports deadlines.
func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d, ok := l.l.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = d.SetDeadline(time.Unix(1, 0))
		})
		defer func() {
			if !stop() {
				// The deadline was set. Clear it for the next Accept.
				_ = d.SetDeadline(time.Time{})
			}
		}()
	}

	c, err := l.l.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, transport.ErrConnListenerClosed
		}
		return nil, errors.Wrap(err, "accepting connection")
	}

	return NewConn(c), nil
}

func (l *Listener) Close() error {
	if err := l.l.Close(); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return transport.ErrConnListenerClosed
		}
		return err
	}
	return nil
}

// Dialer dials stream networks.
type Dialer struct {
	Network string // "tcp" when empty.
	net.Dialer
}

var _ transport.ConnDialer = (*Dialer)(nil)

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	network := d.Network
	if network == "" {
		network = "tcp"
	}

	c, err := d.DialContext(ctx, network, addr.String())
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, errors.Wrap(transport.ErrConnRefused, err.Error())
		}
		if errors.Is(err, syscall.ENETUNREACH) {
			return nil, errors.Wrap(transport.ErrNetUnreachable, err.Error())
		}
		return nil, err
	}
	return NewConn(c), nil
}
