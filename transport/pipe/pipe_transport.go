package pipe

import (
	"context"
	"sync"

	"litehttpd/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// DialerHost is the host of every dialing side.
const DialerHost = "pipe-dialer"

type pipeRequest struct {
	conn     *pipe
	accepted chan struct{}
}

// PipeTransport connects dialers to listeners by address, all in memory.
type PipeTransport struct {
	listeners map[transport.Addr]*pipeListener
	ports     map[string]*transport.PortTable // per host.
	clock     clock.Clock

	mu sync.Mutex
}

func NewPipeTransport(clock clock.Clock) *PipeTransport {
	return &PipeTransport{
		listeners: make(map[transport.Addr]*pipeListener),
		ports:     make(map[string]*transport.PortTable),
		clock:     clock,
	}
}

var _ transport.ConnDialer = (*PipeTransport)(nil)

func (pt *PipeTransport) portTableLocked(host string) *transport.PortTable {
	table, ok := pt.ports[host]
	if !ok {
		table = transport.NewPortTable(transport.DefaultEphemeralPortOptions())
		pt.ports[host] = table
	}
	return table
}

// Dial connects to the listener at addr.
// The dialing side gets an ephemeral port on [DialerHost].
func (pt *PipeTransport) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	pt.mu.Lock()
	listener, ok := pt.listeners[addr]
	if !ok {
		pt.mu.Unlock()
		return nil, transport.ErrNetUnreachable
	}
	port, release, err := pt.portTableLocked(DialerHost).Reserve(0)
	pt.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "reserving dialer port")
	}

	p1, p2 := NewPair(transport.Addr{Host: DialerHost, Port: port}, addr, pt.clock)
	p1.onClose = release

	req := pipeRequest{
		conn:     p2,
		accepted: make(chan struct{}, 1),
	}

	fail := func(err error) (transport.Conn, error) {
		p1.Close()
		return nil, err
	}

	select {
	case <-ctx.Done():
		return fail(ctx.Err())
	case <-listener.closed:
		return fail(transport.ErrConnRefused)
	case listener.requests <- req:
	}

	select {
	case <-ctx.Done():
		return fail(ctx.Err())
	case <-listener.closed:
		return fail(transport.ErrConnRefused)
	case <-req.accepted:
	}

	return p1, nil
}

// Listen registers a listener at addr. Port 0 picks an ephemeral port.
func (pt *PipeTransport) Listen(addr transport.Addr) (*pipeListener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	port, release, err := pt.portTableLocked(addr.Host).Reserve(addr.Port)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}
	addr.Port = port

	pl := &pipeListener{
		addr:      addr,
		transport: pt,
		release:   release,
		requests:  make(chan pipeRequest),
		closed:    make(chan struct{}),
	}
	pt.listeners[addr] = pl

	return pl, nil
}

type pipeListener struct {
	addr transport.Addr

	transport *PipeTransport
	release   func()

	requests chan pipeRequest
	closed   chan struct{}
	once     sync.Once
}

var _ transport.ConnListener = (*pipeListener)(nil)

func (pl *pipeListener) Addr() transport.Addr { return pl.addr }

func (pl *pipeListener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-pl.closed:
		return nil, transport.ErrConnListenerClosed
	case request := <-pl.requests:
		// accepted is buffered, so this never blocks.
		request.accepted <- struct{}{}
		return request.conn, nil
	}
}

func (pl *pipeListener) Close() error {
	err := transport.ErrConnListenerClosed
	pl.once.Do(func() {
		err = nil
		close(pl.closed)

		pl.transport.mu.Lock()
		delete(pl.transport.listeners, pl.addr)
		pl.transport.mu.Unlock()

		pl.release()
	})
	return err
}
