package server

import (
	"context"
	"log/slog"
	"sync"

	"litehttpd/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type Server struct {
	l transport.ConnListener

	closeListener func()
	closeConns    func()
	wg            sync.WaitGroup

	logger *slog.Logger
	opts   Options

	router *Router
	clock  clock.Clock
	stats  Stats
}

func New(
	l transport.ConnListener,
	logger *slog.Logger,
	clock clock.Clock,
	router *Router,
	opts Options,
) *Server {
	if router == nil {
		router = NewRouter()
	}

	return &Server{
		l:      l,
		logger: logger,
		opts:   opts,
		router: router,
		clock:  clock,
	}
}

// Start freezes the router and serves every accepted connection
// on its own goroutine until Close is called.
func (s *Server) Start() {
	s.router.freeze()

	ctx, cancel := context.WithCancel(context.Background())
	connCtx, connCancel := context.WithCancel(context.Background())
	s.closeListener, s.closeConns = cancel, connCancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			con, err := s.l.Accept(ctx)
			if err != nil {
				switch {
				case errors.Is(err, context.Canceled):
				case errors.Is(err, transport.ErrConnListenerClosed):
					s.logger.Debug("listener closed")
				default:
					s.logger.Error(
						"unexpected error when accepting connection",
						"error", err.Error(),
					)
				}
				return
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.newConn(con).start(connCtx)
			}()
		}
	}()
}

// ServeConn serves a single connection on the calling goroutine,
// for hosts that accept connections themselves.
func (s *Server) ServeConn(ctx context.Context, con transport.Conn) {
	s.router.freeze()
	s.newConn(con).start(ctx)
}

func (s *Server) newConn(con transport.Conn) *conn {
	return newConn(con, s.router, &s.stats, s.clock, s.logger, s.opts)
}

// Close stops accepting, aborts connections still being served and waits for them.
// The listener itself is left open.
func (s *Server) Close() error {
	if s.closeListener == nil {
		return nil
	}

	s.closeListener()
	s.closeConns()
	s.wg.Wait()
	return nil
}

func (s *Server) Router() *Router { return s.router }

// Stats belong to this server only.
func (s *Server) Stats() *Stats { return &s.stats }
