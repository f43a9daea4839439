package server

import "sync/atomic"

// Stats counts what one server has seen since it was created or last reset.
type Stats struct {
	connections   atomic.Uint64
	requests      atomic.Uint64
	badRequests   atomic.Uint64
	notFound      atomic.Uint64
	handlerErrors atomic.Uint64
	hijacked      atomic.Uint64
}

type StatsSnapshot struct {
	Connections   uint64
	Requests      uint64 // Requests that were read completely.
	BadRequests   uint64
	NotFound      uint64
	HandlerErrors uint64 // Panics and nil responses.
	Hijacked      uint64
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Connections:   s.connections.Load(),
		Requests:      s.requests.Load(),
		BadRequests:   s.badRequests.Load(),
		NotFound:      s.notFound.Load(),
		HandlerErrors: s.handlerErrors.Load(),
		Hijacked:      s.hijacked.Load(),
	}
}

func (s *Stats) Reset() {
	s.connections.Store(0)
	s.requests.Store(0)
	s.badRequests.Store(0)
	s.notFound.Store(0)
	s.handlerErrors.Store(0)
	s.hijacked.Store(0)
}
