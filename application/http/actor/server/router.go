package server

import (
	"strings"
	"sync"

	"litehttpd/application/http/semantic"
	"litehttpd/application/http/semantic/status"
	"litehttpd/application/util/rule"

	"github.com/pkg/errors"
)

var (
	ErrRouterFrozen   = errors.New("router is frozen")
	ErrInvalidMethod  = errors.New("invalid method filter")
	ErrInvalidPattern = errors.New("invalid path pattern")
	ErrNilHandler     = errors.New("handler is nil")
)

// AnyMethod matches every method.
const AnyMethod = "*"

// Route is one registration.
type Route struct {
	Method  string // Uppercase, or [AnyMethod].
	Pattern string

	prefix   string // Pattern without its trailing '*', if it has one.
	glob     bool
	handle   HandleFunc
	userData any
}

// match reports whether the route takes the request,
// and what the trailing wildcard matched.
func (r *Route) match(method, path string) (glob string, ok bool) {
	if r.Method != AnyMethod && r.Method != method {
		return "", false
	}

	if !r.glob {
		return "", path == r.Pattern
	}

	if !strings.HasPrefix(path, r.prefix) {
		return "", false
	}
	return path[len(r.prefix):], true
}

// Router picks a handler by method and path, trying routes in registration order.
// Once a server starts, the router is frozen and read without locks.
type Router struct {
	mu     sync.Mutex
	frozen bool

	routes   []*Route
	notFound HandleFunc
}

func NewRouter() *Router {
	return &Router{notFound: notFound}
}

func notFound(c *HandleContext, request *semantic.Request) *semantic.Response {
	return semantic.NewErrorPage(status.NotFound, "The requested resource was not found on this server.")
}

// Handle registers handle for requests whose method and path match.
// Method "" or [AnyMethod] matches every method. A pattern ending in '*'
// matches every path with the text before it as prefix.
// userData is handed to handle through [HandleContext.UserData].
func (r *Router) Handle(method, pattern string, handle HandleFunc, userData any) error {
	route, err := newRoute(method, pattern, handle, userData)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRouterFrozen
	}

	r.routes = append(r.routes, route)
	return nil
}

func newRoute(method, pattern string, handle HandleFunc, userData any) (*Route, error) {
	if handle == nil {
		return nil, ErrNilHandler
	}

	switch {
	case method == "" || method == AnyMethod:
		method = AnyMethod
	case rule.IsValidToken(method):
		method = strings.ToUpper(method)
	default:
		return nil, errors.Wrapf(ErrInvalidMethod, "%q", method)
	}

	if pattern == "" {
		return nil, errors.Wrap(ErrInvalidPattern, "empty pattern")
	}

	route := &Route{
		Method:   method,
		Pattern:  pattern,
		handle:   handle,
		userData: userData,
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		route.prefix = prefix
		route.glob = true
	}

	return route, nil
}

// SetDefault replaces the handler of requests no route matches.
func (r *Router) SetDefault(handle HandleFunc) error {
	if handle == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRouterFrozen
	}

	r.notFound = handle
	return nil
}

// Match returns the first route taking the request and the text its wildcard matched.
func (r *Router) Match(method, path string) (route *Route, glob string, ok bool) {
	for _, route := range r.routes {
		if glob, ok := route.match(method, path); ok {
			return route, glob, true
		}
	}
	return nil, "", false
}

// Routes returns the registrations in order.
func (r *Router) Routes() []Route {
	routes := make([]Route, len(r.routes))
	for idx, route := range r.routes {
		routes[idx] = *route
	}
	return routes
}

func (r *Router) freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}
