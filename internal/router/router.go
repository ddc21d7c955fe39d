// Package router composes route groups under path prefixes on top of
// http.ServeMux method patterns.
package router

import (
	"context"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
)

// HandlerFunc serves a request. A non-nil error is handed to the router's
// error handler, which owns the response from then on.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware decorates a HandlerFunc
type Middleware func(HandlerFunc) HandlerFunc

// ErrorHandler renders a failed request
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Group is a collection of routes that can be mounted under a prefix
type Group interface {
	Register(r *Router)
}

// Route describes one registered method and path
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type core struct {
	mux      *http.ServeMux
	notFound http.Handler
	routes   []Route
	onError  ErrorHandler
}

// Router registers handlers on a shared mux. Routers returned by Group
// share the mux and route table with their parent.
type Router struct {
	core        *core
	prefix      string
	middlewares []Middleware
}

// New creates a router. Requests matching no route are answered by onError
// with an apierror.NotFound.
func New(onError ErrorHandler) *Router {
	r := &Router{
		core: &core{
			mux:     http.NewServeMux(),
			onError: onError,
		},
	}
	// "/" matches every method and path, so unknown paths and known paths
	// called with an unregistered method both land here
	r.core.notFound = r.adaptAs(UnmatchedRoute, func(w http.ResponseWriter, req *http.Request) error {
		return apierror.NotFound(req.URL.Path)
	})
	r.core.mux.Handle("/", r.core.notFound)
	return r
}

// Group returns a router whose routes are registered under prefix
func (r *Router) Group(prefix string) *Router {
	return &Router{
		core:        r.core,
		prefix:      joinPath(r.prefix, prefix),
		middlewares: append([]Middleware(nil), r.middlewares...),
	}
}

// Use appends middleware applied to routes registered afterwards
func (r *Router) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// Mount registers g under prefix
func (r *Router) Mount(prefix string, g Group) {
	g.Register(r.Group(prefix))
}

// Handle registers h for method and path (relative to the router prefix).
// Path segments may use ServeMux wildcards such as {id}.
func (r *Router) Handle(method, path string, h HandlerFunc) {
	full := joinPath(r.prefix, path)
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	r.core.mux.Handle(method+" "+full, r.adaptAs("", h))
	r.core.routes = append(r.core.routes, Route{Method: method, Path: full})
}

func (r *Router) Get(path string, h HandlerFunc)    { r.Handle(http.MethodGet, path, h) }
func (r *Router) Post(path string, h HandlerFunc)   { r.Handle(http.MethodPost, path, h) }
func (r *Router) Put(path string, h HandlerFunc)    { r.Handle(http.MethodPut, path, h) }
func (r *Router) Patch(path string, h HandlerFunc)  { r.Handle(http.MethodPatch, path, h) }
func (r *Router) Delete(path string, h HandlerFunc) { r.Handle(http.MethodDelete, path, h) }

// Routes returns the route table sorted by path, then method
func (r *Router) Routes() []Route {
	routes := append([]Route(nil), r.core.routes...)
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// ServeHTTP dispatches req. Paths that are not in canonical form, such as
// "//x" or "/a/../b", are answered with the not found error instead of the
// mux's redirect to the cleaned path.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodConnect {
		if p := req.URL.EscapedPath(); cleanPath(p) != p {
			r.core.notFound.ServeHTTP(w, req)
			return
		}
	}
	r.core.mux.ServeHTTP(w, req)
}

// cleanPath returns the canonical path ServeMux redirects to, keeping a
// trailing slash
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

func (r *Router) adaptAs(label string, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if p, ok := req.Context().Value(patternKey{}).(*string); ok {
			if label != "" {
				*p = label
			} else {
				*p = req.Pattern
			}
		}
		if err := h(w, req); err != nil {
			r.core.onError(w, req, err)
		}
	})
}

// UnmatchedRoute is the pattern reported for requests no route matched
const UnmatchedRoute = "unmatched"

type patternKey struct{}

// CapturePattern returns a request that records the pattern of the route
// eventually serving it. The returned func reads the pattern once the
// request has been dispatched and is empty before that.
func CapturePattern(r *http.Request) (*http.Request, func() string) {
	pattern := new(string)
	ctx := context.WithValue(r.Context(), patternKey{}, pattern)
	return r.WithContext(ctx), func() string { return *pattern }
}

// joinPath joins a prefix and a path with exactly one slash between them.
// The root path "/" of a group maps to the prefix itself.
func joinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == "" || path == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}
