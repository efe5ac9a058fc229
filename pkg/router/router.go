package router

import (
	"context"
	"net/http"

	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. Returning an error stops the chain.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler, whether it failed or not.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux  *http.ServeMux
	root context.Context

	befores []MiddlewareFunc
	closers []CloserFunc
}

// New creates a router whose handlers see every value stored in root.
func New(root context.Context) *Router {
	return &Router{
		mux:     http.NewServeMux(),
		root:    root,
		closers: []CloserFunc{handleResponse()},
	}
}

// Branch returns a router sharing the same mux with a copy of the current
// middlewares.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		root:    r.root,
		befores: append([]MiddlewareFunc(nil), r.befores...),
		closers: append([]CloserFunc(nil), r.closers...),
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

// AddCloser registers f to run before the previously added closers.
func (r *Router) AddCloser(f CloserFunc) {
	r.closers = append([]CloserFunc{f}, r.closers...)
}

func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) Handler(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrap(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrap(r, http.MethodPost, handler))
}
