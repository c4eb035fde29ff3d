package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/server/auth"
	"github.com/vivamos/vivamos/internal/server/gate"
)

// RequestRecorder observes finished requests. It may be nil.
type RequestRecorder interface {
	RecordHTTPRequest(route string, code int, elapsed time.Duration)
}

type visibilityOption int

const (
	inherit visibilityOption = iota
	public
	protected
)

// RouteOption sets the visibility marker of a group or a route.
type RouteOption func(*visibilityOption)

// Public marks a group or route as exempt from authentication.
func Public() RouteOption {
	return func(v *visibilityOption) { *v = public }
}

// Protected marks a route as requiring a bearer token even when its group is public.
func Protected() RouteOption {
	return func(v *visibilityOption) { *v = protected }
}

func resolve(opts []RouteOption) visibilityOption {
	v := inherit
	for _, o := range opts {
		o(&v)
	}
	return v
}

// Router is a ServeMux whose routes are gated. Exemption is decided once,
// when a route is registered: exempt routes are mounted bare, every other
// route behind the gate.
type Router struct {
	mux      *http.ServeMux
	gate     *gate.Gate
	recorder RequestRecorder
	onReject func(w http.ResponseWriter, r *http.Request, err error)
}

func NewRouter(g *gate.Gate, recorder RequestRecorder) *Router {
	return &Router{
		mux:      http.NewServeMux(),
		gate:     g,
		recorder: recorder,
		onReject: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusUnauthorized, err.Error(), "")
		},
	}
}

// Group is a set of routes sharing a path prefix and a visibility marker.
type Group struct {
	router *Router
	prefix string
}

// Group returns the group for prefix ("/" for the root group). Passing
// Public marks the whole group exempt.
func (r *Router) Group(prefix string, opts ...RouteOption) *Group {
	prefix = "/" + strings.Trim(prefix, "/")
	switch resolve(opts) {
	case public:
		r.gate.Visibility().MarkGroup(prefix, true)
	case protected:
		r.gate.Visibility().MarkGroup(prefix, false)
	}
	return &Group{router: r, prefix: prefix}
}

// Handle registers h for method and path, relative to the group prefix.
func (g *Group) Handle(method, path string, h http.Handler, opts ...RouteOption) {
	full := g.prefix
	if path = strings.Trim(path, "/"); path != "" {
		full = strings.TrimSuffix(g.prefix, "/") + "/" + path
	}
	route := gate.RouteKey(method, full)

	switch resolve(opts) {
	case public:
		g.router.gate.Visibility().MarkRoute(route, true)
	case protected:
		g.router.gate.Visibility().MarkRoute(route, false)
	}

	var handler http.Handler
	if g.router.gate.Visibility().IsPublic(route, g.prefix) {
		handler = g.router.exempt(h)
	} else {
		handler = g.router.authenticate(h)
	}

	g.router.mux.Handle(route, g.router.instrument(route, handler))
}

func (g *Group) HandleFunc(method, path string, h http.HandlerFunc, opts ...RouteOption) {
	g.Handle(method, path, h, opts...)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) exempt(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.gate.MarkExempt()
		next.ServeHTTP(w, req)
	})
}

// authenticate admits the request only with a valid bearer token and
// attaches its claims to the request context.
func (r *Router) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		claims, err := r.gate.Authenticate(req.Header.Get(common.AuthorizationHeader))
		if err != nil {
			r.onReject(w, req, err)
			return
		}
		next.ServeHTTP(w, req.WithContext(auth.WithClaims(req.Context(), claims)))
	})
}

func (r *Router) instrument(route string, next http.Handler) http.Handler {
	if r.recorder == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, req)
		r.recorder.RecordHTTPRequest(route, rec.status, time.Since(start))
	})
}
