// Package httpapi is the JSON-over-HTTP transport. Every route sits behind
// the authentication gate unless it was registered as public.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/vivamos/vivamos/internal/logging"
	"github.com/vivamos/vivamos/internal/server/gate"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Users         UserService
	Beneficiaries BeneficiaryService
	Gate          *gate.Gate
	Logger        logging.Logger
	Recorder      RequestRecorder
	Metrics       http.Handler
	AllowedOrigin string
}

// NewHandler builds the route table:
//
//	GET  /healthz              public (root group)
//	GET  /metrics              public (root group)
//	POST /users/register       public route in a protected group
//	POST /users/login          public route in a protected group
//	GET  /users                protected
//	GET  /users/me             protected
//	POST /beneficiaries        protected
//	GET  /beneficiaries/{id}   protected
func NewHandler(deps Deps) http.Handler {
	h := &handlers{users: deps.Users, beneficiaries: deps.Beneficiaries, logger: deps.Logger}

	router := NewRouter(deps.Gate, deps.Recorder)

	root := router.Group("/", Public())
	root.HandleFunc(http.MethodGet, "healthz", h.healthz)
	if deps.Metrics != nil {
		root.Handle(http.MethodGet, "metrics", deps.Metrics)
	}

	users := router.Group("/users")
	users.HandleFunc(http.MethodPost, "register", h.register, Public())
	users.HandleFunc(http.MethodPost, "login", h.login, Public())
	users.HandleFunc(http.MethodGet, "", h.listUsers)
	users.HandleFunc(http.MethodGet, "me", h.me)

	beneficiaries := router.Group("/beneficiaries")
	beneficiaries.HandleFunc(http.MethodPost, "", h.createBeneficiary)
	beneficiaries.HandleFunc(http.MethodGet, "{id}", h.getBeneficiary)

	return loggingMiddleware(deps.Logger, corsMiddleware(deps.AllowedOrigin, router))
}

type Server struct {
	address    string
	logger     logging.Logger
	httpServer *http.Server
}

func NewServer(address string, deps Deps) *Server {
	return &Server{
		address: address,
		logger:  deps.Logger.With("module", "http_server"),
		httpServer: &http.Server{
			Handler:           NewHandler(deps),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.httpServer.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
