// Package server initializes and runs the vivamos backend.
// It opens the database, applies migrations, wires the authentication gate
// and services, and runs the HTTP and gRPC endpoints until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
	"github.com/vivamos/vivamos/internal/logging"
	"github.com/vivamos/vivamos/internal/server/auth"
	"github.com/vivamos/vivamos/internal/server/config"
	"github.com/vivamos/vivamos/internal/server/gate"
	"github.com/vivamos/vivamos/internal/server/httpapi"
	"github.com/vivamos/vivamos/internal/server/metrics"
	"github.com/vivamos/vivamos/internal/server/repositories/repomanager"
	"github.com/vivamos/vivamos/internal/server/services"

	gs "github.com/vivamos/vivamos/internal/server/grpc"
)

const (
	pingAttempts = 5
	pingBackoff  = 200 * time.Millisecond
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	manager  repomanager.RepositoryManager
	metrics  *metrics.Metrics
	gate     *gate.Gate
	users    *services.UserService
	benefits *services.BeneficiaryService
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.NewJSON(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.New()
	tokens := auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenValidityDuration)
	g := gate.New(gate.NewVisibility(), tokens, m)
	rm := repomanager.NewPostgresRepositoryManager()

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		manager:  rm,
		metrics:  m,
		gate:     g,
		users:    services.NewUserService(db, rm, tokens, m),
		benefits: services.NewBeneficiaryService(db, rm),
	}, nil
}

// pingDB waits for the database to accept connections, backing off
// exponentially between attempts.
func pingDB(ctx context.Context, db *sql.DB, attempts uint64, base time.Duration) error {
	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, httpapi.Deps{
		Users:         app.users,
		Beneficiaries: app.benefits,
		Gate:          app.gate,
		Logger:        app.logger,
		Recorder:      app.metrics,
		Metrics:       app.metrics.Handler(),
		AllowedOrigin: app.config.AllowedOrigin,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.gate)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until both endpoints have stopped. A startup failure is
// returned; a failing endpoint cancels the other one.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := pingDB(ctx, app.db, pingAttempts, pingBackoff); err != nil {
		return fmt.Errorf("db unreachable: %w", err)
	}

	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return nil
}
