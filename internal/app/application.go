// Package app wires the storage, session, topic and transport layers into
// one HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"roadmap/internal/api"
	"roadmap/internal/config"
	"roadmap/internal/database"
	"roadmap/internal/metrics"
	"roadmap/internal/notes"
	"roadmap/internal/session"
	"roadmap/internal/topics"
	"roadmap/internal/websocket"
	pkgdatabase "roadmap/pkg/database"
)

// Application coordinates all system components
// Clean dependency injection pattern with proper initialization order
type Application struct {
	config         *config.Config
	logger         zerolog.Logger
	dbManager      *database.Manager
	sessionManager *session.Manager
	registry       *websocket.Registry
	wsHandler      *websocket.Handler
	apiServer      *api.Server
	httpServer     *http.Server
	listener       net.Listener
	serveErr       chan error
}

// NewApplication creates a new application instance with all components initialized
// Component initialization follows strict dependency order:
// Database → Session → Topics → Metrics → Registry → WebSocket → API → HTTP
func NewApplication(cfg *config.Config, logger zerolog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// STEP 1: Database (foundation layer); migrations run inside NewManager
	dbConfig := pkgdatabase.DefaultConfig()
	dbConfig.DatabasePath = cfg.Database.Path
	dbConfig.ConnMaxLifetime = cfg.Database.Timeout
	dbConfig.ConnMaxIdleTime = cfg.Database.Timeout / 3

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database manager: %w", err)
	}

	// STEP 2: Session manager, resuming sessions left active by a previous run
	sessionManager := session.NewManager(dbManager, logger, cfg.Session.IdleTimeout)
	if err := sessionManager.LoadActiveSessions(context.Background()); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to load active sessions: %w", err)
	}

	// STEP 3: Topic dispatcher over the note log
	dispatcher := topics.NewDispatcher(notes.NewFileLog(cfg.Notes.Path), logger)

	// STEP 4: Metrics
	m := metrics.New(sessionManager.ActiveCount)
	dispatcher.SetObserver(m)

	// STEP 5: WebSocket registry and handler
	registry := websocket.NewRegistry()
	wsHandler := websocket.NewHandler(registry, sessionManager, dispatcher, *cfg.WebSocket, logger)
	wsHandler.SetObserver(m)

	// FUNCTIONAL DISCOVERY: Ending a session (API or idle sweep) drops its sockets
	sessionManager.OnSessionEnded(func(sessionID string) {
		wsHandler.CloseSession(sessionID)
	})

	// STEP 6: API server
	apiServer := api.NewServer(sessionManager, dispatcher, dbManager, registry, m.Handler(), logger)

	// STEP 7: HTTP server with both API and WebSocket endpoints
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:         cfg,
		logger:         logger.With().Str("component", "app").Logger(),
		dbManager:      dbManager,
		sessionManager: sessionManager,
		registry:       registry,
		wsHandler:      wsHandler,
		apiServer:      apiServer,
		httpServer:     httpServer,
		serveErr:       make(chan error, 1),
	}, nil
}

// Start binds the listener, starts the idle sweeper and serves in the
// background. A bind failure is returned synchronously.
func (app *Application) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	app.listener = listener

	if err := app.sessionManager.StartSweeper(app.config.Session.SweepSchedule); err != nil {
		_ = listener.Close()
		return err
	}

	go func() {
		if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.serveErr <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(app.serveErr)
	}()

	app.logger.Info().Str("addr", listener.Addr().String()).Msg("roadmap server started")
	return nil
}

// Errors reports a fatal serve error, then closes when the server stops.
func (app *Application) Errors() <-chan error {
	return app.serveErr
}

// Stop gracefully shuts down the application
// Reverse dependency order: HTTP → WebSockets → Sweeper → Database
func (app *Application) Stop(ctx context.Context) error {
	app.logger.Info().Msg("shutting down")

	var errs []error

	if err := app.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
	}

	app.wsHandler.CloseAll()
	app.sessionManager.StopSweeper()

	if err := app.dbManager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database shutdown: %w", err))
	}

	app.logger.Info().Msg("shutdown complete")
	return errors.Join(errs...)
}

// GetAddr returns the bound address once started, the configured one before.
func (app *Application) GetAddr() string {
	if app.listener != nil {
		return app.listener.Addr().String()
	}
	return app.httpServer.Addr
}
