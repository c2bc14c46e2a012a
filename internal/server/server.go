// Package server is the composition root: it loads the collections, wires
// the directories, session factory, engine, and handlers together, and owns
// the HTTP server lifecycle.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go reads config → server.New:
//	  Store backend (json files or sqlite) → Load collections
//	  → TrainDirectory / UserDirectory → ticket repair pass
//	  → Sessions + Engine → handlers → routes
//
// Each layer only receives what it needs; the handlers never touch a store
// and the booking layer never sees HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/railbook/internal/auth"
	"github.com/sakif/railbook/internal/booking"
	"github.com/sakif/railbook/internal/directory"
	"github.com/sakif/railbook/internal/handler"
	"github.com/sakif/railbook/internal/middleware"
	"github.com/sakif/railbook/internal/model"
	"github.com/sakif/railbook/internal/store"
	"github.com/sakif/railbook/internal/store/jsonfile"
	"github.com/sakif/railbook/internal/store/sqlitestore"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port      int
	Store     string // "json" (default) or "sqlite"
	DataDir   string // directory for the json backend's collection files
	DBPath    string // sqlite database file for the sqlite backend
	JWTSecret string
	AuthMode  string // "bcrypt" (default) or "plain" for legacy data sets
}

// Server owns the router, the store backend's resources, and the listen
// lifecycle.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	closer io.Closer // sqlite connection when that backend is active, else nil
}

// New loads both collections, runs the load-time ticket repair, and wires
// all routes. It returns an error if the data cannot be loaded — a booking
// service with no state is not worth starting.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	ctx := context.Background()

	// === STORE BACKEND ===
	var (
		userStore  store.Store[model.User]
		trainStore store.Store[model.Train]
		closer     io.Closer
	)
	switch cfg.Store {
	case "", "json":
		userStore = jsonfile.New[model.User](filepath.Join(cfg.DataDir, "users.json"))
		trainStore = jsonfile.New[model.Train](filepath.Join(cfg.DataDir, "trains.json"))
	case "sqlite":
		db, err := sqlitestore.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		userStore = sqlitestore.NewCollection[model.User](db, "users")
		trainStore = sqlitestore.NewCollection[model.Train](db, "trains")
		closer = db
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	fail := func(err error) (*Server, error) {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	// === LOAD COLLECTIONS ===
	// Load once at startup; every mutation rewrites the full collection.
	trains, err := trainStore.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("loading trains: %w", err))
	}
	users, err := userStore.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("loading users: %w", err))
	}

	trainDir := directory.NewTrainDirectory(trains)
	userDir := directory.NewUserDirectory(users)

	logger.Info("collections loaded",
		slog.Int("users", userDir.Len()),
		slog.Int("trains", trainDir.Len()),
	)
	for _, tr := range trainDir.List() {
		logger.Debug("train loaded", slog.String("route", tr.RouteString()))
	}

	// Self-healing migration: backfill blank ticket owner/ids and re-persist.
	if err := booking.RepairTickets(ctx, userDir, userStore, logger); err != nil {
		return fail(fmt.Errorf("repairing tickets: %w", err))
	}

	// === AUTH ===
	var authn auth.Authenticator
	switch cfg.AuthMode {
	case "", "bcrypt":
		authn = auth.NewBcrypt()
	case "plain":
		logger.Warn("plaintext credential mode enabled — only for legacy data sets")
		authn = auth.NewPlain()
	default:
		return fail(fmt.Errorf("unknown auth mode %q", cfg.AuthMode))
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return fail(fmt.Errorf("creating token service: %w", err))
	}

	// === CORE ===
	sessions := booking.NewSessions(userDir, authn, userStore, logger)
	engine := booking.NewEngine(trainDir, userDir, userStore, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		closer: closer,
	}
	s.setupRoutes(sessions, engine, tokens)
	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/signup              → register (no auto-login)
//	POST   /api/auth/login               → sets "token" HttpOnly cookie
//	POST   /api/auth/logout              → clears the cookie
//	GET    /api/me                       → current user          [auth]
//	GET    /api/trains                   → full catalog
//	GET    /api/trains/search            → membership search
//	POST   /api/bookings                 → book a ticket         [auth]
//	GET    /api/bookings                 → 1-based ticket list   [auth]
//	DELETE /api/bookings/id/{ticketID}   → cancel by id          [auth]
//	DELETE /api/bookings/index/{index}   → cancel by position    [auth]
func (s *Server) setupRoutes(sessions *booking.Sessions, engine *booking.Engine, tokens *auth.TokenService) {
	// Global middleware, in order: request IDs for tracing, real client IPs
	// behind proxies, panic recovery, then our request logging.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	authHandler := handler.NewAuthHandler(sessions, tokens, s.logger)
	trainHandler := handler.NewTrainHandler(engine, s.logger)
	bookingHandler := handler.NewBookingHandler(engine, sessions, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignUp)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Public catalog routes: identity attached when a valid token is
		// present, never required.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/trains", trainHandler.HandleList)
			r.Get("/trains/search", trainHandler.HandleSearch)
		})

		// Booking-scoped routes require a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Post("/bookings", bookingHandler.HandleBook)
			r.Get("/bookings", bookingHandler.HandleList)
			r.Delete("/bookings/id/{ticketID}", bookingHandler.HandleCancelByID)
			r.Delete("/bookings/index/{index}", bookingHandler.HandleCancelByIndex)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, let in-flight requests finish
// (30s), close the store backend.
func (s *Server) Start() error {
	if s.closer != nil {
		defer s.closer.Close()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("store", storeName(s.config)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func storeName(cfg Config) string {
	if cfg.Store == "sqlite" {
		return "sqlite:" + cfg.DBPath
	}
	return "json:" + cfg.DataDir
}
