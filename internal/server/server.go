// Package server exposes the kiosk's HTTP surface: the mirror display API,
// viewer event streams, transcript ingestion and the recording admin API.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/raheva/mirror/internal/config"
	"github.com/raheva/mirror/internal/hub"
	"github.com/raheva/mirror/internal/recording"
	"github.com/raheva/mirror/internal/session"
)

// Opts holds the server's collaborators. All of them are required except the
// recorder, which admin video routes fall back to the ledger without.
type Opts struct {
	Config   config.Config
	DB       *gorm.DB
	Hub      *hub.Hub
	Session  *session.Controller
	Resolver session.Resolver
	Ledger   *recording.GormLedger
}

// Server is the kiosk HTTP server.
type Server struct {
	cfg      config.Config
	db       *gorm.DB
	hub      *hub.Hub
	session  *session.Controller
	resolver session.Resolver
	ledger   *recording.GormLedger
	router   *gin.Engine
}

// New validates opts and builds the server with all routes registered.
func New(opts Opts) (*Server, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("server: db is required")
	}
	if opts.Hub == nil {
		return nil, fmt.Errorf("server: hub is required")
	}
	if opts.Session == nil {
		return nil, fmt.Errorf("server: session controller is required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("server: resolver is required")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("server: ledger is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:      opts.Config,
		db:       opts.DB,
		hub:      opts.Hub,
		session:  opts.Session,
		resolver: opts.Resolver,
		ledger:   opts.Ledger,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
