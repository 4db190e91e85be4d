// Package daemon is the background process: it owns the session store and
// the importer, accepts relayed requests for capture, and serves UI tabs
// over HTTP and websockets.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
	"github.com/anatolykoptev/go-bookmarks/bus"
	"github.com/anatolykoptev/go-bookmarks/ledger"
	"github.com/anatolykoptev/go-bookmarks/memory"
)

// Importer runs imports. *bookmarks.Importer implements it.
type Importer interface {
	StartImport(ctx context.Context, ic bookmarks.ImportConfig) error
	Running() bool
	LastRun() bookmarks.Run
}

// ProjectLister lists memory projects. *memory.Client implements it.
type ProjectLister interface {
	FetchProjects(ctx context.Context) ([]memory.Project, error)
}

// RunLister reads run history. *ledger.Ledger implements it.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]ledger.RunSummary, error)
	RunTweets(ctx context.Context, runID string) ([]string, error)
}

// Config holds daemon settings.
type Config struct {
	Addr      string
	TabBuffer int
}

// Server is the background daemon.
type Server struct {
	cfg      Config
	store    *bookmarks.SessionStore
	importer Importer
	projects ProjectLister
	runs     RunLister
	hub      *bus.Hub

	startedAt time.Time
	ctx       context.Context
	wg        sync.WaitGroup
}

// New creates a daemon. projects and runs may be nil.
func New(cfg Config, store *bookmarks.SessionStore, imp Importer, projects ProjectLister, runs RunLister) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.TabBuffer < 1 {
		cfg.TabBuffer = 64
	}
	return &Server{
		cfg:       cfg,
		store:     store,
		importer:  imp,
		projects:  projects,
		runs:      runs,
		hub:       bus.NewHub(),
		startedAt: time.Now(),
		ctx:       context.Background(),
	}
}

// Hub exposes the tab registry.
func (s *Server) Hub() *bus.Hub { return s.hub }

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/capture", s.handleCapture).Methods("POST")
	api.HandleFunc("/tokens", s.handleClearTokens).Methods("DELETE")
	api.HandleFunc("/messages", s.handleMessage).Methods("POST")
	api.HandleFunc("/runs", s.handleRuns).Methods("GET")
	api.HandleFunc("/runs/{id}/tweets", s.handleRunTweets).Methods("GET")
	api.HandleFunc("/tabs", s.handleTab).Methods("GET")
	return r
}

// Run serves until ctx is canceled, then waits for an active import to stop.
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("daemon listening", slog.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		s.wg.Wait()
		return err
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// StartImport launches a run in the background and forwards its events to
// the active tab. ErrImportInProgress is returned when a run is active.
func (s *Server) StartImport(msg bus.Message) error {
	if s.importer.Running() {
		return bookmarks.ErrImportInProgress
	}

	events := make(chan bookmarks.Event, s.cfg.TabBuffer)
	ic := msg.ImportConfig()
	ic.Events = events

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		bus.Forward(events, s.hub)
	}()
	go func() {
		defer s.wg.Done()
		err := s.importer.StartImport(s.ctx, ic)
		if errors.Is(err, bookmarks.ErrImportInProgress) {
			// Lost the race with another request; the channel was never used.
			close(events)
			slog.Info("import request ignored: already running")
		}
	}()
	return nil
}
