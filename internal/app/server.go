// Package app assembles and runs the armory HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	httpapi "github.com/emberforge/armory/internal/api/http"
	"github.com/emberforge/armory/internal/ledger"
	"github.com/emberforge/armory/internal/mint"
	"github.com/emberforge/armory/internal/observability/audit"
	storagesqlite "github.com/emberforge/armory/internal/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 10 * time.Second

// Options configures the armory server.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// DBPath is the SQLite database path.
	DBPath string
	// PublisherKey gates grant issuance.
	PublisherKey string
	// DeployerAddress receives the bootstrap grant on first boot.
	DeployerAddress string
}

// Server hosts the armory HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *storagesqlite.Store
}

// New creates a configured armory server listening on the provided address.
func New(opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", opts.Addr, err)
	}
	store, err := openStore(opts.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	service := mint.NewService(mint.Config{
		Store:        store,
		Ledger:       ledger.NewEmitter(store),
		Audit:        audit.NewEmitter(store),
		PublisherKey: opts.PublisherKey,
	})

	g, created, err := service.Initialize(context.Background(), opts.DeployerAddress)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("initialize armory: %w", err)
	}
	if created {
		// The grant id is the capability secret. It is logged exactly once,
		// at first boot, and is not recoverable afterwards.
		log.Printf("armory initialized; deployer grant for %s: %s", g.Recipient, g.ID)
	}

	mux := http.NewServeMux()
	httpapi.RegisterRoutes(mux, httpapi.NewHandler(service))
	handler := httpapi.WithIdentity(httpapi.WithAudit(audit.NewEmitter(store), mux))

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           otelhttp.NewHandler(handler, "armory"),
			ReadHeaderTimeout: 5 * time.Second,
		},
		store: store,
	}, nil
}

// Addr returns the listener address for the armory server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves an armory server until the context ends.
func Run(ctx context.Context, opts Options) error {
	server, err := New(opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the armory server and blocks until it stops or the context
// ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("armory server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown http server: %v", err)
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func openStore(path string) (*storagesqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "armory.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := storagesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}
