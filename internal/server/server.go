package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/rummycircle/internal/game"
	"github.com/lox/rummycircle/internal/meld"
	"github.com/lox/rummycircle/internal/randutil"
	"github.com/lox/rummycircle/internal/sessionid"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server hands every WebSocket connection its own game session
type Server struct {
	cfg      *Config
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock
	ids      *sessionid.Generator

	mu          sync.Mutex
	connections map[*Connection]struct{}
	sessions    int64
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewServer creates a new WebSocket server
func NewServer(cfg *Config, logger *log.Logger, clock quartz.Clock) *Server {
	if clock == nil {
		clock = quartz.NewReal()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:         cfg,
		logger:      logger.WithPrefix("server"),
		clock:       clock,
		ids:         sessionid.NewGenerator(clock, nil),
		connections: make(map[*Connection]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// Handler returns the HTTP routes served by s
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Serve accepts connections on l until ctx is cancelled
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	httpServer := &http.Server{Handler: s.Handler()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", l.Addr().String())
		if err := httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		s.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ListenAndServe binds the configured address and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.ListenAddress())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, l)
}

// Stop closes every open connection
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, r.Header.Get("Origin"))
}

// newSession builds a session for the next connection. With a fixed seed,
// the nth session is seeded with seed+n so runs are reproducible.
func (s *Server) newSession() (*game.Session, error) {
	id, err := s.ids.Generate()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	n := s.sessions
	s.sessions++
	s.mu.Unlock()

	rng := randutil.NewOrTime(0)
	if seed := s.cfg.Game.Seed; seed != 0 {
		rng = randutil.New(seed + n)
	}

	return game.NewSession(game.Options{
		ID:       id,
		HandSize: s.cfg.Game.HandSize,
		Rand:     rng,
		Clock:    s.clock,
		Logger:   s.logger,
		Rules:    meld.Rules{DistinctSuits: s.cfg.Game.StrictSets},
	}), nil
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, err := s.newSession()
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(s.ctx, conn, session, s.logger, s.clock)
	s.mu.Lock()
	s.connections[client] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "session", session.ID(), "total", total)

	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "session", session.ID(), "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
