// Package echoserver implements the echo logger test server: an HTTP
// endpoint a JMS bridge can be pointed at, which prints every delivered
// callback message to the console and acknowledges it.
package echoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/BennyThomaz/JMSListener/callback"
	"github.com/BennyThomaz/JMSListener/contracts"
)

// DefaultPort is the port the echo server listens on unless configured
// otherwise.
const DefaultPort = 8080

// Config holds the echo server's startup configuration.
type Config struct {
	// Port to bind. The echo server listens on all interfaces so a bridge
	// running on another host can reach it.
	Port int

	// Out receives the human-readable console output (request lines and
	// message blocks). Defaults to stdout.
	Out io.Writer

	// Logger receives lifecycle events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the echo logger server. Requests are processed one at a time,
// matching the single-threaded endpoint bridges are tested against, so the
// console output of concurrent deliveries never interleaves.
type Server struct {
	cfg    Config
	cb     callback.MessageCallback
	logger *slog.Logger
	out    io.Writer

	mu sync.Mutex
}

// New creates an echo server from cfg.
func New(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		cb:     &callback.ConsoleCallback{Out: cfg.Out},
		logger: cfg.Logger,
		out:    cfg.Out,
	}
}

// ServeHTTP implements http.Handler. POST and PUT on any path are handled
// identically; the path is not routed. A malformed JSON body yields 400,
// anything unexpected yields 500, and neither brings the server down.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.out, "[%s] %s %s\n", time.Now().Format("15:04:05"), r.Method, r.URL.Path)

	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic while handling delivery", "panic", rec)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("failed to read request body", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var msg contracts.CallbackMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logger.Error("invalid JSON received", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := s.cb.OnMessage(r.Context(), &msg); err != nil {
		s.logger.Error("callback failed", "messageId", msg.MessageID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ack := contracts.NewAck(msg.MessageID, time.Now().UnixMilli())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ack); err != nil {
		s.logger.Error("failed to write acknowledgment", "error", err)
	}
}

// Run starts the server and blocks until ctx is canceled or the listener
// fails. Cancellation triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{Addr: addr, Handler: s}

	s.logger.Info("JMS HTTP callback test server starting",
		"addr", addr,
		"url", fmt.Sprintf("http://localhost:%d/api/jms-messages", s.cfg.Port))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down echo server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
