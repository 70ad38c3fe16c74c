// Package faultserver implements the transaction rollback test server: an
// intentionally unreliable HTTP callback endpoint. It answers a configured
// fraction of deliveries with randomly chosen 5xx failures and can inject
// fixed latency, so the transactional redelivery behavior of a JMS bridge
// can be exercised against it.
package faultserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BennyThomaz/JMSListener/contracts"
)

// failureMode is one of the simulated downstream failures. A failing
// request picks one uniformly at random.
type failureMode struct {
	code   int
	reason string
}

var failureModes = []failureMode{
	{http.StatusInternalServerError, "Internal Server Error"},
	{http.StatusServiceUnavailable, "Service Unavailable"},
	{http.StatusBadGateway, "Bad Gateway"},
	{http.StatusGatewayTimeout, "Gateway Timeout"},
}

// Server is the rollback test server. Requests are processed strictly one
// at a time so the injected delay stalls the whole endpoint, the same way
// the single-threaded endpoint it stands in for would behave.
type Server struct {
	cfg      Config
	out      io.Writer
	logger   *slog.Logger
	requests atomic.Int64

	mu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithOutput redirects the tagged console lines, which default to stdout.
func WithOutput(out io.Writer) Option {
	return func(s *Server) { s.out = out }
}

// WithLogger sets the lifecycle logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a rollback server from an already validated configuration.
func New(cfg Config, opts ...Option) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	s := &Server{
		cfg:    cfg,
		out:    os.Stdout,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestCount returns how many deliveries have been counted so far.
func (s *Server) RequestCount() int64 {
	return s.requests.Load()
}

// ServeHTTP implements http.Handler. POST and PUT on any path share the
// same handling; per-request transport logging is deliberately absent, the
// tagged FAILURE/SUCCESS/ERROR lines are the only output.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.requests.Add(1)

	defer func() {
		if rec := recover(); rec != nil {
			ts := timestamp()
			fmt.Fprintf(s.out, "[%s] ERROR %d: Exception processing request: %v\n", ts, count, rec)
			s.writeJSON(w, http.StatusInternalServerError, contracts.RollbackError{
				Error:        fmt.Sprintf("Server exception: %v", rec),
				Timestamp:    ts,
				RequestCount: count,
			})
		}
	}()

	if s.cfg.Delay > 0 {
		time.Sleep(s.cfg.Delay)
	}

	// rand.Float64 draws from [0, 1), so a FailRate of 1.0 fails every
	// request and 0.0 never does.
	shouldFail := rand.Float64() < s.cfg.FailRate

	body, err := io.ReadAll(r.Body)
	if err != nil {
		panic(fmt.Sprintf("reading request body: %v", err))
	}
	messageID := extractMessageID(body)
	ts := timestamp()

	if shouldFail {
		mode := failureModes[rand.Intn(len(failureModes))]
		fmt.Fprintf(s.out, "[%s] FAILURE %d: %d %s for message %s\n",
			ts, count, mode.code, mode.reason, messageID)
		s.writeJSON(w, mode.code, contracts.RollbackError{
			Error:        mode.reason,
			Timestamp:    ts,
			MessageID:    messageID,
			RequestCount: count,
		})
		return
	}

	fmt.Fprintf(s.out, "[%s] SUCCESS %d: Message %s processed successfully\n", ts, count, messageID)
	s.writeJSON(w, http.StatusOK, contracts.RollbackAck{
		Status:       "success",
		Timestamp:    ts,
		MessageID:    messageID,
		RequestCount: count,
		Message:      "Message processed successfully",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// extractMessageID pulls messageId out of the delivery body. Any body that
// does not decode to an envelope with an ID yields "unknown"; extraction
// never fails a request.
func extractMessageID(body []byte) string {
	var msg contracts.CallbackMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.MessageID == "" {
		return "unknown"
	}
	return msg.MessageID
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000")
}

// Run starts the server and blocks until ctx is canceled or the listener
// fails. The server binds loopback only: the bridge under test is expected
// to run on the same machine.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
	srv := &http.Server{Addr: addr, Handler: s}

	s.logger.Info("transaction rollback test server starting",
		"addr", addr,
		"failRate", s.cfg.FailRate,
		"delay", s.cfg.Delay,
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
		s.logger.Info("shutting down rollback server", "requests", s.RequestCount())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
