package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/BennyThomaz/JMSListener/contracts"
)

// SenderOption configures an HTTPSender.
type SenderOption func(*HTTPSender)

// WithMethod sets the HTTP method used for deliveries (POST or PUT).
func WithMethod(method string) SenderOption {
	return func(s *HTTPSender) {
		s.method = method
	}
}

// WithRetryPolicy sets the retry schedule for failed deliveries.
func WithRetryPolicy(policy RetryPolicy) SenderOption {
	return func(s *HTTPSender) {
		s.policy = policy
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *HTTPSender) {
		s.client = client
	}
}

// WithSenderLogger sets the logger for delivery outcomes.
func WithSenderLogger(logger *slog.Logger) SenderOption {
	return func(s *HTTPSender) {
		s.logger = logger
	}
}

// HTTPSender posts callback envelopes to an HTTP endpoint, standing in for
// the JMS bridge when exercising the test servers by hand.
type HTTPSender struct {
	url    string
	method string
	client *http.Client
	policy RetryPolicy
	logger *slog.Logger
}

// NewHTTPSender creates a sender targeting url.
func NewHTTPSender(url string, opts ...SenderOption) *HTTPSender {
	s := &HTTPSender{
		url:    url,
		method: http.MethodPost,
		client: &http.Client{Timeout: 30 * time.Second},
		policy: DefaultRetryPolicy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnMessage implements MessageCallback. A message without an ID is
// assigned a generated one before sending, the way the bridge assigns a
// JMS message ID on the producer side.
func (s *HTTPSender) OnMessage(ctx context.Context, msg *contracts.CallbackMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = "ID:" + uuid.New().String()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode callback message %s: %w", msg.MessageID, err)
	}

	err = s.policy.Do(ctx, func() error {
		return s.send(ctx, payload)
	})
	if err != nil {
		s.logger.Error("callback delivery failed",
			"messageId", msg.MessageID,
			"url", s.url,
			"error", err)
		return fmt.Errorf("deliver message %s: %w", msg.MessageID, err)
	}

	s.logger.Info("callback delivered", "messageId", msg.MessageID, "url", s.url)
	return nil
}

func (s *HTTPSender) send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, s.method, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the failure summary.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
