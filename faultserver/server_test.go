package faultserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(cfg Config, out io.Writer) *Server {
	if out == nil {
		out = io.Discard
	}
	return New(cfg,
		WithOutput(out),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func deliver(srv *Server, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/jms-messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestConfig(t *testing.T) {
	t.Run("accepts the full valid fail-rate range", func(t *testing.T) {
		for _, rate := range []float64{0.0, 0.3, 1.0} {
			cfg := Config{FailRate: rate}
			assert.NoError(t, cfg.Validate())
		}
	})

	t.Run("rejects out of range fail-rates", func(t *testing.T) {
		for _, rate := range []float64{-0.1, 1.5, 2.0} {
			cfg := Config{FailRate: rate}
			assert.Error(t, cfg.Validate(), "fail-rate %v must be rejected", rate)
		}
	})

	t.Run("rejects negative delay", func(t *testing.T) {
		cfg := Config{Delay: -time.Second}
		assert.Error(t, cfg.Validate())
	})

	t.Run("demo mode overrides explicit settings", func(t *testing.T) {
		cfg := Config{Port: 9999, FailRate: 0.9, Delay: 10 * time.Second}.WithDemo()

		assert.Equal(t, DemoFailRate, cfg.FailRate)
		assert.Equal(t, DemoDelay, cfg.Delay)
		assert.Equal(t, 9999, cfg.Port)
	})
}

func TestRollbackServer(t *testing.T) {
	t.Run("zero fail-rate never fails", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 0.0}, nil)
		for i := 0; i < 1000; i++ {
			rec := deliver(srv, http.MethodPost, `{"messageId":"m1"}`)
			require.Equal(t, http.StatusOK, rec.Code, "request %d unexpectedly failed", i+1)
		}
	})

	t.Run("full fail-rate always fails with a known status", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 1.0}, nil)
		expected := []int{
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		}
		for i := 0; i < 1000; i++ {
			rec := deliver(srv, http.MethodPost, `{"messageId":"m1"}`)
			require.Contains(t, expected, rec.Code, "request %d unexpectedly succeeded", i+1)

			var resp struct {
				Error        string `json:"error"`
				MessageID    string `json:"messageId"`
				RequestCount int64  `json:"requestCount"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, "m1", resp.MessageID)
			assert.Equal(t, int64(i+1), resp.RequestCount)
		}
	})

	t.Run("request count starts at 1 and increases by exactly 1", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 0.0}, nil)
		for i := 1; i <= 10; i++ {
			rec := deliver(srv, http.MethodPost, `{}`)

			var resp struct {
				RequestCount int64 `json:"requestCount"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, int64(i), resp.RequestCount)
		}
		assert.Equal(t, int64(10), srv.RequestCount())
	})

	t.Run("success response carries the full acknowledgment", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 0.0}, nil)

		rec := deliver(srv, http.MethodPost, `{"messageId":"order-42"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp struct {
			Status       string `json:"status"`
			Timestamp    string `json:"timestamp"`
			MessageID    string `json:"messageId"`
			RequestCount int64  `json:"requestCount"`
			Message      string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "order-42", resp.MessageID)
		assert.Equal(t, int64(1), resp.RequestCount)
		assert.Equal(t, "Message processed successfully", resp.Message)
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}$`, resp.Timestamp)
	})

	t.Run("malformed JSON is processed with an unknown id", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 0.0}, nil)

		rec := deliver(srv, http.MethodPost, `{not json`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"messageId":"unknown"`)
	})

	t.Run("PUT is handled identically to POST", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 0.0}, nil)
		body := `{"messageId":"m1"}`

		postRec := deliver(srv, http.MethodPost, body)
		putRec := deliver(srv, http.MethodPut, body)

		assert.Equal(t, postRec.Code, putRec.Code)

		var post, put map[string]any
		require.NoError(t, json.Unmarshal(postRec.Body.Bytes(), &post))
		require.NoError(t, json.Unmarshal(putRec.Body.Bytes(), &put))
		// Identical aside from the timestamp and counter.
		for _, m := range []map[string]any{post, put} {
			delete(m, "timestamp")
			delete(m, "requestCount")
		}
		assert.Equal(t, post, put)
	})

	t.Run("delay is applied before responding", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 0.0, Delay: 50 * time.Millisecond}, nil)

		start := time.Now()
		rec := deliver(srv, http.MethodPost, `{}`)
		elapsed := time.Since(start)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	})

	t.Run("console lines are tagged", func(t *testing.T) {
		var out strings.Builder
		srv := newTestServer(Config{FailRate: 1.0}, &out)

		deliver(srv, http.MethodPost, `{"messageId":"m1"}`)

		assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] FAILURE 1: 5\d{2} .+ for message m1`,
			strings.TrimSpace(out.String()))
	})

	t.Run("other methods are rejected without counting", func(t *testing.T) {
		srv := newTestServer(Config{FailRate: 0.0}, nil)

		rec := deliver(srv, http.MethodGet, "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, int64(0), srv.RequestCount())
	})
}
