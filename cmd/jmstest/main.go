package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/BennyThomaz/JMSListener/callback"
	"github.com/BennyThomaz/JMSListener/contracts"
	"github.com/BennyThomaz/JMSListener/echoserver"
	"github.com/BennyThomaz/JMSListener/faultserver"
	"github.com/BennyThomaz/JMSListener/internal/netcheck"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jmstest",
		Short: "Test doubles for a JMS HTTP-callback integration",
		Long: `jmstest bundles the mock endpoints used to exercise a JMS-to-HTTP
callback bridge by hand: an echo logger server, a fault-injecting
"transaction rollback" server, a callback sender that stands in for the
bridge, and a network connectivity probe.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newEchoCmd())
	rootCmd.AddCommand(newRollbackCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newNetcheckCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context canceled on SIGINT/SIGTERM, so Ctrl+C
// turns into a graceful server shutdown and a zero exit code.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newEchoCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "echo",
		Short: "Run the echo logger server",
		Long: `Runs the echo logger server: every POST or PUT delivery is printed to
the console as a human-readable block and acknowledged with a success
response echoing the message ID. Point the bridge's
http.callback.url at this server to inspect what it sends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			srv := echoserver.New(echoserver.Config{Port: port})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", echoserver.DefaultPort, "Server port")
	return cmd
}

func newRollbackCmd() *cobra.Command {
	var (
		cfg     faultserver.Config
		delayMS int
		demo    bool
	)

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Run the transaction rollback test server",
		Long: `Runs the fault-injection server. A configured fraction of deliveries is
answered with a random 5xx status so the bridge's transactional rollback
and redelivery can be observed. Configure the bridge with:

  http.callback.url=http://localhost:<port>/api/jms-messages
  jms.session.transacted=true`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Delay = time.Duration(delayMS) * time.Millisecond
			if demo {
				cfg = cfg.WithDemo()
				fmt.Println("Demo mode: 30% failure rate, 500ms delay")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			srv := faultserver.New(cfg)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&cfg.Port, "port", faultserver.DefaultPort, "Server port")
	cmd.Flags().Float64Var(&cfg.FailRate, "fail-rate", 0.0, "Failure rate (0.0-1.0)")
	cmd.Flags().IntVar(&delayMS, "delay-ms", 0, "Artificial delay in milliseconds")
	cmd.Flags().BoolVar(&demo, "demo", false, "Force a 30% failure rate and 500ms delay")
	return cmd
}

func newSendCmd() *cobra.Command {
	var (
		url        string
		method     string
		count      int
		interval   time.Duration
		attempts   int
		retryDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send sample callback messages to a test server",
		Long: `Posts generated callback envelopes to a test server, standing in for
the JMS bridge. Deliveries that fail with a non-2xx status are retried
with a fixed delay, mirroring the bridge's retry settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			sender := callback.NewHTTPSender(url,
				callback.WithMethod(method),
				callback.WithRetryPolicy(callback.RetryPolicy{
					MaxAttempts: attempts,
					Delay:       retryDelay,
				}))

			var failed int
			for i := 1; i <= count; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}

				if err := sender.OnMessage(ctx, sampleMessage(i, count)); err != nil {
					failed++
				}

				if interval > 0 && i < count {
					select {
					case <-time.After(interval):
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d deliveries failed", failed, count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/api/jms-messages", "Callback endpoint URL")
	cmd.Flags().StringVar(&method, "method", "POST", "HTTP method (POST or PUT)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of messages to send")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Pause between messages")
	cmd.Flags().IntVar(&attempts, "retries", callback.DefaultRetryPolicy.MaxAttempts, "Delivery attempts per message")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", callback.DefaultRetryPolicy.Delay, "Delay between delivery attempts")
	return cmd
}

// sampleMessage builds an envelope shaped like what the bridge emits for a
// JMS TextMessage (default priority 4, persistent delivery mode 2).
func sampleMessage(seq, total int) *contracts.CallbackMessage {
	now := time.Now().UnixMilli()
	priority := 4
	deliveryMode := 2
	content, _ := json.Marshal(fmt.Sprintf("Test message %d of %d", seq, total))

	return &contracts.CallbackMessage{
		MessageType:   "TextMessage",
		ContentType:   "text",
		Content:       content,
		CorrelationID: uuid.New().String(),
		Properties: map[string]string{
			"source":   "jmstest",
			"sequence": strconv.Itoa(seq),
		},
		JMSTimestamp: &now,
		Priority:     &priority,
		DeliveryMode: &deliveryMode,
	}
}

func newNetcheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "netcheck <host> <port>",
		Short: "Test TCP connectivity to a broker or endpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}

			ctx, stop := signalContext()
			defer stop()

			result, err := netcheck.Probe(ctx, args[0], port, timeout)
			if err != nil {
				return fmt.Errorf("connectivity test failed after %s: %w", result.Elapsed.Round(time.Millisecond), err)
			}

			fmt.Printf("Connected to %s (%s) in %s\n",
				result.Addr, result.RemoteAddr, result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Connection timeout")
	return cmd
}
