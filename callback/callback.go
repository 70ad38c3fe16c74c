package callback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/BennyThomaz/JMSListener/contracts"
)

// MessageCallback handles a single callback delivery.
type MessageCallback interface {
	OnMessage(ctx context.Context, msg *contracts.CallbackMessage) error
}

// MessageCallbackFunc adapts a function to the MessageCallback interface.
type MessageCallbackFunc func(ctx context.Context, msg *contracts.CallbackMessage) error

// OnMessage implements MessageCallback.
func (f MessageCallbackFunc) OnMessage(ctx context.Context, msg *contracts.CallbackMessage) error {
	return f(ctx, msg)
}

const blockRule = "=================================================="

// ConsoleCallback prints each delivery as a delimited block so a developer
// can eyeball what the bridge actually sent. Missing envelope fields render
// as "N/A"; optional sections (correlation ID, properties) are skipped
// entirely when absent.
type ConsoleCallback struct {
	Out io.Writer

	// Now stamps the block header; overridable for tests.
	Now func() time.Time
}

// NewConsoleCallback creates a console callback writing to stdout.
func NewConsoleCallback() *ConsoleCallback {
	return &ConsoleCallback{Out: os.Stdout}
}

// OnMessage implements MessageCallback.
func (c *ConsoleCallback) OnMessage(_ context.Context, msg *contracts.CallbackMessage) error {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	w := c.Out
	fmt.Fprintf(w, "\n%s\n", blockRule)
	fmt.Fprintf(w, "HTTP Callback Received at %s\n", now().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintln(w, blockRule)
	fmt.Fprintf(w, "Message ID: %s\n", msg.DisplayID())
	fmt.Fprintf(w, "Message Type: %s\n", msg.DisplayType())
	fmt.Fprintf(w, "Content Type: %s\n", msg.DisplayContentType())
	fmt.Fprintf(w, "Content: %s\n", msg.DisplayContent())

	if msg.CorrelationID != "" {
		fmt.Fprintf(w, "Correlation ID: %s\n", msg.CorrelationID)
	}

	if len(msg.Properties) > 0 {
		fmt.Fprintln(w, "Properties:")
		// JSON object order is not preserved by the decoder, so render
		// keys sorted to keep the output stable.
		keys := make([]string, 0, len(msg.Properties))
		for k := range msg.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, msg.Properties[k])
		}
	}

	fmt.Fprintf(w, "JMS Timestamp: %s\n", msg.DisplayJMSTimestamp())
	fmt.Fprintf(w, "Priority: %s\n", msg.DisplayPriority())
	fmt.Fprintf(w, "Delivery Mode: %s\n", msg.DisplayDeliveryMode())
	fmt.Fprintln(w, blockRule)
	return nil
}

// CompositeCallback delivers a message to every registered callback and
// joins their errors. Delivery continues past individual failures so one
// broken sink does not starve the others.
type CompositeCallback struct {
	callbacks []MessageCallback
}

// NewCompositeCallback creates a composite over the given callbacks.
func NewCompositeCallback(callbacks ...MessageCallback) *CompositeCallback {
	return &CompositeCallback{callbacks: callbacks}
}

// Add appends a callback to the composite.
func (c *CompositeCallback) Add(cb MessageCallback) {
	c.callbacks = append(c.callbacks, cb)
}

// OnMessage implements MessageCallback.
func (c *CompositeCallback) OnMessage(ctx context.Context, msg *contracts.CallbackMessage) error {
	var errs []error
	for _, cb := range c.callbacks {
		if err := cb.OnMessage(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
