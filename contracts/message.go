package contracts

import (
	"encoding/json"
	"strconv"
)

// NotAvailable is the placeholder rendered for envelope fields the bridge
// did not set.
const NotAvailable = "N/A"

// CallbackMessage is the JSON envelope a JMS bridge delivers over HTTP for
// each consumed message. It mirrors the JMS message headers plus the
// payload. All fields are optional; a delivery with an empty body object
// is still a valid delivery.
type CallbackMessage struct {
	MessageID     string            `json:"messageId,omitempty"`
	MessageType   string            `json:"messageType,omitempty"`
	ContentType   string            `json:"contentType,omitempty"`
	Content       json.RawMessage   `json:"content,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Destination   string            `json:"destination,omitempty"`
	ReplyTo       string            `json:"replyTo,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
	JMSTimestamp  *int64            `json:"jmsTimestamp,omitempty"`
	Priority      *int              `json:"priority,omitempty"`
	DeliveryMode  *int              `json:"deliveryMode,omitempty"`
	Expiration    *int64            `json:"expiration,omitempty"`
	Redelivered   bool              `json:"redelivered,omitempty"`
}

// DisplayID returns the message ID or the placeholder when unset.
func (m *CallbackMessage) DisplayID() string {
	return orPlaceholder(m.MessageID)
}

// DisplayType returns the message type or the placeholder when unset.
func (m *CallbackMessage) DisplayType() string {
	return orPlaceholder(m.MessageType)
}

// DisplayContentType returns the content type or the placeholder when unset.
func (m *CallbackMessage) DisplayContentType() string {
	return orPlaceholder(m.ContentType)
}

// DisplayContent renders the payload for console output. String payloads
// are unquoted; structured payloads are rendered as their compact JSON
// text. An absent payload renders as the placeholder.
func (m *CallbackMessage) DisplayContent() string {
	if len(m.Content) == 0 {
		return NotAvailable
	}
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}
	return string(m.Content)
}

// DisplayJMSTimestamp renders the JMS timestamp or the placeholder.
func (m *CallbackMessage) DisplayJMSTimestamp() string {
	if m.JMSTimestamp == nil {
		return NotAvailable
	}
	return strconv.FormatInt(*m.JMSTimestamp, 10)
}

// DisplayPriority renders the priority or the placeholder.
func (m *CallbackMessage) DisplayPriority() string {
	if m.Priority == nil {
		return NotAvailable
	}
	return strconv.Itoa(*m.Priority)
}

// DisplayDeliveryMode renders the delivery mode or the placeholder.
func (m *CallbackMessage) DisplayDeliveryMode() string {
	if m.DeliveryMode == nil {
		return NotAvailable
	}
	return strconv.Itoa(*m.DeliveryMode)
}

func orPlaceholder(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
