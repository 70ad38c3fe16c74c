package contracts

// Ack is the echo server's acknowledgment for a processed delivery.
// MessageID is a pointer so an absent inbound ID round-trips as JSON null,
// which is what bridges built against the original endpoint expect.
type Ack struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	MessageID *string `json:"messageId"`
	Timestamp int64   `json:"timestamp"`
}

// NewAck builds a success acknowledgment for the given message ID.
// An empty id yields a null messageId in the encoded response.
func NewAck(messageID string, timestampMillis int64) Ack {
	ack := Ack{
		Status:    "success",
		Message:   "Message processed successfully",
		Timestamp: timestampMillis,
	}
	if messageID != "" {
		ack.MessageID = &messageID
	}
	return ack
}

// RollbackAck is the rollback test server's success response.
type RollbackAck struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	MessageID    string `json:"messageId"`
	RequestCount int64  `json:"requestCount"`
	Message      string `json:"message"`
}

// RollbackError is the rollback test server's failure response, used both
// for simulated downstream failures and for unexpected server errors. The
// message ID is omitted on the internal error path, where it may not have
// been extracted yet.
type RollbackError struct {
	Error        string `json:"error"`
	Timestamp    string `json:"timestamp"`
	MessageID    string `json:"messageId,omitempty"`
	RequestCount int64  `json:"requestCount"`
}
