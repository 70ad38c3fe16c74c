// Package callback provides handlers for JMS callback deliveries.
//
// A MessageCallback consumes a decoded contracts.CallbackMessage. The
// package ships three implementations:
//   - ConsoleCallback: renders the delivery as a delimited, human-readable
//     block for manual inspection (used by the echo server)
//   - HTTPSender: re-posts the envelope to an HTTP endpoint with a
//     fixed-delay retry policy (used to drive the test servers by hand)
//   - CompositeCallback: fans a delivery out to several callbacks
//
// The HTTPSender deliberately mirrors the behavior of the bridge under
// test: a response outside 2xx counts as a failed delivery and is retried,
// and the final error is what would trigger a transaction rollback on the
// bridge side.
package callback
