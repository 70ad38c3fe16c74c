// Package contracts defines the wire types exchanged between a JMS-to-HTTP
// bridge and the test servers in this repository.
//
// The central type is CallbackMessage, the JSON envelope a bridge POSTs to
// a callback endpoint for every consumed JMS message. Every field is
// optional: the test servers must accept whatever subset a bridge emits
// and render missing fields as placeholders rather than rejecting the
// delivery.
//
// Ack, RollbackAck and RollbackError are the response bodies produced by
// the echo server and the rollback (fault-injection) server respectively.
package contracts
