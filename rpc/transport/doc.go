// Package transport defines the message bus abstractions the RPC client and server
// are built on. It provides the contract that all bus adapters must fulfill, the
// correlation protocol itself lives in the client and server packages.
//
// The package focuses on:
//   - Topic addressed publishing with per-message properties (reply address,
//     correlation token, content type)
//   - Serial consumption on the server with explicit acknowledgment decisions
//   - A private reply address per client session
//
// Key Components:
//
//   - IRPCServerTransport: Consumes calls from a queue bound to the call topic and
//     publishes replies.
//
//   - IRPCClientTransport: Publishes calls and delivers messages arriving on the
//     private reply queue of the session.
//
//   - Delivery / Publishing: Message bodies plus the properties of the correlation
//     protocol.
//
// Implementations:
//
//   - amqp: RabbitMQ (AMQP 0-9-1) adapter.
//   - memory: In-process broker, used for tests and local demos.
package transport
