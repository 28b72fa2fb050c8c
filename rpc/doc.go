// Package rpc provides remote procedure calls carried over a topic based
// publish/subscribe message broker. A client publishes a named invocation with
// positional and keyword arguments, a server consumes it from its queue, dispatches
// it to a registered endpoint and publishes a correlated response envelope to the
// private reply queue of the client.
//
// The package is organized into several subpackages:
//
//   - common: Wire model (Invocation, Response), error taxonomy, configuration
//     structures and logging.
//
//   - serializer: Conversion between the wire model and message bodies (JSON, GOB).
//
//   - transport: Message bus abstractions with pluggable implementations
//     (AMQP via RabbitMQ, in-process memory broker).
//
//   - client: Correlation tracking and the synchronous call proxy.
//
//   - server: Endpoint registry, dispatch router and handler middleware.
package rpc
