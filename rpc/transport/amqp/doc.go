// Package amqp implements the message bus of the RPC system on top of an
// AMQP 0-9-1 broker (RabbitMQ) using github.com/rabbitmq/amqp091-go.
//
// Topology:
//
//   - Calls are published to a direct exchange (ServerConfig.Transport.Exchange)
//     with the call topic as routing key.
//
//   - Every server process declares its own auto-delete queue named
//     <prefix>-<hostname>-<random hex>, binds it to the call topic and consumes
//     it with manual acknowledgment. With several servers bound to the same
//     topic, every server receives every call.
//
//   - Every client session declares a server-named, exclusive, auto-delete reply
//     queue. Its name is the reply address attached to each call.
//
//   - Replies are published to the default exchange with the reply address as
//     routing key, or to the optional result exchange the reply queue is bound to.
//
// Thread Safety:
//
//	Publishing is guarded by a mutex per transport, the AMQP channel is never used
//	by two goroutines at once.
package amqp
