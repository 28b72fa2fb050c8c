// Package memory implements an in-process message bus for the RPC system. It
// mimics the parts of an AMQP broker the correlation protocol relies on: direct
// exchanges, a default exchange routing by queue name, FIFO queues with a single
// consumer and requeueing of negatively acknowledged messages.
//
// Key Components:
//
//   - Broker: Exchanges, queues and bindings. Shared by all transports that should
//     see each other.
//
//   - serverTransport: Binds a fresh queue (<prefix>-<hostname>-<random>) to the call
//     topic and consumes it serially.
//
//   - clientTransport: Owns a private reply queue and publishes calls to the call
//     exchange.
//
// Differences to a real broker:
//
//   - Requeued messages are appended to the tail of the queue.
//   - Queues are bounded (DefaultQueueSize), publishing blocks while a target queue
//     is full.
//
// Usage:
//
//	broker := memory.NewBroker()
//	srv := server.NewRPCServer(config, memory.NewMemoryServerTransport(broker), serializer.NewJSONSerializer())
//	cli, err := client.NewRPCClient(clientConfig, memory.NewMemoryClientTransport(broker), serializer.NewJSONSerializer())
package memory
