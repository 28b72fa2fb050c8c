// Package common provides the data structures and utilities shared by the client,
// server, serializer and transport packages of the RPC system.
//
// The package focuses on:
//   - The wire model: Invocation (request) and Response (envelope)
//   - Typed access to opaque arguments (Args, Kwargs)
//   - The error taxonomy shared by client and server
//   - Configuration structures for client and server components
//   - Custom logging implementation based on the dragonboat logger package
//
// Key Components:
//
//   - Invocation: {method, args, kwargs} document published by the client. The
//     method must be non-empty for the server to attempt dispatch.
//
//   - Response: {status, data, error} envelope. Exactly one of data/error is
//     meaningful depending on the Status.
//
//   - Status: success or error. A reply whose status is absent or unrecognized
//     decodes to StatusUnknown and is reported as a ProtocolError by the client.
//
//   - PrepareError, EncodingError, ProtocolError, RemoteError: error types that
//     classify every failure a call can end with.
//
//   - ServerConfig / ClientConfig: bus settings (broker, exchange, topic, result
//     exchange), timeouts and dispatch policies.
package common
