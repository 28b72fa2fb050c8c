// Package cmd implements the command-line interface of mqRPC. It provides
// commands for running a server and for calling it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Start an RPC server with the arith endpoint
//   - call: Call a remote method, perf measures the call latency
//   - demo: Server and client in one process issuing the sample calls
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See mqrpc -help for a list of all commands.
package cmd
