// Package server implements the dispatch side of the RPC protocol.
//
// An RPCServer consumes invocations from a transport.IRPCServerTransport, looks the
// method up in its Registry and replies with a response envelope:
//
//   - undecodable body: status error, "Internal Server Error"
//   - empty method: status error, "Method cannot be empty" (no handler is invoked)
//   - method exposed by no endpoint: status error, "Method Not Support"
//   - handler returned an error: status error, err.Error()
//   - handler returned normally: status success, the returned value as data
//
// Messages without a reply address are executed but not answered. Every message is
// acknowledged after dispatch. With ServerConfig.RequeueOnFailure a message whose
// handler failed on its first delivery is requeued instead and answered by the redelivery.
//
// Endpoints are registered explicitly, one method name can only be exposed once:
//
//	s := server.NewRPCServer(config, transport, serializer.NewJSONSerializer())
//	err := s.Register(server.NewEndpoint("greeter", server.Method{
//		Name: "hello",
//		Handler: func(ctx context.Context, args common.Args, kwargs common.Kwargs) (any, error) {
//			name, err := args.String(0)
//			return "hello " + name, err
//		},
//	}))
//
// Handler invocations run through a middleware chain (logging, rate limit, timeout,
// panic recovery) configured by common.ServerConfig and extended with RPCServer.Use.
package server
