package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/serializer"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/server")

// errMethodNotSupported is returned by the terminal InvokeFunc if the method
// vanished between lookup and invocation (it never does after Serve)
var errMethodNotSupported = errors.New(common.MsgMethodNotSupported)

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		amqp.NewAMQPServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Register(arith.NewEndpoint()); err != nil {
//		panic(err)
//	}
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	Logger.Infof("Created RPC Server")
	Logger.Debugf("%s", config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		registry:   NewRegistry(),
	}
}

// RPCServer consumes invocations from the bus and dispatches them to the registry.
// Messages are processed one at a time in delivery order.
type RPCServer struct {
	config      common.ServerConfig
	transport   transport.IRPCServerTransport
	serializer  serializer.IRPCSerializer
	registry    *Registry
	middlewares []Middleware
	invoke      InvokeFunc
	metrics     *metricsServer
}

// Register adds endpoints to the registry, see Registry.Register
func (s *RPCServer) Register(endpoints ...IEndpoint) error {
	return s.registry.Register(endpoints...)
}

// Use adds middlewares that run around every handler invocation.
// They run inside the built-in logging, rate limit and timeout middlewares.
// Must be called before Serve.
func (s *RPCServer) Use(middlewares ...Middleware) {
	s.middlewares = append(s.middlewares, middlewares...)
}

// Serve prepares the transport and blocks in the consumption loop until ctx
// is done or the transport fails. Setup failures are returned as *common.PrepareError.
func (s *RPCServer) Serve(ctx context.Context) error {
	if s.registry.Len() == 0 {
		Logger.Warningf("Serving without any registered method, every call will fail with %q", common.MsgMethodNotSupported)
	}

	s.invoke = s.buildChain()(s.callHandler)
	s.transport.RegisterHandler(s.dispatch)

	// Start the metrics endpoint
	if s.config.MetricsEndpoint != "" {
		m, err := startMetricsServer(s.config.MetricsEndpoint)
		if err != nil {
			return &common.PrepareError{Op: "metrics endpoint", Err: err}
		}
		s.metrics = m
		defer s.metrics.Close()
	}

	for _, endpoint := range s.registry.Endpoints() {
		names := make([]string, 0, len(endpoint.Methods()))
		for _, m := range endpoint.Methods() {
			names = append(names, m.Name)
		}
		Logger.Infof("Serving endpoint %s with methods %v", endpoint.Name(), names)
	}
	return s.transport.Listen(ctx, s.config)
}

// Close closes the transport
func (s *RPCServer) Close() error {
	return s.transport.Close()
}

// --------------------------------------------------------------------------
// Dispatch
// --------------------------------------------------------------------------

// dispatch handles a single inbound message:
// decode, validate, invoke, reply (if the message has a reply address), settle.
func (s *RPCServer) dispatch(ctx context.Context, d transport.Delivery) transport.AckDecision {
	start := time.Now()
	resp, handlerFailed := s.handle(ctx, d.Body)

	decision := s.ackDecision(d, handlerFailed)
	observeDispatch(start, resp, decision)

	// A requeued message is answered by its redelivery
	if decision == transport.Requeue {
		Logger.Debugf("Requeueing failed call (correlation id %q)", d.CorrelationID)
		return decision
	}

	if d.ReplyTo != "" {
		s.reply(ctx, d, resp)
	}
	return decision
}

// handle decodes the body and produces the response envelope.
// The second return value reports whether the handler itself failed.
func (s *RPCServer) handle(ctx context.Context, body []byte) (*common.Response, bool) {
	var inv common.Invocation
	if err := s.serializer.DeserializeInvocation(body, &inv); err != nil {
		Logger.Warningf("Failed to decode invocation: %v", err)
		return common.NewErrorResponse(common.MsgInternalServerError), false
	}

	if inv.Method == "" {
		return common.NewErrorResponse(common.MsgMethodEmpty), false
	}

	// The default envelope stays in place if no endpoint exposes the method
	resp := common.NewMethodNotSupportedResponse()
	if _, _, ok := s.registry.Lookup(inv.Method); !ok {
		Logger.Debugf("No endpoint exposes method %s", inv.Method)
		return resp, false
	}

	data, err := s.invoke(ctx, &inv)
	if err != nil {
		return common.NewErrorResponse(err.Error()), true
	}
	return common.NewSuccessResponse(data), false
}

// callHandler is the terminal InvokeFunc of the middleware chain
func (s *RPCServer) callHandler(ctx context.Context, inv *common.Invocation) (any, error) {
	handler, _, ok := s.registry.Lookup(inv.Method)
	if !ok {
		return nil, errMethodNotSupported
	}
	args := inv.Args
	if args == nil {
		args = common.Args{}
	}
	kwargs := inv.Kwargs
	if kwargs == nil {
		kwargs = common.Kwargs{}
	}
	return handler(ctx, args, kwargs)
}

// reply encodes the envelope and publishes it to the reply address of the delivery
func (s *RPCServer) reply(ctx context.Context, d transport.Delivery, resp *common.Response) {
	body, err := s.serializer.SerializeResponse(*resp)
	if err != nil {
		// e.g. the handler returned a value that is not representable
		Logger.Warningf("Failed to encode response: %v", err)
		body, err = s.serializer.SerializeResponse(*common.NewErrorResponse(common.MsgInternalServerError))
		if err != nil {
			Logger.Errorf("Failed to encode error response: %v", err)
			return
		}
	}

	err = s.transport.Reply(ctx, d.ReplyTo, transport.Publishing{
		Body:          body,
		ContentType:   s.serializer.ContentType(),
		CorrelationID: d.CorrelationID,
	})
	if err != nil {
		Logger.Warningf("Failed to reply to %s: %v", d.ReplyTo, err)
	}
}

// ackDecision applies the acknowledgement policy
func (s *RPCServer) ackDecision(d transport.Delivery, handlerFailed bool) transport.AckDecision {
	if s.config.RequeueOnFailure && handlerFailed && !d.Redelivered {
		return transport.Requeue
	}
	return transport.Ack
}

// buildChain assembles the middlewares configured by ServerConfig and Use
func (s *RPCServer) buildChain() Middleware {
	chain := []Middleware{LoggingMiddleware()}
	if s.config.RateLimit > 0 {
		burst := s.config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		chain = append(chain, RateLimitMiddleware(s.config.RateLimit, burst))
	}
	if timeout := s.config.HandlerTimeout(); timeout > 0 {
		chain = append(chain, TimeoutMiddleware(timeout))
	}
	chain = append(chain, s.middlewares...)

	// Innermost so panics are recovered in the goroutine of the timeout middleware
	chain = append(chain, RecoverMiddleware())

	return Chain(chain...)
}

// String returns a short description used in logs
func (s *RPCServer) String() string {
	return fmt.Sprintf("RPCServer(%d methods, %s)", s.registry.Len(), s.serializer.ContentType())
}
