package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/serializer"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc/client")
)

// RPCClient is the call proxy of one client session. Any method name can be
// called, the set of valid methods is defined by the registry of the server.
// All methods are safe for concurrent use.
type RPCClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
	tracker    *correlationTracker
	closed     atomic.Bool
	closeCh    chan struct{}
	closeOnce  sync.Once
}

// NewRPCClient creates a new client session.
// It registers the reply handler and connects the transport, a failed connect is
// returned as *common.PrepareError and the client must not be used.
//
// Usage:
//
//	c, err := client.NewRPCClient(config, amqp.NewAMQPClientTransport(), serializer.NewJSONSerializer())
//	if err != nil {
//		panic(err)
//	}
//	defer c.Close()
//	sum, err := c.Call(ctx, "add", 1, 2)
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCClient, error) {
	c := &RPCClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
		tracker:    newCorrelationTracker(),
		closeCh:    make(chan struct{}),
	}

	transport.RegisterReplyHandler(c.onReply)
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	Logger.Debugf("Created RPC client with reply address %s", transport.ReplyAddress())
	return c, nil
}

// --------------------------------------------------------------------------
// Call API
// --------------------------------------------------------------------------

// Call invokes method with positional arguments and returns the data of the
// success envelope. See CallKw for the error semantics.
func (c *RPCClient) Call(ctx context.Context, method string, args ...any) (any, error) {
	return c.CallKw(ctx, method, args, nil)
}

// CallKw invokes method with positional and keyword arguments and blocks until the
// correlated reply arrives, ctx is done or the client timeout expires.
//
// Errors:
//   - *common.EncodingError if an argument is not representable
//   - *common.RemoteError if the server answered with status error
//   - *common.ProtocolError if the reply could not be understood
//   - common.ErrCallTimeout if no reply arrived in time
//   - common.ErrClientClosed if the client was closed
func (c *RPCClient) CallKw(ctx context.Context, method string, args []any, kwargs map[string]any) (any, error) {
	if c.closed.Load() {
		return nil, common.ErrClientClosed
	}

	start := time.Now()
	data, err := c.call(ctx, method, args, kwargs)
	observeCall(start, err)
	return data, err
}

// CallInto works like CallKw but decodes the returned data into out
// (pointer to a basic type, struct, slice or map)
func (c *RPCClient) CallInto(ctx context.Context, out any, method string, args []any, kwargs map[string]any) error {
	data, err := c.CallKw(ctx, method, args, kwargs)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := common.DecodeValue(data, out); err != nil {
		return fmt.Errorf("failed to decode result of %s: %w", method, err)
	}
	return nil
}

// Notify publishes a fire-and-forget call. No reply address is attached, the
// server executes the call but sends no response.
func (c *RPCClient) Notify(ctx context.Context, method string, args []any, kwargs map[string]any) error {
	if c.closed.Load() {
		return common.ErrClientClosed
	}

	body, err := c.serializer.SerializeInvocation(*common.NewInvocation(method, args, kwargs))
	if err != nil {
		return err
	}

	return c.transport.Publish(ctx, transport.Publishing{
		Body:        body,
		ContentType: c.serializer.ContentType(),
	})
}

// Close closes the session. Outstanding calls fail with common.ErrClientClosed.
func (c *RPCClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		err = c.transport.Close()
	})
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// call runs the correlation protocol for a single call
func (c *RPCClient) call(ctx context.Context, method string, args []any, kwargs map[string]any) (any, error) {
	// Encode the invocation
	body, err := c.serializer.SerializeInvocation(*common.NewInvocation(method, args, kwargs))
	if err != nil {
		return nil, err
	}

	// Bound the wait if the caller did not
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout())
		defer cancel()
	}

	// Create the pending record, it is removed when we stop waiting
	token, reply, release, err := c.tracker.register()
	if err != nil {
		return nil, fmt.Errorf("failed to create correlation token: %w", err)
	}
	defer release()

	// Publish the call
	err = c.transport.Publish(ctx, transport.Publishing{
		Body:          body,
		ContentType:   c.serializer.ContentType(),
		ReplyTo:       c.transport.ReplyAddress(),
		CorrelationID: token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish call %s: %w", method, err)
	}

	// Wait for the matching reply
	select {
	case payload := <-reply:
		return c.decodeReply(payload)
	case <-c.closeCh:
		return nil, common.ErrClientClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrCallTimeout, method, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// decodeReply turns a reply body into the result of the call
func (c *RPCClient) decodeReply(payload []byte) (any, error) {
	var resp common.Response
	if err := c.serializer.DeserializeResponse(payload, &resp); err != nil {
		return nil, common.NewUnknownResponseError(err)
	}

	switch resp.Status {
	case common.StatusSuccess:
		return resp.Data, nil
	case common.StatusError:
		return nil, &common.RemoteError{Message: resp.Error}
	default:
		return nil, common.NewUnknownResponseError(nil)
	}
}

// onReply is called by the transport for every message on the reply address
func (c *RPCClient) onReply(d transport.Delivery) {
	if !c.tracker.deliver(d.CorrelationID, d.Body) {
		droppedReplies.Inc()
		Logger.Debugf("Discarding reply with unknown correlation id %q", d.CorrelationID)
	}
}
