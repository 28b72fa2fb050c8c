package transport

import (
	"context"

	"github.com/ValentinKolb/mqRPC/rpc/common"
)

// --------------------------------------------------------------------------
// Messages
// --------------------------------------------------------------------------

// Delivery is a message handed out by the bus
type Delivery struct {
	// Body is the serialized invocation or response
	Body []byte
	// ContentType is the MIME type set by the publisher
	ContentType string
	// ReplyTo is the reply address of the caller (empty for fire-and-forget calls)
	ReplyTo string
	// CorrelationID is the token linking a request to its reply
	CorrelationID string
	// Redelivered is true if the bus delivered the message before
	Redelivered bool
}

// Publishing is a message handed to the bus
type Publishing struct {
	Body          []byte
	ContentType   string
	ReplyTo       string
	CorrelationID string
}

// AckDecision tells the server transport how to settle a consumed message
type AckDecision uint8

const (
	// Ack acknowledges the message, it is removed from the queue
	Ack AckDecision = iota
	// Requeue negatively acknowledges the message and asks the bus to redeliver it
	Requeue
)

// String returns the name of the decision
func (d AckDecision) String() string {
	switch d {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is called by the server transport for every consumed message,
// strictly one message at a time in delivery order. The returned decision is
// applied after the function returns.
type ServerHandleFunc func(ctx context.Context, d Delivery) AckDecision

// IRPCServerTransport is the interface for the server side of the message bus
type IRPCServerTransport interface {
	// RegisterHandler registers the handler called for every consumed message
	RegisterHandler(handler ServerHandleFunc)
	// Listen prepares exchange and queue, binds the queue to the call topic and
	// consumes until ctx is done or the bus fails. Setup failures are returned
	// as *common.PrepareError
	Listen(ctx context.Context, config common.ServerConfig) error
	// Reply publishes a response to the reply address of a caller
	Reply(ctx context.Context, replyTo string, p Publishing) error
	// Close releases the connection to the bus
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// ReplyHandleFunc is called by the client transport for every message received
// on the reply address
type ReplyHandleFunc func(d Delivery)

// IRPCClientTransport is the interface for the client side of the message bus
type IRPCClientTransport interface {
	// RegisterReplyHandler registers the handler for messages on the reply address.
	// It must be called before Connect
	RegisterReplyHandler(handler ReplyHandleFunc)
	// Connect declares the call exchange and the private reply queue of this
	// session. Setup failures are returned as *common.PrepareError
	Connect(config common.ClientConfig) error
	// ReplyAddress returns the reply address of this session (valid after Connect)
	ReplyAddress() string
	// Publish publishes a call to the configured exchange and topic
	Publish(ctx context.Context, p Publishing) error
	// Close closes the session, the reply queue is removed by the bus
	Close() error
}
