package amqp

import (
	"context"
	"fmt"
	"sync"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NewAMQPClientTransport creates a new client transport for an AMQP 0-9-1 broker
func NewAMQPClientTransport() transport.IRPCClientTransport {
	return &clientTransport{}
}

// clientTransport implements transport.IRPCClientTransport for RabbitMQ
type clientTransport struct {
	handler   transport.ReplyHandleFunc
	config    common.ClientConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	replyTo   string
	readersWg sync.WaitGroup
	mu        sync.Mutex // Protects the channel for publishing
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) RegisterReplyHandler(handler transport.ReplyHandleFunc) {
	t.handler = handler
}

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if t.handler == nil {
		return &common.PrepareError{Op: "connect", Err: fmt.Errorf("no reply handler registered")}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return &common.PrepareError{Op: "connect", Err: fmt.Errorf("already connected")}
	}
	t.config = config

	conn, ch, err := dial(config.Transport.BrokerURL)
	if err != nil {
		return err
	}

	replies, replyTo, err := t.prepare(ch, config)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	t.conn, t.channel, t.replyTo = conn, ch, replyTo

	t.readersWg.Add(1)
	go t.readReplies(replies)

	Logger.Infof("Connected to %s with reply queue %s", config.Transport.RedactedBrokerURL(), replyTo)
	return nil
}

func (t *clientTransport) ReplyAddress() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replyTo
}

func (t *clientTransport) Publish(ctx context.Context, p transport.Publishing) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.channel == nil {
		return common.ErrClientClosed
	}

	return t.channel.PublishWithContext(ctx, t.config.Transport.Exchange, t.config.Transport.Topic, false, false, toPublishing(p))
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	var err error
	if t.channel != nil {
		err = t.channel.Close()
		t.channel = nil
	}
	if t.conn != nil {
		if cErr := t.conn.Close(); cErr != nil && err == nil {
			err = cErr
		}
		t.conn = nil
	}
	t.replyTo = ""
	t.mu.Unlock()

	// the delivery channel is closed together with the amqp channel
	t.readersWg.Wait()
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// prepare declares the call exchange and the exclusive reply queue of this session
func (t *clientTransport) prepare(ch *amqp.Channel, config common.ClientConfig) (<-chan amqp.Delivery, string, error) {
	if err := declareExchange(ch, config.Transport.Exchange); err != nil {
		return nil, "", err
	}

	// server named, exclusive and auto deleted: the queue is private to this connection
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, "", &common.PrepareError{Op: "reply queue declare", Err: err}
	}

	if config.Transport.ResultExchange != "" {
		if err := declareExchange(ch, config.Transport.ResultExchange); err != nil {
			return nil, "", err
		}
		if err := ch.QueueBind(q.Name, q.Name, config.Transport.ResultExchange, false, nil); err != nil {
			return nil, "", &common.PrepareError{Op: "reply queue bind", Err: err}
		}
	}

	replies, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, "", &common.PrepareError{Op: "reply consume", Err: err}
	}
	return replies, q.Name, nil
}

// readReplies hands every message of the reply queue to the reply handler
func (t *clientTransport) readReplies(replies <-chan amqp.Delivery) {
	defer t.readersWg.Done()
	for d := range replies {
		t.handler(toDelivery(d))
	}
	Logger.Debugf("Reply consumer stopped")
}
