package amqp

import (
	"context"
	"fmt"
	"sync"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NewAMQPServerTransport creates a new server transport for an AMQP 0-9-1 broker
func NewAMQPServerTransport() transport.IRPCServerTransport {
	return &serverTransport{}
}

// serverTransport implements transport.IRPCServerTransport for RabbitMQ
type serverTransport struct {
	handler   transport.ServerHandleFunc
	config    common.ServerConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	mu        sync.Mutex // Protects the channel for publishing
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	if t.handler == nil {
		return &common.PrepareError{Op: "listen", Err: fmt.Errorf("no handler registered")}
	}

	deliveries, err := t.prepare(config)
	if err != nil {
		_ = t.Close()
		return err
	}

	closed := t.conn.NotifyClose(make(chan *amqp.Error, 1))

	Logger.Infof("Consuming from queue %s (exchange %q, topic %q) on %s",
		t.queueName, config.Transport.Exchange, config.Transport.Topic, config.Transport.RedactedBrokerURL())

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return fmt.Errorf("connection to broker closed")
			}
			return fmt.Errorf("connection to broker closed: %w", amqpErr)
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed by broker")
			}
			t.settle(d, t.handler(ctx, toDelivery(d)))
		}
	}
}

func (t *serverTransport) Reply(ctx context.Context, replyTo string, p transport.Publishing) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.channel == nil {
		return fmt.Errorf("server transport not connected")
	}

	// replies are routed by queue name, either via the default or the result exchange
	return t.channel.PublishWithContext(ctx, t.config.Transport.ResultExchange, replyTo, false, false, toPublishing(p))
}

func (t *serverTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

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
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// prepare connects to the broker, declares the exchanges and starts consuming from a
// fresh queue bound to the call topic
func (t *serverTransport) prepare(config common.ServerConfig) (<-chan amqp.Delivery, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.config = config

	conn, ch, err := dial(config.Transport.BrokerURL)
	if err != nil {
		return nil, err
	}
	t.conn, t.channel = conn, ch

	if err := declareExchange(ch, config.Transport.Exchange); err != nil {
		return nil, err
	}
	if err := declareExchange(ch, config.Transport.ResultExchange); err != nil {
		return nil, err
	}

	name, err := transport.NewQueueName(config.QueuePrefixOrDefault())
	if err != nil {
		return nil, &common.PrepareError{Op: "queue name", Err: err}
	}

	// the queue lives as long as this server consumes from it
	if _, err := ch.QueueDeclare(name, false, true, false, false, nil); err != nil {
		return nil, &common.PrepareError{Op: "queue declare", Err: err}
	}
	if err := ch.QueueBind(name, config.Transport.Topic, config.Transport.Exchange, false, nil); err != nil {
		return nil, &common.PrepareError{Op: "queue bind", Err: err}
	}

	if config.Transport.Prefetch > 0 {
		if err := ch.Qos(config.Transport.Prefetch, 0, false); err != nil {
			return nil, &common.PrepareError{Op: "qos", Err: err}
		}
	}

	deliveries, err := ch.Consume(name, "", false, false, false, false, nil)
	if err != nil {
		return nil, &common.PrepareError{Op: "consume", Err: err}
	}

	t.queueName = name
	return deliveries, nil
}

// settle applies the acknowledgment decision of the handler
func (t *serverTransport) settle(d amqp.Delivery, decision transport.AckDecision) {
	var err error
	switch decision {
	case transport.Requeue:
		err = d.Nack(false, true)
	default:
		err = d.Ack(false)
	}
	if err != nil {
		Logger.Errorf("Failed to %s message %s: %v", decision, d.CorrelationId, err)
	}
}
