package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
)

// NewMemoryServerTransport creates a new server transport consuming from the broker
func NewMemoryServerTransport(broker *Broker) transport.IRPCServerTransport {
	return &serverTransport{
		broker: broker,
	}
}

// serverTransport implements transport.IRPCServerTransport on top of a Broker
type serverTransport struct {
	broker    *Broker
	handler   transport.ServerHandleFunc
	config    common.ServerConfig
	queueName string
	mu        sync.Mutex
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

	q, err := t.prepare(config)
	if err != nil {
		return err
	}

	Logger.Infof("Consuming from queue %s (exchange %q, topic %q)", q.name, config.Transport.Exchange, config.Transport.Topic)

	// Serial consumption: the next message is only taken after the previous one is settled.
	// Requeued messages are kept aside and handled before the queue is read again, pushing
	// them back into the queue could block this loop on a full queue.
	var redeliveries []transport.Delivery
	for {
		if len(redeliveries) > 0 {
			if ctx.Err() != nil {
				return nil
			}
			d := redeliveries[0]
			redeliveries = redeliveries[1:]
			redeliveries = t.handle(ctx, d, redeliveries)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-q.deleted:
			return fmt.Errorf("queue %s was deleted", q.name)
		case d := <-q.ch:
			redeliveries = t.handle(ctx, d, redeliveries)
		}
	}
}

func (t *serverTransport) Reply(ctx context.Context, replyTo string, p transport.Publishing) error {
	t.mu.Lock()
	resultExchange := t.config.Transport.ResultExchange
	t.mu.Unlock()

	return t.broker.Publish(ctx, resultExchange, replyTo, transport.Delivery{
		Body:          p.Body,
		ContentType:   p.ContentType,
		CorrelationID: p.CorrelationID,
	})
}

func (t *serverTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.queueName != "" {
		t.broker.DeleteQueue(t.queueName)
		t.queueName = ""
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handle passes the delivery to the handler and appends it to redeliveries if it was requeued
func (t *serverTransport) handle(ctx context.Context, d transport.Delivery, redeliveries []transport.Delivery) []transport.Delivery {
	if t.handler(ctx, d) == transport.Requeue {
		d.Redelivered = true
		redeliveries = append(redeliveries, d)
	}
	return redeliveries
}

// prepare declares the exchanges and binds a fresh queue to the call topic
func (t *serverTransport) prepare(config common.ServerConfig) (*queue, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.config = config
	t.broker.DeclareExchange(config.Transport.Exchange)
	if config.Transport.ResultExchange != "" {
		t.broker.DeclareExchange(config.Transport.ResultExchange)
	}

	name, err := transport.NewQueueName(config.QueuePrefixOrDefault())
	if err != nil {
		return nil, &common.PrepareError{Op: "queue name", Err: err}
	}
	if err := t.broker.DeclareQueue(name); err != nil {
		return nil, &common.PrepareError{Op: "queue declare", Err: err}
	}
	if err := t.broker.Bind(config.Transport.Exchange, config.Transport.Topic, name); err != nil {
		return nil, &common.PrepareError{Op: "queue bind", Err: err}
	}

	q, err := t.broker.consume(name)
	if err != nil {
		return nil, &common.PrepareError{Op: "consume", Err: err}
	}
	t.queueName = name
	return q, nil
}
