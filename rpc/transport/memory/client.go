package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	"github.com/google/uuid"
)

// NewMemoryClientTransport creates a new client transport publishing to the broker
func NewMemoryClientTransport(broker *Broker) transport.IRPCClientTransport {
	return &clientTransport{
		broker: broker,
	}
}

// clientTransport implements transport.IRPCClientTransport on top of a Broker
type clientTransport struct {
	broker    *Broker
	handler   transport.ReplyHandleFunc
	config    common.ClientConfig
	replyTo   string
	stopCh    chan struct{}
	readersWg sync.WaitGroup
	mu        sync.Mutex
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) RegisterReplyHandler(handler transport.ReplyHandleFunc) {
	t.handler = handler
}

func (t *clientTransport) Connect(config common.ClientConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handler == nil {
		return &common.PrepareError{Op: "connect", Err: fmt.Errorf("no reply handler registered")}
	}
	if t.replyTo != "" {
		return &common.PrepareError{Op: "connect", Err: fmt.Errorf("already connected")}
	}

	t.config = config
	t.broker.DeclareExchange(config.Transport.Exchange)

	// exclusive reply queue of this session
	name := "reply-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := t.broker.DeclareQueue(name); err != nil {
		return &common.PrepareError{Op: "queue declare", Err: err}
	}
	if config.Transport.ResultExchange != "" {
		t.broker.DeclareExchange(config.Transport.ResultExchange)
		if err := t.broker.Bind(config.Transport.ResultExchange, name, name); err != nil {
			t.broker.DeleteQueue(name)
			return &common.PrepareError{Op: "queue bind", Err: err}
		}
	}

	q, err := t.broker.consume(name)
	if err != nil {
		return &common.PrepareError{Op: "consume", Err: err}
	}

	t.replyTo = name
	t.stopCh = make(chan struct{})
	t.readersWg.Add(1)
	go t.readReplies(q, t.stopCh)

	Logger.Debugf("Client connected with reply queue %s", name)
	return nil
}

func (t *clientTransport) ReplyAddress() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replyTo
}

func (t *clientTransport) Publish(ctx context.Context, p transport.Publishing) error {
	t.mu.Lock()
	connected := t.replyTo != ""
	exchange, topic := t.config.Transport.Exchange, t.config.Transport.Topic
	t.mu.Unlock()

	if !connected {
		return common.ErrClientClosed
	}

	return t.broker.Publish(ctx, exchange, topic, transport.Delivery{
		Body:          p.Body,
		ContentType:   p.ContentType,
		ReplyTo:       p.ReplyTo,
		CorrelationID: p.CorrelationID,
	})
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	if t.replyTo == "" {
		t.mu.Unlock()
		return nil
	}
	close(t.stopCh)
	t.broker.DeleteQueue(t.replyTo)
	t.replyTo = ""
	t.mu.Unlock()

	t.readersWg.Wait()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readReplies hands every message of the reply queue to the reply handler
func (t *clientTransport) readReplies(q *queue, stopCh chan struct{}) {
	defer t.readersWg.Done()
	for {
		select {
		case <-stopCh:
			return
		case <-q.deleted:
			return
		case d := <-q.ch:
			t.handler(d)
		}
	}
}
