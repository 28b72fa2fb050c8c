package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ValentinKolb/mqRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/memory")

const (
	// DefaultQueueSize is the capacity of every queue of the broker
	DefaultQueueSize = 1024
)

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// queue is a FIFO of deliveries with a single consumer
type queue struct {
	name    string
	ch      chan transport.Delivery
	deleted chan struct{}
	once    sync.Once
}

// exchange routes messages to the queues bound with the exact routing key (direct routing)
type exchange struct {
	name     string
	mu       sync.RWMutex
	bindings map[string][]*queue
}

// -----------------------------------------------------------
// Broker
// -----------------------------------------------------------

// Broker is an in-process message broker with direct exchanges.
// The exchange with the empty name is the default exchange, it routes a message
// to the queue whose name equals the routing key.
// Messages that match no queue are dropped, like non-mandatory AMQP publishes.
type Broker struct {
	exchanges *xsync.MapOf[string, *exchange]
	queues    *xsync.MapOf[string, *queue]
	queueSize int
}

// NewBroker creates a new broker
func NewBroker() *Broker {
	return NewBrokerWithQueueSize(DefaultQueueSize)
}

// NewBrokerWithQueueSize creates a new broker whose queues hold up to size messages
func NewBrokerWithQueueSize(size int) *Broker {
	if size < 1 {
		size = 1
	}
	return &Broker{
		exchanges: xsync.NewMapOf[string, *exchange](),
		queues:    xsync.NewMapOf[string, *queue](),
		queueSize: size,
	}
}

// DeclareExchange creates the exchange if it does not exist
func (b *Broker) DeclareExchange(name string) {
	if name == "" {
		return // the default exchange always exists
	}
	b.exchanges.LoadOrStore(name, &exchange{
		name:     name,
		bindings: make(map[string][]*queue),
	})
}

// DeclareQueue creates the queue if it does not exist
func (b *Broker) DeclareQueue(name string) error {
	if name == "" {
		return fmt.Errorf("queue name cannot be empty")
	}
	b.queues.LoadOrStore(name, &queue{
		name:    name,
		ch:      make(chan transport.Delivery, b.queueSize),
		deleted: make(chan struct{}),
	})
	return nil
}

// DeleteQueue removes the queue and all its bindings, pending messages are dropped
func (b *Broker) DeleteQueue(name string) {
	q, ok := b.queues.LoadAndDelete(name)
	if !ok {
		return
	}

	b.exchanges.Range(func(_ string, ex *exchange) bool {
		ex.unbind(q)
		return true
	})

	q.once.Do(func() { close(q.deleted) })
}

// Bind routes messages published to the exchange with the routing key to the queue
func (b *Broker) Bind(exchangeName, routingKey, queueName string) error {
	ex, ok := b.exchanges.Load(exchangeName)
	if !ok {
		return fmt.Errorf("exchange %q not found", exchangeName)
	}
	q, ok := b.queues.Load(queueName)
	if !ok {
		return fmt.Errorf("queue %q not found", queueName)
	}

	ex.mu.Lock()
	defer ex.mu.Unlock()
	for _, bound := range ex.bindings[routingKey] {
		if bound == q {
			return nil
		}
	}
	ex.bindings[routingKey] = append(ex.bindings[routingKey], q)
	return nil
}

// Publish routes the delivery to all matching queues.
// It blocks while a matching queue is full until ctx is done.
func (b *Broker) Publish(ctx context.Context, exchangeName, routingKey string, d transport.Delivery) error {
	var targets []*queue

	// Case default exchange
	if exchangeName == "" {
		if q, ok := b.queues.Load(routingKey); ok {
			targets = []*queue{q}
		}
	} else {
		ex, ok := b.exchanges.Load(exchangeName)
		if !ok {
			return fmt.Errorf("exchange %q not found", exchangeName)
		}
		ex.mu.RLock()
		targets = append(targets, ex.bindings[routingKey]...)
		ex.mu.RUnlock()
	}

	if len(targets) == 0 {
		Logger.Debugf("dropped unroutable message (exchange %q, routing key %q)", exchangeName, routingKey)
		return nil
	}

	for _, q := range targets {
		if err := q.push(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Bound returns the number of queues that receive messages published to the
// exchange with the routing key
func (b *Broker) Bound(exchangeName, routingKey string) int {
	if exchangeName == "" {
		if _, ok := b.queues.Load(routingKey); ok {
			return 1
		}
		return 0
	}
	ex, ok := b.exchanges.Load(exchangeName)
	if !ok {
		return 0
	}
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	return len(ex.bindings[routingKey])
}

// consume returns the queue for a consumer
func (b *Broker) consume(queueName string) (*queue, error) {
	q, ok := b.queues.Load(queueName)
	if !ok {
		return nil, fmt.Errorf("queue %q not found", queueName)
	}
	return q, nil
}

// -----------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------

// push appends a delivery to the queue
func (q *queue) push(ctx context.Context, d transport.Delivery) error {
	select {
	case q.ch <- d:
		return nil
	case <-q.deleted:
		return nil // queue is gone, message is dropped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// unbind removes the queue from all routing keys of the exchange
func (ex *exchange) unbind(q *queue) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	for key, queues := range ex.bindings {
		kept := queues[:0]
		for _, bound := range queues {
			if bound != q {
				kept = append(kept, bound)
			}
		}
		if len(kept) == 0 {
			delete(ex.bindings, key)
		} else {
			ex.bindings[key] = kept
		}
	}
}
