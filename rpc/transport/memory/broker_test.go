package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// receive reads one delivery from the queue or fails the test
func receive(t *testing.T, q *queue) transport.Delivery {
	t.Helper()
	select {
	case d := <-q.ch:
		return d
	case <-time.After(time.Second):
		t.Fatalf("no delivery on queue %s", q.name)
		return transport.Delivery{}
	}
}

func TestDirectRouting(t *testing.T) {
	b := NewBroker()
	b.DeclareExchange("calls")
	require.NoError(t, b.DeclareQueue("a"))
	require.NoError(t, b.DeclareQueue("b"))
	require.NoError(t, b.Bind("calls", "topic-a", "a"))
	require.NoError(t, b.Bind("calls", "topic-b", "b"))

	require.NoError(t, b.Publish(context.Background(), "calls", "topic-a", transport.Delivery{Body: []byte("1")}))

	qa, err := b.consume("a")
	require.NoError(t, err)
	qb, err := b.consume("b")
	require.NoError(t, err)

	assert.Equal(t, []byte("1"), receive(t, qa).Body)
	assert.Len(t, qb.ch, 0)
}

func TestDefaultExchangeRoutesByQueueName(t *testing.T) {
	b := NewBroker()
	require.NoError(t, b.DeclareQueue("reply-1"))
	assert.Equal(t, 1, b.Bound("", "reply-1"))

	require.NoError(t, b.Publish(context.Background(), "", "reply-1", transport.Delivery{CorrelationID: "t1"}))

	q, err := b.consume("reply-1")
	require.NoError(t, err)
	assert.Equal(t, "t1", receive(t, q).CorrelationID)
}

func TestUnroutableMessageIsDropped(t *testing.T) {
	b := NewBroker()
	b.DeclareExchange("calls")

	assert.NoError(t, b.Publish(context.Background(), "calls", "nobody", transport.Delivery{}))
	assert.NoError(t, b.Publish(context.Background(), "", "missing-queue", transport.Delivery{}))
	assert.Error(t, b.Publish(context.Background(), "undeclared", "x", transport.Delivery{}))
}

func TestDeleteQueueRemovesBindings(t *testing.T) {
	b := NewBroker()
	b.DeclareExchange("calls")
	require.NoError(t, b.DeclareQueue("q"))
	require.NoError(t, b.Bind("calls", "topic", "q"))
	require.NoError(t, b.Bind("calls", "topic", "q"))
	assert.Equal(t, 1, b.Bound("calls", "topic"))

	b.DeleteQueue("q")
	assert.Equal(t, 0, b.Bound("calls", "topic"))
	assert.Error(t, b.Bind("calls", "topic", "q"))
}

func TestPublishBlocksOnFullQueue(t *testing.T) {
	b := NewBrokerWithQueueSize(1)
	require.NoError(t, b.DeclareQueue("q"))
	require.NoError(t, b.Publish(context.Background(), "", "q", transport.Delivery{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Publish(ctx, "", "q", transport.Delivery{}), context.DeadlineExceeded)
}

func TestServerRequeue(t *testing.T) {
	b := NewBroker()
	srv := NewMemoryServerTransport(b)

	deliveries := make(chan transport.Delivery, 4)
	srv.RegisterHandler(func(ctx context.Context, d transport.Delivery) transport.AckDecision {
		deliveries <- d
		if !d.Redelivered {
			return transport.Requeue
		}
		return transport.Ack
	})

	config := common.ServerConfig{Transport: common.ServerTransportConfig{
		BusConfig: common.BusConfig{Exchange: "calls", Topic: "rpc"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Listen(ctx, config) }()

	require.Eventually(t, func() bool { return b.Bound("calls", "rpc") == 1 }, time.Second, time.Millisecond)
	require.NoError(t, b.Publish(context.Background(), "calls", "rpc", transport.Delivery{Body: []byte("x")}))

	first := <-deliveries
	second := <-deliveries
	assert.False(t, first.Redelivered)
	assert.True(t, second.Redelivered)
	assert.Equal(t, first.Body, second.Body)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, srv.Close())
	assert.Equal(t, 0, b.Bound("calls", "rpc"))
}

func TestServerRequeueOnFullQueue(t *testing.T) {
	b := NewBrokerWithQueueSize(1)
	srv := NewMemoryServerTransport(b)

	started := make(chan struct{})
	release := make(chan struct{})
	handled := make(chan transport.Delivery, 4)
	srv.RegisterHandler(func(ctx context.Context, d transport.Delivery) transport.AckDecision {
		if string(d.Body) == "a" && !d.Redelivered {
			close(started)
			<-release
		}
		handled <- d
		if !d.Redelivered {
			return transport.Requeue
		}
		return transport.Ack
	})

	config := common.ServerConfig{Transport: common.ServerTransportConfig{
		BusConfig: common.BusConfig{Exchange: "calls", Topic: "rpc"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Listen(ctx, config) }()

	require.Eventually(t, func() bool { return b.Bound("calls", "rpc") == 1 }, time.Second, time.Millisecond)
	require.NoError(t, b.Publish(context.Background(), "calls", "rpc", transport.Delivery{Body: []byte("a")}))
	<-started

	// "b" takes the only queue slot while "a" is handled
	require.NoError(t, b.Publish(context.Background(), "calls", "rpc", transport.Delivery{Body: []byte("b")}))
	close(release)

	var got []string
	for i := 0; i < 4; i++ {
		select {
		case d := <-handled:
			got = append(got, fmt.Sprintf("%s:%t", d.Body, d.Redelivered))
		case <-time.After(time.Second):
			t.Fatalf("server stalled after %d handled deliveries", len(got))
		}
	}
	assert.ElementsMatch(t, []string{"a:false", "a:true", "b:false", "b:true"}, got)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, srv.Close())
}

func TestListenWithoutHandler(t *testing.T) {
	srv := NewMemoryServerTransport(NewBroker())
	err := srv.Listen(context.Background(), common.ServerConfig{})

	var prepareErr *common.PrepareError
	assert.ErrorAs(t, err, &prepareErr)
}

func TestClientReplyThroughResultExchange(t *testing.T) {
	b := NewBroker()
	c := NewMemoryClientTransport(b)

	replies := make(chan transport.Delivery, 1)
	c.RegisterReplyHandler(func(d transport.Delivery) { replies <- d })
	require.NoError(t, c.Connect(common.ClientConfig{Transport: common.BusConfig{
		Exchange:       "calls",
		Topic:          "rpc",
		ResultExchange: "results",
	}}))
	defer c.Close()

	replyTo := c.ReplyAddress()
	require.NotEmpty(t, replyTo)
	assert.Equal(t, 1, b.Bound("results", replyTo))

	require.NoError(t, b.Publish(context.Background(), "results", replyTo, transport.Delivery{CorrelationID: "abc"}))
	select {
	case d := <-replies:
		assert.Equal(t, "abc", d.CorrelationID)
	case <-time.After(time.Second):
		t.Fatal("reply not delivered")
	}
}

func TestClientPublishAfterClose(t *testing.T) {
	c := NewMemoryClientTransport(NewBroker())
	c.RegisterReplyHandler(func(transport.Delivery) {})
	require.NoError(t, c.Connect(common.ClientConfig{Transport: common.BusConfig{Exchange: "calls", Topic: "rpc"}}))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Publish(context.Background(), transport.Publishing{}), common.ErrClientClosed)
}
