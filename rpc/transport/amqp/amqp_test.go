package amqp

import (
	"context"
	"testing"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invalidBrokerURL = "http://localhost:5672/"

func TestDeliveryMapping(t *testing.T) {
	d := toDelivery(amqp.Delivery{
		Body:          []byte("body"),
		ContentType:   "application/json",
		ReplyTo:       "amq.gen-1",
		CorrelationId: "token",
		Redelivered:   true,
	})

	assert.Equal(t, transport.Delivery{
		Body:          []byte("body"),
		ContentType:   "application/json",
		ReplyTo:       "amq.gen-1",
		CorrelationID: "token",
		Redelivered:   true,
	}, d)
}

func TestPublishingMapping(t *testing.T) {
	p := toPublishing(transport.Publishing{
		Body:          []byte("body"),
		ContentType:   "application/x-gob",
		ReplyTo:       "reply",
		CorrelationID: "token",
	})

	assert.Equal(t, []byte("body"), p.Body)
	assert.Equal(t, "application/x-gob", p.ContentType)
	assert.Equal(t, "reply", p.ReplyTo)
	assert.Equal(t, "token", p.CorrelationId)
	assert.Equal(t, amqp.Transient, p.DeliveryMode)
}

func TestListenReportsPrepareError(t *testing.T) {
	srv := NewAMQPServerTransport()
	srv.RegisterHandler(func(context.Context, transport.Delivery) transport.AckDecision { return transport.Ack })

	err := srv.Listen(context.Background(), common.ServerConfig{Transport: common.ServerTransportConfig{
		BusConfig: common.BusConfig{BrokerURL: invalidBrokerURL, Exchange: "rpc", Topic: "rpc"},
	}})

	var prepareErr *common.PrepareError
	require.ErrorAs(t, err, &prepareErr)
	assert.Equal(t, "dial", prepareErr.Op)
}

func TestListenWithoutHandler(t *testing.T) {
	var prepareErr *common.PrepareError
	assert.ErrorAs(t, NewAMQPServerTransport().Listen(context.Background(), common.ServerConfig{}), &prepareErr)
}

func TestConnectReportsPrepareError(t *testing.T) {
	c := NewAMQPClientTransport()
	c.RegisterReplyHandler(func(transport.Delivery) {})

	err := c.Connect(common.ClientConfig{Transport: common.BusConfig{BrokerURL: invalidBrokerURL}})

	var prepareErr *common.PrepareError
	require.ErrorAs(t, err, &prepareErr)
	assert.Empty(t, c.ReplyAddress())
	assert.ErrorIs(t, c.Publish(context.Background(), transport.Publishing{}), common.ErrClientClosed)
	assert.NoError(t, c.Close())
}

func TestReplyWithoutConnection(t *testing.T) {
	srv := NewAMQPServerTransport()
	assert.Error(t, srv.Reply(context.Background(), "reply", transport.Publishing{}))
	assert.NoError(t, srv.Close())
}
