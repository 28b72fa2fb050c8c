package amqp

import (
	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

var Logger = logger.GetLogger("transport/amqp")

const (
	// exchangeKind is the routing type of the call and result exchange (exact topic match)
	exchangeKind = "direct"
)

// dial opens a connection plus a channel to the broker
func dial(brokerURL string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(brokerURL)
	if err != nil {
		return nil, nil, &common.PrepareError{Op: "dial", Err: err}
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, &common.PrepareError{Op: "channel", Err: err}
	}
	return conn, ch, nil
}

// declareExchange declares a non durable direct exchange
func declareExchange(ch *amqp.Channel, name string) error {
	if name == "" {
		return nil // the default exchange can not be declared
	}
	if err := ch.ExchangeDeclare(name, exchangeKind, false, false, false, false, nil); err != nil {
		return &common.PrepareError{Op: "exchange declare " + name, Err: err}
	}
	return nil
}

// toDelivery converts a broker delivery to the transport representation
func toDelivery(d amqp.Delivery) transport.Delivery {
	return transport.Delivery{
		Body:          d.Body,
		ContentType:   d.ContentType,
		ReplyTo:       d.ReplyTo,
		CorrelationID: d.CorrelationId,
		Redelivered:   d.Redelivered,
	}
}

// toPublishing converts a transport publishing to the broker representation
func toPublishing(p transport.Publishing) amqp.Publishing {
	return amqp.Publishing{
		ContentType:   p.ContentType,
		ReplyTo:       p.ReplyTo,
		CorrelationId: p.CorrelationID,
		Body:          p.Body,
		DeliveryMode:  amqp.Transient,
	}
}
