package publisher

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// PushMetrics is implemented by the metrics collector; nil disables
// instrumentation.
type PushMetrics interface {
	PushPublishedInc()
	PushErrInc()
	NATSSetConnected(connected bool)
}

// NATSPublisher is the real-time push sink: one subject per recipient for
// notifications, one subject per trip for the position stream. Delivery is
// fire-and-forget.
type NATSPublisher struct {
	nc      *nats.Conn
	metrics PushMetrics
}

func NewNATSPublisher(url string, m PushMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("bus-dispatch"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logrus.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// PublishNotification pushes a durable notification's payload to the
// recipient's channel.
func (p *NATSPublisher) PublishNotification(userID uint, payload []byte) error {
	return p.publish(fmt.Sprintf("notify.user.%d", userID), payload)
}

// PublishPosition streams a position fix for subscribers tracking a trip.
func (p *NATSPublisher) PublishPosition(tripID uint, payload []byte) error {
	return p.publish(fmt.Sprintf("trip.%d.position", tripID), payload)
}

func (p *NATSPublisher) publish(subject string, payload []byte) error {
	err := p.nc.Publish(subject, payload)
	if p.metrics != nil {
		if err != nil {
			p.metrics.PushErrInc()
		} else {
			p.metrics.PushPublishedInc()
		}
	}
	return err
}
