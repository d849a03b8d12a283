package source

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"

	"github.com/heartlive/models"
)

// Publisher sends samples to the transport a source of the same kind listens on.
type Publisher interface {
	Publish(ctx context.Context, s Sample) error
	Close() error
}

// NewPublisher connects a publisher for cfg.Source. The simulator kind has no transport.
func NewPublisher(cfg models.Config) (Publisher, error) {
	switch cfg.Source {
	case models.SourceNATS:
		nc, err := ConnectNATS(cfg.NATSURL, "heartlive-publisher")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.NATSURL, err)
		}
		return &natsPublisher{nc: nc, subject: cfg.NATSSubject}, nil
	case models.SourceMQTT:
		c, err := newMQTTClient(cfg.MQTTBroker)
		if err != nil {
			return nil, err
		}
		return &mqttPublisher{client: c, topic: cfg.MQTTTopic}, nil
	case models.SourceKafka:
		return &kafkaPublisher{w: &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.Hash{},
		}}, nil
	case models.SourceAMQP:
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to amqp broker: %w", err)
		}
		ch, err := declareQueue(conn, cfg.AMQPQueue)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.AMQPQueue, err)
		}
		return &amqpPublisher{conn: conn, channel: ch, queue: cfg.AMQPQueue}, nil
	}
	return nil, fmt.Errorf("no publisher for sample source %q", cfg.Source)
}

type natsPublisher struct {
	nc      *nats.Conn
	subject string
}

func (p *natsPublisher) Publish(_ context.Context, s Sample) error {
	b, err := EncodeSample(s)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, b)
}

func (p *natsPublisher) Close() error {
	return p.nc.Drain()
}

type mqttPublisher struct {
	client mqtt.Client
	topic  string
}

func (p *mqttPublisher) Publish(_ context.Context, s Sample) error {
	b, err := EncodeSample(s)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 1, false, b)
	token.Wait()
	return token.Error()
}

func (p *mqttPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

type kafkaPublisher struct {
	w *kafka.Writer
}

func (p *kafkaPublisher) Publish(ctx context.Context, s Sample) error {
	b, err := EncodeSample(s)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{Key: []byte("heartlive"), Value: b, Time: s.Timestamp})
}

func (p *kafkaPublisher) Close() error {
	return p.w.Close()
}

type amqpPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func (p *amqpPublisher) Publish(ctx context.Context, s Sample) error {
	b, err := EncodeSample(s)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   s.Timestamp,
			Body:        b,
		},
	)
}

func (p *amqpPublisher) Close() error {
	p.channel.Close()
	return p.conn.Close()
}
