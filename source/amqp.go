package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/heartlive/models"
)

// AMQPSource consumes JSON samples from a durable RabbitMQ queue.
type AMQPSource struct {
	url   string
	queue string
	log   *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	tag     string
	done    chan struct{}
}

func NewAMQPSource(url, queue string, log *slog.Logger) *AMQPSource {
	return &AMQPSource{url: url, queue: queue, log: log.With("source", "amqp", "queue", queue)}
}

// declareQueue opens a channel with the samples queue declared on it.
func declareQueue(conn *amqp.Connection, queue string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return ch, nil
}

func (s *AMQPSource) Start(ctx context.Context, h models.SampleHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return errAlreadyStarted
	}

	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("failed to connect to amqp broker: %w", err)
	}
	ch, err := declareQueue(conn, s.queue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare queue %s: %w", s.queue, err)
	}

	tag := "heartlive-" + uuid.NewString()
	msgs, err := ch.Consume(
		s.queue,
		tag,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to consume %s: %w", s.queue, err)
	}

	done := make(chan struct{})
	s.conn, s.channel, s.tag, s.done = conn, ch, tag, done

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				arrival := msg.Timestamp
				if arrival.IsZero() {
					arrival = time.Now()
				}
				sample, err := DecodeSample(msg.Body, arrival)
				if err != nil {
					s.log.Warn("skipping message", "err", err)
					continue
				}
				h(sample.BPM, sample.Timestamp)
			}
		}
	}()

	s.log.Info("consumer started")
	return nil
}

func (s *AMQPSource) Stop() error {
	s.mu.Lock()
	conn, ch, tag, done := s.conn, s.channel, s.tag, s.done
	s.conn, s.channel, s.tag, s.done = nil, nil, "", nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := ch.Cancel(tag, false); err != nil {
		s.log.Warn("cancel consumer failed", "err", err)
	}
	ch.Close()
	err := conn.Close()
	// deliveries are closed with the connection
	<-done
	return err
}
