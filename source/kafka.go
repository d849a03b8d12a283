package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/heartlive/models"
)

// KafkaSource consumes JSON samples from a Kafka topic as part of a consumer group.
type KafkaSource struct {
	brokers []string
	topic   string
	group   string
	log     *slog.Logger

	mu     sync.Mutex
	reader *kafka.Reader
	cancel context.CancelFunc
	done   chan struct{}
}

func NewKafkaSource(brokers []string, topic, group string, log *slog.Logger) *KafkaSource {
	return &KafkaSource{
		brokers: brokers,
		topic:   topic,
		group:   group,
		log:     log.With("source", "kafka", "topic", topic),
	}
}

func (s *KafkaSource) Start(ctx context.Context, h models.SampleHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader != nil {
		return errAlreadyStarted
	}
	if len(s.brokers) == 0 {
		return errors.New("kafka source needs at least one broker")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     s.brokers,
		Topic:       s.topic,
		GroupID:     s.group,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.reader, s.cancel, s.done = r, cancel, done

	go s.run(ctx, r, h, done)
	s.log.Info("consumer started", "brokers", s.brokers, "group", s.group)
	return nil
}

func (s *KafkaSource) run(ctx context.Context, r *kafka.Reader, h models.SampleHandler, done chan struct{}) {
	defer close(done)
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("read failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		arrival := msg.Time
		if arrival.IsZero() {
			arrival = time.Now()
		}
		sample, err := DecodeSample(msg.Value, arrival)
		if err != nil {
			s.log.Warn("skipping message", "partition", msg.Partition, "offset", msg.Offset, "err", err)
			continue
		}
		h(sample.BPM, sample.Timestamp)
	}
}

func (s *KafkaSource) Stop() error {
	s.mu.Lock()
	r, cancel, done := s.reader, s.cancel, s.done
	s.reader, s.cancel, s.done = nil, nil, nil
	s.mu.Unlock()

	if r == nil {
		return nil
	}
	cancel()
	<-done
	if err := r.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	return nil
}
