package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/heartlive/models"
)

// ConnectNATS dials NATS with reconnects enabled forever.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// NATSSource receives JSON samples on a NATS subject.
type NATSSource struct {
	url     string
	subject string
	log     *slog.Logger

	mu  sync.Mutex
	nc  *nats.Conn
	sub *nats.Subscription
}

func NewNATSSource(url, subject string, log *slog.Logger) *NATSSource {
	return &NATSSource{url: url, subject: subject, log: log.With("source", "nats", "subject", subject)}
}

func (s *NATSSource) Start(_ context.Context, h models.SampleHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nc != nil {
		return errAlreadyStarted
	}

	nc, err := ConnectNATS(s.url, "heartlive")
	if err != nil {
		return fmt.Errorf("failed to connect to nats at %s: %w", s.url, err)
	}
	sub, err := nc.Subscribe(s.subject, func(msg *nats.Msg) {
		sample, err := DecodeSample(msg.Data, time.Now())
		if err != nil {
			s.log.Warn("skipping message", "err", err)
			return
		}
		h(sample.BPM, sample.Timestamp)
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}

	s.nc, s.sub = nc, sub
	s.log.Info("subscribed", "url", s.url)
	return nil
}

func (s *NATSSource) Stop() error {
	s.mu.Lock()
	nc, sub := s.nc, s.sub
	s.nc, s.sub = nil, nil
	s.mu.Unlock()

	if nc == nil {
		return nil
	}
	if err := sub.Unsubscribe(); err != nil {
		s.log.Warn("unsubscribe failed", "err", err)
	}
	return nc.Drain()
}
