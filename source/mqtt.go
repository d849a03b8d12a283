package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/heartlive/models"
)

// newMQTTClient connects a client with a random id to broker.
func newMQTTClient(broker string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("heartlive-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", broker, token.Error())
	}
	return c, nil
}

// MQTTSource receives JSON samples on an MQTT topic.
type MQTTSource struct {
	broker string
	topic  string
	log    *slog.Logger

	mu     sync.Mutex
	client mqtt.Client
}

func NewMQTTSource(broker, topic string, log *slog.Logger) *MQTTSource {
	return &MQTTSource{broker: broker, topic: topic, log: log.With("source", "mqtt", "topic", topic)}
}

func (s *MQTTSource) Start(_ context.Context, h models.SampleHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return errAlreadyStarted
	}

	c, err := newMQTTClient(s.broker)
	if err != nil {
		return err
	}
	token := c.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		sample, err := DecodeSample(msg.Payload(), time.Now())
		if err != nil {
			s.log.Warn("skipping message", "err", err)
			return
		}
		h(sample.BPM, sample.Timestamp)
	})
	if token.Wait() && token.Error() != nil {
		c.Disconnect(250)
		return fmt.Errorf("failed to subscribe to %s: %w", s.topic, token.Error())
	}

	s.client = c
	s.log.Info("subscribed", "broker", s.broker)
	return nil
}

func (s *MQTTSource) Stop() error {
	s.mu.Lock()
	c := s.client
	s.client = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	if token := c.Unsubscribe(s.topic); token.Wait() && token.Error() != nil {
		s.log.Warn("unsubscribe failed", "err", token.Error())
	}
	c.Disconnect(250)
	return nil
}
