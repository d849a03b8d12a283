// Package source holds the collaborators feeding the monitor: sample transports
// and authorization providers.
package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/heartlive/models"
)

// New builds the sample source selected by cfg.Source.
func New(cfg models.Config, log *slog.Logger) (models.SampleSource, error) {
	if log == nil {
		log = slog.Default()
	}
	switch cfg.Source {
	case models.SourceSim:
		return NewSimulator(cfg.SimInterval, cfg.SimBaseBPM, uint64(time.Now().UnixNano())), nil
	case models.SourceNATS:
		return NewNATSSource(cfg.NATSURL, cfg.NATSSubject, log), nil
	case models.SourceMQTT:
		return NewMQTTSource(cfg.MQTTBroker, cfg.MQTTTopic, log), nil
	case models.SourceKafka:
		return NewKafkaSource(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, log), nil
	case models.SourceAMQP:
		return NewAMQPSource(cfg.AMQPURL, cfg.AMQPQueue, log), nil
	}
	return nil, fmt.Errorf("unknown sample source %q", cfg.Source)
}

// NewAuthorizer builds the authorization provider selected by cfg.Auth.
func NewAuthorizer(cfg models.Config) (models.Authorizer, error) {
	switch cfg.Auth {
	case models.AuthAllow:
		return StaticAuthorizer{Granted: true}, nil
	case models.AuthDeny:
		return StaticAuthorizer{Granted: false}, nil
	case models.AuthToken:
		return TokenAuthorizer{DataDir: cfg.DataDir}, nil
	}
	return nil, fmt.Errorf("unknown authorization mode %q", cfg.Auth)
}
