package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAccessRequired    = errors.New("heart rate read access has not been granted")
	ErrAlreadyMonitoring = errors.New("heart rate monitoring is already running")
	ErrNotMonitoring     = errors.New("heart rate monitoring is not running")
)

// Status is what the presentation layer shows next to the numbers.
type Status struct {
	HasAccess  bool       `json:"has_access"`
	Monitoring bool       `json:"monitoring"`
	SessionID  string     `json:"session_id,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
}

// Monitor owns an Aggregator and is its only writer. It gates streaming on the
// authorizer and forwards samples from the source into the aggregator.
type Monitor struct {
	log        *slog.Logger
	auth       Authorizer
	source     SampleSource
	agg        *Aggregator
	keepOnStop bool

	// lifecycle serializes RequestAccess, Start and Stop.
	lifecycle sync.Mutex

	// mu guards status and every write into agg.
	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// KeepHistoryOnStop leaves the last session visible after Stop.
func KeepHistoryOnStop(keep bool) MonitorOption {
	return func(m *Monitor) { m.keepOnStop = keep }
}

// NewMonitor wires an authorizer and a sample source to agg.
func NewMonitor(log *slog.Logger, auth Authorizer, source SampleSource, agg *Aggregator, opts ...MonitorOption) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	m := &Monitor{
		log:    log.With("component", "monitor"),
		auth:   auth,
		source: source,
		agg:    agg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Aggregator exposes the monitored aggregator for reads and subscriptions.
// Listeners run while the monitor holds its write lock and must not call back into it.
func (m *Monitor) Aggregator() *Aggregator {
	return m.agg
}

// Status returns a copy of the current status.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// RequestAccess asks the authorizer for read access and starts streaming once granted.
// A refusal or failure while a session is running ends that session.
func (m *Monitor) RequestAccess(ctx context.Context) (bool, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	granted, err := m.auth.RequestAccess(ctx)
	if err != nil {
		granted = false
		m.log.Warn("heart rate access request failed", "err", err)
	}

	m.mu.Lock()
	m.status.HasAccess = granted
	monitoring := m.status.Monitoring
	m.mu.Unlock()

	if !granted {
		if monitoring {
			m.log.Info("heart rate access revoked, stopping monitoring")
			if stopErr := m.stop(); stopErr != nil {
				return false, errors.Join(err, stopErr)
			}
		}
		if err != nil {
			return false, err
		}
		m.log.Info("heart rate access denied")
		return false, nil
	}

	m.log.Info("heart rate access granted")
	if monitoring {
		return true, nil
	}
	if err := m.start(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Start begins a new monitoring session with an empty history.
func (m *Monitor) Start(ctx context.Context) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	return m.start(ctx)
}

func (m *Monitor) start(ctx context.Context) error {
	m.mu.Lock()
	if !m.status.HasAccess {
		m.mu.Unlock()
		return ErrAccessRequired
	}
	if m.status.Monitoring {
		m.mu.Unlock()
		return ErrAlreadyMonitoring
	}

	session := uuid.NewString()
	now := time.Now()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.agg.Reset()
	m.status.Monitoring = true
	m.status.SessionID = session
	m.status.StartedAt = &now
	m.cancel = cancel
	m.mu.Unlock()

	err := m.source.Start(runCtx, func(bpm float64, ts time.Time) {
		if _, err := m.ingest(session, bpm, ts); err != nil {
			m.dropped(bpm, err)
		}
	})
	if err != nil {
		cancel()
		m.mu.Lock()
		m.status.Monitoring = false
		m.status.SessionID = ""
		m.status.StartedAt = nil
		m.cancel = nil
		m.mu.Unlock()
		return fmt.Errorf("failed to start heart rate stream: %w", err)
	}

	m.log.Info("heart rate monitoring started", "session", session)
	return nil
}

// Stop ends the session. Samples still in flight are dropped.
func (m *Monitor) Stop() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	return m.stop()
}

func (m *Monitor) stop() error {
	m.mu.Lock()
	if !m.status.Monitoring {
		m.mu.Unlock()
		return nil
	}
	session := m.status.SessionID
	m.status.Monitoring = false
	m.status.SessionID = ""
	m.status.StartedAt = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if !m.keepOnStop {
		m.agg.Reset()
	}
	m.mu.Unlock()

	// The source may wait for running callbacks, which need mu.
	if err := m.source.Stop(); err != nil {
		return fmt.Errorf("failed to stop heart rate stream: %w", err)
	}
	m.log.Info("heart rate monitoring stopped", "session", session)
	return nil
}

// Ingest adds a sample to the running session.
func (m *Monitor) Ingest(bpm float64, ts time.Time) (AggregateState, error) {
	m.mu.Lock()
	session := m.status.SessionID
	m.mu.Unlock()
	return m.ingest(session, bpm, ts)
}

func (m *Monitor) dropped(bpm float64, err error) {
	if errors.Is(err, ErrNotMonitoring) {
		m.log.Debug("heart rate sample after stop", "bpm", bpm)
		return
	}
	m.log.Warn("dropping heart rate sample", "bpm", bpm, "err", err)
}

func (m *Monitor) ingest(session string, bpm float64, ts time.Time) (AggregateState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.status.Monitoring || session == "" || session != m.status.SessionID {
		return AggregateState{}, ErrNotMonitoring
	}
	r, err := NewReading(bpm, ts)
	if err != nil {
		return AggregateState{}, err
	}
	state, err := m.agg.Ingest(r)
	if err != nil {
		return AggregateState{}, err
	}
	m.log.Debug("heart rate sample", "bpm", bpm, "zone", state.Zone, "count", state.Count)
	return state, nil
}

// Close stops monitoring if it is running.
func (m *Monitor) Close() error {
	return m.Stop()
}
