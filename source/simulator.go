package source

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/heartlive/models"
)

var errAlreadyStarted = errors.New("sample source already started")

// Simulator emits a random walk around a resting heart rate at irregular intervals.
type Simulator struct {
	interval time.Duration
	base     float64

	mu     sync.Mutex
	rng    *rand.Rand
	bpm    float64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSimulator returns a simulator ticking roughly every interval around baseBPM.
func NewSimulator(interval time.Duration, baseBPM float64, seed uint64) *Simulator {
	return &Simulator{
		interval: interval,
		base:     baseBPM,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		bpm:      baseBPM,
	}
}

// Next advances the walk and returns the new bpm.
func (s *Simulator) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bpm += s.rng.NormFloat64()*2 + (s.base-s.bpm)*0.1
	if s.bpm < 35 {
		s.bpm = 35
	}
	return s.bpm
}

// jitter returns the interval scaled by a factor in [0.75, 1.25).
func (s *Simulator) jitter() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(float64(s.interval) * (0.75 + s.rng.Float64()*0.5))
}

func (s *Simulator) Start(ctx context.Context, h models.SampleHandler) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return errAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		timer := time.NewTimer(s.jitter())
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-timer.C:
				h(s.Next(), t)
				timer.Reset(s.jitter())
			}
		}
	}()
	return nil
}

// Stop halts the walk and waits for the last sample to be delivered.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
