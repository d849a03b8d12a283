package models

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// DefaultLabelLayout renders the last update marker in medium time style.
const DefaultLabelLayout = "3:04:05 PM"

// Listener is called with the new state after every successful Ingest and every Reset.
type Listener func(AggregateState)

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithHistoryLimit caps the retained history; the oldest readings are evicted first.
// A limit of 0 keeps every reading.
func WithHistoryLimit(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithLabelLayout sets the time layout used for LastUpdateLabel.
func WithLabelLayout(layout string) AggregatorOption {
	return func(a *Aggregator) {
		if layout != "" {
			a.labelLayout = layout
		}
	}
}

// snapshot is published atomically after each write. history is sliced with a full
// slice expression so later appends by the writer never touch it.
type snapshot struct {
	state   AggregateState
	history []Reading
}

type subscription struct {
	fn Listener
}

// Aggregator keeps the reading history and derives AggregateState from it.
//
// Ingest and Reset must not be called concurrently; the owner serializes them.
// CurrentState and History are safe to call from any goroutine.
type Aggregator struct {
	limit       int
	labelLayout string

	history []Reading
	snap    atomic.Pointer[snapshot]

	subMu sync.Mutex
	subs  []*subscription
}

// NewAggregator returns an Aggregator with an empty history.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{labelLayout: DefaultLabelLayout}
	for _, opt := range opts {
		opt(a)
	}
	a.snap.Store(&snapshot{})
	return a
}

// Ingest appends r and recomputes the state from the full retained history.
// A reading with a NaN, infinite or negative bpm is rejected and nothing changes.
func (a *Aggregator) Ingest(r Reading) (AggregateState, error) {
	if err := validateBPM(r.BPM); err != nil {
		return AggregateState{}, err
	}

	a.history = append(a.history, r)
	if a.limit > 0 && len(a.history) > a.limit {
		kept := make([]Reading, a.limit, a.limit+1)
		copy(kept, a.history[len(a.history)-a.limit:])
		a.history = kept
	}

	state := a.compute(r)
	n := len(a.history)
	a.snap.Store(&snapshot{state: state, history: a.history[:n:n]})
	a.notify(state)
	return state, nil
}

// Reset drops the history and publishes the empty state.
func (a *Aggregator) Reset() {
	a.history = nil
	a.snap.Store(&snapshot{})
	a.notify(AggregateState{})
}

// CurrentState returns the state produced by the last Ingest or Reset.
func (a *Aggregator) CurrentState() AggregateState {
	return a.snap.Load().state
}

// History returns a copy of the retained readings in arrival order.
func (a *Aggregator) History() []Reading {
	return slices.Clone(a.snap.Load().history)
}

// Len returns the number of retained readings.
func (a *Aggregator) Len() int {
	return len(a.snap.Load().history)
}

// Subscribe registers fn for state updates. The returned func removes it.
func (a *Aggregator) Subscribe(fn Listener) (cancel func()) {
	sub := &subscription{fn: fn}
	a.subMu.Lock()
	a.subs = append(a.subs, sub)
	a.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.subMu.Lock()
			defer a.subMu.Unlock()
			a.subs = slices.DeleteFunc(a.subs, func(s *subscription) bool { return s == sub })
		})
	}
}

func (a *Aggregator) notify(state AggregateState) {
	a.subMu.Lock()
	subs := slices.Clone(a.subs)
	a.subMu.Unlock()

	for _, s := range subs {
		s.fn(state)
	}
}

// compute derives the state from the whole history, latest being the reading just ingested.
func (a *Aggregator) compute(latest Reading) AggregateState {
	var sum float64
	lo, hi := a.history[0].BPM, a.history[0].BPM
	for _, r := range a.history {
		sum += r.BPM
		lo = min(lo, r.BPM)
		hi = max(hi, r.BPM)
	}
	avg := sum / float64(len(a.history))
	if math.IsInf(sum, 0) {
		// bpm is finite and non-negative, so a running mean stays within [lo, hi]
		avg = 0
		for i, r := range a.history {
			avg += (r.BPM - avg) / float64(i+1)
		}
	}
	label := latest.Timestamp.Format(a.labelLayout)
	current := latest

	return AggregateState{
		Current:         &current,
		Average:         &avg,
		Min:             &lo,
		Max:             &hi,
		LastUpdateLabel: &label,
		Zone:            classify(latest.BPM),
		Count:           len(a.history),
	}
}
