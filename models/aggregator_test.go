package models

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func reading(bpm float64, offset time.Duration) Reading {
	return Reading{BPM: bpm, Timestamp: t0.Add(offset)}
}

func TestAggregatorEmpty(t *testing.T) {
	a := NewAggregator()
	s := a.CurrentState()
	require.True(t, s.IsEmpty())
	require.Nil(t, s.Average)
	require.Nil(t, s.Min)
	require.Nil(t, s.Max)
	require.Nil(t, s.LastUpdateLabel)
	require.Equal(t, ZoneNone, s.Zone)
	require.Zero(t, s.Count)
	require.Empty(t, a.History())
}

func TestAggregatorIngest(t *testing.T) {
	a := NewAggregator()
	var s AggregateState
	var err error
	for i, bpm := range []float64{72, 65, 110} {
		s, err = a.Ingest(reading(bpm, time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	require.Equal(t, 3, s.Count)
	require.InDelta(t, 82.333, *s.Average, 0.001)
	require.Equal(t, 65.0, *s.Min)
	require.Equal(t, 110.0, *s.Max)
	require.Equal(t, 110.0, s.Current.BPM)
	require.Equal(t, ZoneElevated, s.Zone)
	require.Equal(t, "2:05:09 PM", *s.LastUpdateLabel)
	require.Equal(t, s, a.CurrentState())
	require.Len(t, a.History(), 3)
}

func TestAggregatorSingleLowReading(t *testing.T) {
	a := NewAggregator()
	s, err := a.Ingest(reading(58, 0))
	require.NoError(t, err)
	require.Equal(t, ZoneLow, s.Zone)
	require.Equal(t, 58.0, *s.Average)
	require.Equal(t, 58.0, *s.Min)
	require.Equal(t, 58.0, *s.Max)
}

func TestAggregatorInvalidLeavesStateUnchanged(t *testing.T) {
	a := NewAggregator()
	before, err := a.Ingest(reading(80, 0))
	require.NoError(t, err)

	calls := 0
	cancel := a.Subscribe(func(AggregateState) { calls++ })
	defer cancel()

	for _, bpm := range []float64{math.NaN(), math.Inf(1), -3} {
		_, err := a.Ingest(reading(bpm, time.Second))
		require.ErrorIs(t, err, ErrInvalidReading)
	}
	require.Equal(t, before, a.CurrentState())
	require.Len(t, a.History(), 1)
	require.Zero(t, calls)
}

func TestAggregatorReset(t *testing.T) {
	a := NewAggregator()
	_, err := a.Ingest(reading(90, 0))
	require.NoError(t, err)

	var got []AggregateState
	cancel := a.Subscribe(func(s AggregateState) { got = append(got, s) })
	defer cancel()

	a.Reset()
	require.True(t, a.CurrentState().IsEmpty())
	require.Empty(t, a.History())
	require.Len(t, got, 1)
	require.True(t, got[0].IsEmpty())

	a.Reset()
	require.True(t, a.CurrentState().IsEmpty())
}

func TestAggregatorDuplicateReadings(t *testing.T) {
	a := NewAggregator()
	r := reading(75, 0)
	_, err := a.Ingest(r)
	require.NoError(t, err)
	s, err := a.Ingest(r)
	require.NoError(t, err)

	require.Equal(t, 2, s.Count)
	require.Equal(t, 75.0, *s.Average)
}

func TestAggregatorArrivalOrder(t *testing.T) {
	a := NewAggregator()
	_, err := a.Ingest(reading(70, 10*time.Second))
	require.NoError(t, err)
	s, err := a.Ingest(reading(130, 0))
	require.NoError(t, err)

	// The latest arrival is current even though it is older.
	require.Equal(t, 130.0, s.Current.BPM)
	require.Equal(t, ZoneHigh, s.Zone)
	require.Equal(t, "2:05:07 PM", *s.LastUpdateLabel)
	h := a.History()
	require.Equal(t, 70.0, h[0].BPM)
	require.Equal(t, 130.0, h[1].BPM)
}

func TestAggregatorOrderIndependent(t *testing.T) {
	bpms := []float64{58, 61.5, 72, 99.9, 100, 100.1, 118, 120.1, 143, 64, 64, 87.25}
	ingestAll := func(order []float64) AggregateState {
		a := NewAggregator()
		var s AggregateState
		for i, bpm := range order {
			var err error
			s, err = a.Ingest(reading(bpm, time.Duration(i)*time.Second))
			require.NoError(t, err)
		}
		return s
	}
	want := ingestAll(bpms)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		order := slices.Clone(bpms)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		got := ingestAll(order)
		require.Equal(t, want.Count, got.Count, "order %v", order)
		require.InDelta(t, *want.Average, *got.Average, 1e-9, "order %v", order)
		require.Equal(t, *want.Min, *got.Min, "order %v", order)
		require.Equal(t, *want.Max, *got.Max, "order %v", order)
	}
}

func TestAggregatorHugeReadingsStayFinite(t *testing.T) {
	a := NewAggregator()
	_, err := a.Ingest(reading(1e308, 0))
	require.NoError(t, err)
	s, err := a.Ingest(reading(1e308, time.Second))
	require.NoError(t, err)

	require.False(t, math.IsInf(*s.Average, 0))
	require.InDelta(t, 1e308, *s.Average, 1e293)
	require.Equal(t, ZoneHigh, s.Zone)

	_, err = json.Marshal(s)
	require.NoError(t, err)

	s, err = a.Ingest(reading(0, 2*time.Second))
	require.NoError(t, err)
	require.InDelta(t, 2e308/3, *s.Average, 1e293)
	require.Equal(t, 0.0, *s.Min)
}

func TestAggregatorHistoryLimit(t *testing.T) {
	a := NewAggregator(WithHistoryLimit(3))
	var s AggregateState
	for i, bpm := range []float64{200, 50, 60, 70, 80} {
		var err error
		s, err = a.Ingest(reading(bpm, time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	require.Equal(t, 3, s.Count)
	require.Equal(t, 70.0, *s.Average)
	require.Equal(t, 60.0, *s.Min)
	require.Equal(t, 80.0, *s.Max)

	h := a.History()
	require.Len(t, h, 3)
	require.Equal(t, 60.0, h[0].BPM)
}

func TestAggregatorLabelLayout(t *testing.T) {
	a := NewAggregator(WithLabelLayout(time.RFC3339))
	s, err := a.Ingest(reading(64, 0))
	require.NoError(t, err)
	require.Equal(t, "2024-03-09T14:05:07Z", *s.LastUpdateLabel)
}

func TestAggregatorHistoryIsACopy(t *testing.T) {
	a := NewAggregator()
	_, err := a.Ingest(reading(64, 0))
	require.NoError(t, err)

	h := a.History()
	h[0].BPM = 999
	require.Equal(t, 64.0, a.History()[0].BPM)
}

func TestAggregatorSubscribeCancel(t *testing.T) {
	a := NewAggregator()
	calls := 0
	cancel := a.Subscribe(func(AggregateState) { calls++ })

	_, err := a.Ingest(reading(64, 0))
	require.NoError(t, err)
	cancel()
	cancel()
	_, err = a.Ingest(reading(65, 0))
	require.NoError(t, err)

	require.Equal(t, 1, calls)
}

func TestAggregatorConcurrentReads(t *testing.T) {
	a := NewAggregator(WithHistoryLimit(50))

	var wg sync.WaitGroup
	done := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				s := a.CurrentState()
				h := a.History()
				if !s.IsEmpty() {
					assert.GreaterOrEqual(t, *s.Max, *s.Min)
				}
				assert.LessOrEqual(t, len(h), 50)
			}
		}()
	}

	for i := range 500 {
		_, err := a.Ingest(reading(float64(50+i%100), time.Duration(i)*time.Millisecond))
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()

	require.Equal(t, 50, a.CurrentState().Count)
}
