package models

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	granted bool
	err     error
}

func (f *fakeAuth) RequestAccess(context.Context) (bool, error) {
	return f.granted, f.err
}

type fakeSource struct {
	mu       sync.Mutex
	handler  SampleHandler
	starts   int
	stops    int
	startErr error
}

func (f *fakeSource) Start(_ context.Context, h SampleHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.handler = h
	f.starts++
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeSource) emit(bpm float64) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(bpm, time.Now())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMonitor(auth Authorizer, src SampleSource, opts ...MonitorOption) *Monitor {
	return NewMonitor(discardLogger(), auth, src, NewAggregator(), opts...)
}

func TestMonitorRequestAccessStarts(t *testing.T) {
	src := &fakeSource{}
	m := newTestMonitor(&fakeAuth{granted: true}, src)

	granted, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	require.True(t, granted)

	st := m.Status()
	require.True(t, st.HasAccess)
	require.True(t, st.Monitoring)
	require.NotEmpty(t, st.SessionID)
	require.NotNil(t, st.StartedAt)
	require.Equal(t, 1, src.starts)

	src.emit(72)
	src.emit(65)
	src.emit(110)
	s := m.Aggregator().CurrentState()
	require.Equal(t, 3, s.Count)
	require.Equal(t, ZoneElevated, s.Zone)

	// A second grant while running keeps the session.
	granted, err = m.RequestAccess(context.Background())
	require.NoError(t, err)
	require.True(t, granted)
	require.Equal(t, st.SessionID, m.Status().SessionID)
	require.Equal(t, 1, src.starts)
}

func TestMonitorAccessDenied(t *testing.T) {
	src := &fakeSource{}
	m := newTestMonitor(&fakeAuth{granted: false}, src)

	granted, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	require.False(t, granted)
	require.False(t, m.Status().HasAccess)
	require.False(t, m.Status().Monitoring)
	require.Zero(t, src.starts)

	require.ErrorIs(t, m.Start(context.Background()), ErrAccessRequired)
}

func TestMonitorAccessError(t *testing.T) {
	boom := errors.New("health store unavailable")
	m := newTestMonitor(&fakeAuth{err: boom}, &fakeSource{})

	granted, err := m.RequestAccess(context.Background())
	require.ErrorIs(t, err, boom)
	require.False(t, granted)
	require.False(t, m.Status().HasAccess)
}

func TestMonitorAccessRevokedStopsSession(t *testing.T) {
	auth := &fakeAuth{granted: true}
	src := &fakeSource{}
	m := newTestMonitor(auth, src)
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	src.emit(80)

	auth.granted = false
	granted, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	require.False(t, granted)

	st := m.Status()
	require.False(t, st.HasAccess)
	require.False(t, st.Monitoring)
	require.Empty(t, st.SessionID)
	require.Nil(t, st.StartedAt)
	require.Equal(t, 1, src.stops)
	require.True(t, m.Aggregator().CurrentState().IsEmpty())

	src.emit(70)
	require.True(t, m.Aggregator().CurrentState().IsEmpty())
	require.ErrorIs(t, m.Start(context.Background()), ErrAccessRequired)
}

func TestMonitorAccessErrorStopsSession(t *testing.T) {
	auth := &fakeAuth{granted: true}
	src := &fakeSource{}
	m := newTestMonitor(auth, src, KeepHistoryOnStop(true))
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	src.emit(80)

	boom := errors.New("health store unavailable")
	auth.granted, auth.err = false, boom
	granted, err := m.RequestAccess(context.Background())
	require.ErrorIs(t, err, boom)
	require.False(t, granted)

	require.False(t, m.Status().Monitoring)
	require.Equal(t, 1, src.stops)
	require.Equal(t, 1, m.Aggregator().CurrentState().Count)

	src.emit(70)
	require.Equal(t, 1, m.Aggregator().CurrentState().Count)
}

func TestMonitorStartFailure(t *testing.T) {
	boom := errors.New("broker down")
	m := newTestMonitor(&fakeAuth{granted: true}, &fakeSource{startErr: boom})

	granted, err := m.RequestAccess(context.Background())
	require.True(t, granted)
	require.ErrorIs(t, err, boom)

	st := m.Status()
	require.True(t, st.HasAccess)
	require.False(t, st.Monitoring)
	require.Empty(t, st.SessionID)
}

func TestMonitorStartTwice(t *testing.T) {
	m := newTestMonitor(&fakeAuth{granted: true}, &fakeSource{})
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, m.Start(context.Background()), ErrAlreadyMonitoring)
}

func TestMonitorStopResetsAndDropsLateSamples(t *testing.T) {
	src := &fakeSource{}
	m := newTestMonitor(&fakeAuth{granted: true}, src)
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	src.emit(80)

	require.NoError(t, m.Stop())
	require.Equal(t, 1, src.stops)
	require.False(t, m.Status().Monitoring)
	require.True(t, m.Status().HasAccess)
	require.True(t, m.Aggregator().CurrentState().IsEmpty())

	src.emit(90)
	require.True(t, m.Aggregator().CurrentState().IsEmpty())

	_, err = m.Ingest(90, time.Now())
	require.ErrorIs(t, err, ErrNotMonitoring)

	// Stopping again is a no-op.
	require.NoError(t, m.Stop())
	require.Equal(t, 1, src.stops)
}

func TestMonitorKeepHistoryOnStop(t *testing.T) {
	src := &fakeSource{}
	m := newTestMonitor(&fakeAuth{granted: true}, src, KeepHistoryOnStop(true))
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)
	src.emit(80)
	require.NoError(t, m.Stop())
	require.Equal(t, 1, m.Aggregator().CurrentState().Count)

	// A new session always starts empty.
	require.NoError(t, m.Start(context.Background()))
	require.True(t, m.Aggregator().CurrentState().IsEmpty())
}

func TestMonitorStaleSessionIgnored(t *testing.T) {
	src := &fakeSource{}
	m := newTestMonitor(&fakeAuth{granted: true}, src)
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)

	src.mu.Lock()
	stale := src.handler
	src.mu.Unlock()

	require.NoError(t, m.Stop())
	require.NoError(t, m.Start(context.Background()))

	stale(70, time.Now())
	require.True(t, m.Aggregator().CurrentState().IsEmpty())

	src.emit(70)
	require.Equal(t, 1, m.Aggregator().CurrentState().Count)
}

func TestMonitorIngestRejectsInvalid(t *testing.T) {
	m := newTestMonitor(&fakeAuth{granted: true}, &fakeSource{})
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)

	_, err = m.Ingest(-5, time.Now())
	require.ErrorIs(t, err, ErrInvalidReading)

	s, err := m.Ingest(101, time.Now())
	require.NoError(t, err)
	require.Equal(t, ZoneElevated, s.Zone)
}

func TestMonitorConcurrentSamples(t *testing.T) {
	src := &fakeSource{}
	m := newTestMonitor(&fakeAuth{granted: true}, src)
	_, err := m.RequestAccess(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 25 {
				src.emit(float64(60+i+j))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 200, m.Aggregator().CurrentState().Count)
	require.Len(t, m.Aggregator().History(), 200)
}
