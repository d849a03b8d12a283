package models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidReading is matched by every *InvalidReadingError.
var ErrInvalidReading = errors.New("invalid heart rate reading")

// Reading is one timestamped heart rate sample
type Reading struct {
	BPM       float64   `json:"bpm"`
	Timestamp time.Time `json:"timestamp"`
}

// AggregateState is the derived view over the retained history.
// Optional fields are nil iff the history is empty.
type AggregateState struct {
	Current         *Reading `json:"current,omitempty"`
	Average         *float64 `json:"average,omitempty"`
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	LastUpdateLabel *string  `json:"last_update,omitempty"`
	Zone            Zone     `json:"zone,omitempty"`
	Count           int      `json:"count"`
}

// InvalidReadingError reports a bpm value that is NaN, infinite or negative.
type InvalidReadingError struct {
	BPM float64
}

func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("invalid heart rate reading: bpm %v must be finite and non-negative", e.BPM)
}

func (e *InvalidReadingError) Is(target error) bool {
	return target == ErrInvalidReading
}

// SampleHandler receives samples pushed by a SampleSource.
type SampleHandler func(bpm float64, ts time.Time)

// SampleSource emits heart rate samples asynchronously between Start and Stop.
type SampleSource interface {
	Start(ctx context.Context, h SampleHandler) error
	Stop() error
}

// Authorizer reports whether heart rate read access is granted.
type Authorizer interface {
	RequestAccess(ctx context.Context) (bool, error)
}

// NewReading validates bpm and builds a Reading.
func NewReading(bpm float64, ts time.Time) (Reading, error) {
	if err := validateBPM(bpm); err != nil {
		return Reading{}, err
	}
	return Reading{BPM: bpm, Timestamp: ts}, nil
}

func validateBPM(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm < 0 {
		return &InvalidReadingError{BPM: bpm}
	}
	return nil
}

// IsEmpty reports whether the state was derived from an empty history.
func (s AggregateState) IsEmpty() bool {
	return s.Current == nil
}
