package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/relvacode/iso8601"
)

// ErrMalformedSample is returned for payloads that are not a heart rate sample.
var ErrMalformedSample = errors.New("malformed heart rate sample")

// Sample is the wire form of one heart rate sample.
type Sample struct {
	BPM       float64   `json:"bpm"`
	Timestamp time.Time `json:"timestamp"`
}

// sampleWire accepts an ISO-8601 string or unix milliseconds as timestamp.
type sampleWire struct {
	BPM       *float64        `json:"bpm"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// DecodeSample parses a JSON sample. A missing timestamp is replaced by now.
func DecodeSample(b []byte, now time.Time) (Sample, error) {
	var w sampleWire
	if err := json.Unmarshal(b, &w); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrMalformedSample, err)
	}
	if w.BPM == nil {
		return Sample{}, fmt.Errorf("%w: missing bpm", ErrMalformedSample)
	}

	ts, err := decodeTimestamp(w.Timestamp, now)
	if err != nil {
		return Sample{}, err
	}
	return Sample{BPM: *w.BPM, Timestamp: ts}, nil
}

func decodeTimestamp(raw json.RawMessage, now time.Time) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return now, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedSample, err)
		}
		ts, err := iso8601.ParseString(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformedSample, s, err)
		}
		return ts, nil
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %s: %v", ErrMalformedSample, raw, err)
	}
	return time.UnixMilli(ms), nil
}

// EncodeSample renders s in the wire format read by DecodeSample.
func EncodeSample(s Sample) ([]byte, error) {
	return json.Marshal(s)
}
