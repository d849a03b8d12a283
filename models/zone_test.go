package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		bpm  float64
		zone Zone
	}{
		{0, ZoneLow},
		{58, ZoneLow},
		{59.9, ZoneLow},
		{59.999, ZoneLow},
		{60, ZoneNormal},
		{72, ZoneNormal},
		{100, ZoneNormal},
		{100.0001, ZoneElevated},
		{100.1, ZoneElevated},
		{110, ZoneElevated},
		{120, ZoneElevated},
		{120.1, ZoneHigh},
		{120.5, ZoneHigh},
		{250, ZoneHigh},
	}
	for _, c := range cases {
		got, err := Classify(c.bpm)
		require.NoError(t, err, "bpm %v", c.bpm)
		require.Equal(t, c.zone, got, "bpm %v", c.bpm)
	}
}

func TestClassifyRejectsInvalid(t *testing.T) {
	for _, bpm := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		z, err := Classify(bpm)
		require.ErrorIs(t, err, ErrInvalidReading)
		require.Equal(t, ZoneNone, z)

		var ire *InvalidReadingError
		require.ErrorAs(t, err, &ire)
	}
}

func TestZonePresentation(t *testing.T) {
	require.Equal(t, "Low", ZoneLow.Label())
	require.Equal(t, "Normal", ZoneNormal.Label())
	require.Equal(t, "Elevated", ZoneElevated.Label())
	require.Equal(t, "High", ZoneHigh.Label())
	require.Equal(t, "None", ZoneNone.Label())

	require.Equal(t, "blue", ZoneLow.Color())
	require.Equal(t, "green", ZoneNormal.Color())
	require.Equal(t, "orange", ZoneElevated.Color())
	require.Equal(t, "red", ZoneHigh.Color())
	require.Equal(t, "gray", ZoneNone.Color())
	require.Equal(t, "gray", Zone("bogus").Color())

	require.Equal(t, "none", ZoneNone.String())
	require.Equal(t, "> 120 bpm", ZoneHigh.Range())
	require.Empty(t, ZoneNone.Range())
}
