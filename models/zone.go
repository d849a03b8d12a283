package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Zone is a heart rate band used to pick colours and labels.
type Zone string

const (
	ZoneNone     Zone = ""
	ZoneLow      Zone = "low"
	ZoneNormal   Zone = "normal"
	ZoneElevated Zone = "elevated"
	ZoneHigh     Zone = "high"
)

// Band edges in bpm. Normal and Elevated are closed on their upper edge.
const (
	LowerNormalBPM   = 60.0
	UpperNormalBPM   = 100.0
	UpperElevatedBPM = 120.0
)

// Zones lists the bands in ascending order.
var Zones = []Zone{ZoneLow, ZoneNormal, ZoneElevated, ZoneHigh}

var zoneColors = map[Zone]string{
	ZoneNone:     "gray",
	ZoneLow:      "blue",
	ZoneNormal:   "green",
	ZoneElevated: "orange",
	ZoneHigh:     "red",
}

// Classify maps bpm into its zone.
func Classify(bpm float64) (Zone, error) {
	if err := validateBPM(bpm); err != nil {
		return ZoneNone, err
	}
	return classify(bpm), nil
}

func classify(bpm float64) Zone {
	switch {
	case bpm < LowerNormalBPM:
		return ZoneLow
	case bpm <= UpperNormalBPM:
		return ZoneNormal
	case bpm <= UpperElevatedBPM:
		return ZoneElevated
	default:
		return ZoneHigh
	}
}

func (z Zone) String() string {
	if z == ZoneNone {
		return "none"
	}
	return string(z)
}

// Label returns the display name, e.g. "Elevated".
func (z Zone) Label() string {
	// Casers keep state, so one per call.
	return cases.Title(language.English).String(z.String())
}

// Color returns the CSS colour name used by the dashboard.
func (z Zone) Color() string {
	if c, ok := zoneColors[z]; ok {
		return c
	}
	return zoneColors[ZoneNone]
}

// Range returns a human readable bpm range for legends.
func (z Zone) Range() string {
	switch z {
	case ZoneLow:
		return "< 60 bpm"
	case ZoneNormal:
		return "60 to 100 bpm"
	case ZoneElevated:
		return "> 100 to 120 bpm"
	case ZoneHigh:
		return "> 120 bpm"
	}
	return ""
}
