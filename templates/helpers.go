package templates

import (
	"slices"
	"strconv"

	"github.com/heartlive/models"
)

const historyTimeLayout = "1/2/06, 3:04 PM"

// FormatBPM renders a bpm value as a whole number, "--" when absent.
func FormatBPM(v *float64) string {
	if v == nil {
		return "--"
	}
	return strconv.Itoa(int(*v))
}

func FormatLabel(s *string) string {
	if s == nil {
		return "--"
	}
	return *s
}

func CurrentBPM(state models.AggregateState) *float64 {
	if state.Current == nil {
		return nil
	}
	bpm := state.Current.BPM
	return &bpm
}

func ZoneLabel(z models.Zone) string {
	if z == models.ZoneNone {
		return ""
	}
	return z.Label()
}

func readingBPM(r models.Reading) string {
	return strconv.Itoa(int(r.BPM)) + " BPM"
}

func readingZone(r models.Reading) string {
	z, err := models.Classify(r.BPM)
	if err != nil {
		return models.ZoneNone.String()
	}
	return z.String()
}

func historyTime(r models.Reading) string {
	return r.Timestamp.Format(historyTimeLayout)
}

func newestFirst(readings []models.Reading) []models.Reading {
	out := slices.Clone(readings)
	slices.Reverse(out)
	return out
}
