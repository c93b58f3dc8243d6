package simulation

import (
	"time"
)

// DefaultHistoryEnd anchors SampleSpec offsets when a Case sets no HistoryEnd.
var DefaultHistoryEnd = time.Date(2023, 7, 29, 19, 21, 0, 0, time.UTC)

// DefaultSensorProvenance is the provenance given to built samples.
const DefaultSensorProvenance = "com.dexcom.G6"

// sampleSpacing is the CGM reading interval used by the builders.
const sampleSpacing = 5 * time.Minute

// Ramp builds n readings five minutes apart ending at the case's HistoryEnd,
// starting at start mg/dL and changing by step per reading.
func Ramp(n int, start, step float64) []SampleSpec {
	specs := make([]SampleSpec, n)
	for i := range specs {
		specs[i] = SampleSpec{
			Offset: time.Duration(n-1-i) * sampleSpacing,
			Value:  start + float64(i)*step,
		}
	}
	return specs
}

// Flat builds n identical readings.
func Flat(n int, value float64) []SampleSpec {
	return Ramp(n, value, 0)
}

// WithGap returns specs with every reading at or before index i pushed back
// by gap, opening a hole in the sensor stream.
func WithGap(specs []SampleSpec, i int, gap time.Duration) []SampleSpec {
	out := append([]SampleSpec(nil), specs...)
	for j := 0; j <= i && j < len(out); j++ {
		out[j].Offset += gap
	}
	return out
}

// Calibrated marks reading i as a display-only calibration point.
func Calibrated(specs []SampleSpec, i int) []SampleSpec {
	out := append([]SampleSpec(nil), specs...)
	out[i].DisplayOnly = true
	return out
}

// FromSource sets the provenance of reading i.
func FromSource(specs []SampleSpec, i int, provenance string) []SampleSpec {
	out := append([]SampleSpec(nil), specs...)
	out[i].Provenance = provenance
	return out
}
