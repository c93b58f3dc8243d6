// Package constants provides named constants used throughout the glucosim codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

import "time"

// Glucose momentum constants
const (
	// MomentumDataInterval is how far back from the scenario's current date
	// samples are considered when computing the momentum effect.
	MomentumDataInterval = 15 * time.Minute

	// MomentumDuration is how far past the latest sample the momentum effect
	// is projected.
	MomentumDuration = 15 * time.Minute

	// DefaultEffectDelta is the spacing between projected effect points.
	DefaultEffectDelta = 5 * time.Minute

	// MinMomentumSamples is the minimum number of samples needed before a
	// momentum projection is attempted.
	MinMomentumSamples = 3
)

// Unit conversion constants
const (
	// MillimolesPerLiterToMilligramsPerDeciliter converts mmol/L to mg/dL.
	MillimolesPerLiterToMilligramsPerDeciliter = 18.0156
)

// Resource naming constants
const (
	// HistoricGlucoseResource is the resource name suffix appended to a
	// scenario's fixture prefix to find its historical samples.
	HistoricGlucoseResource = "historic_glucose"

	// FixtureExtension is the file extension of every fixture resource.
	FixtureExtension = ".json"

	// LocalTimeLayout is the ISO-8601 layout, without zone, used by effect
	// fixtures and scenario reference dates. Values are read in local time.
	LocalTimeLayout = "2006-01-02T15:04:05"
)

// Store identity constants
const (
	// BloodGlucoseSampleType is the sample type reported by the glucose store.
	BloodGlucoseSampleType = "HKQuantityTypeIdentifierBloodGlucose"

	// DefaultProvenance is used for samples the mock synthesizes itself.
	DefaultProvenance = "com.loopkit.glucosim"
)
