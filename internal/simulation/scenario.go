package simulation

import (
	"time"

	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/nvandessel/glucosim/internal/models"
	"github.com/nvandessel/glucosim/internal/scenario"
)

// Case defines one store experiment.
type Case struct {
	Name     string
	Scenario scenario.Scenario

	// History, when non-empty, is written as the scenario's historic glucose
	// resource, making the store data backed.
	History []SampleSpec

	// HistoryEnd anchors History offsets. Defaults to DefaultHistoryEnd.
	HistoryEnd time.Time

	// Fixtures replaces or adds raw resources by name before the store is built.
	Fixtures map[string][]byte

	// Omit deletes resources by name so missing-fixture paths can be exercised.
	Omit []string

	// CurrentDate, when non-zero, pins the store's current date.
	CurrentDate time.Time

	// Window bounds the counteraction query. A zero Start means the zero time.
	Window Window
}

// Window is a counteraction query range; End nil leaves it open.
type Window struct {
	Start time.Time
	End   *time.Time
}

// SampleSpec is a flat builder for one historical glucose sample.
type SampleSpec struct {
	// Offset is subtracted from the case's HistoryEnd.
	Offset      time.Duration
	Value       float64 // mg/dL
	Provenance  string  // defaults to DefaultSensorProvenance
	DisplayOnly bool
}

// ToSample converts a SampleSpec into a GlucoseSample ending at end.
func (s SampleSpec) ToSample(end time.Time) models.GlucoseSample {
	provenance := s.Provenance
	if provenance == "" {
		provenance = DefaultSensorProvenance
	}
	return models.GlucoseSample{
		StartDate:            end.Add(-s.Offset),
		Quantity:             models.MgdL(s.Value),
		ProvenanceIdentifier: provenance,
		IsDisplayOnly:        s.DisplayOnly,
	}
}

// Result captures everything the store answered for one case.
type Result struct {
	Name    string
	Store   *mockstore.GlucoseStore
	Backing mockstore.Backing

	Latest      models.GlucoseSample
	LatestPanic error

	Momentum      []models.GlucoseEffect
	MomentumErr   error
	MomentumPanic error

	Counteraction      []models.GlucoseEffectVelocity
	CounteractionErr   error
	CounteractionPanic error
}
