// Package store defines the GlucoseStore contract that dosing code consumes
// and the error taxonomy shared by glucose and dose stores.
package store

import (
	"context"
	"time"

	"github.com/nvandessel/glucosim/internal/models"
)

// Predicate selects stored samples, e.g. for purging.
// A nil field leaves that dimension unconstrained.
type Predicate struct {
	Start                *time.Time `json:"start,omitempty"`
	End                  *time.Time `json:"end,omitempty"`
	ProvenanceIdentifier string     `json:"provenance_identifier,omitempty"`
	SyncIdentifiers      []string   `json:"sync_identifiers,omitempty"`
}

// QueryAnchor is the resumption point of an incremental glucose query.
// The zero value starts from the beginning.
type QueryAnchor struct {
	ModificationCounter int64 `json:"modification_counter"`
}

// QueryPage is one page of an incremental glucose query.
type QueryPage struct {
	Anchor  QueryAnchor            `json:"anchor"`
	Samples []models.GlucoseSample `json:"samples"`
}

// GlucoseStore is the glucose data source a dosing pipeline reads from.
type GlucoseStore interface {
	// Latest reading, if any.
	LatestGlucose() models.GlucoseSample

	// Authorize requests read and/or share access to glucose data.
	Authorize(ctx context.Context, toShare, read bool) (bool, error)

	AddGlucoseSamples(ctx context.Context, samples []models.NewGlucoseSample) ([]models.GlucoseSample, error)
	GetGlucoseSamples(ctx context.Context, start, end *time.Time) ([]models.GlucoseSample, error)
	PurgeAllGlucoseSamples(ctx context.Context, predicate Predicate) error
	ExecuteGlucoseQuery(ctx context.Context, anchor *QueryAnchor, limit int) (QueryPage, error)

	// Effect derivation
	CounteractionEffects(samples []models.GlucoseSample, effects []models.GlucoseEffect) []models.GlucoseEffectVelocity
	GetRecentMomentumEffect(ctx context.Context) ([]models.GlucoseEffect, error)
	GetCounteractionEffects(ctx context.Context, start time.Time, end *time.Time, effects []models.GlucoseEffect) ([]models.GlucoseEffectVelocity, error)

	GenerateDiagnosticReport(ctx context.Context) (string, error)

	// Properties
	PreferredUnit() models.Unit
	SampleType() string
	ManagedDataInterval() *time.Duration
	HealthKitStorageDelay() time.Duration
	AuthorizationRequired() bool
	SharingDenied() bool
}
