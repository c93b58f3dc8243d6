// Package mockstore implements a scenario-driven GlucoseStore for dosing tests.
//
// A GlucoseStore is bound to one scenario for its lifetime. At construction it
// tries to load the scenario's historical glucose resource. When that succeeds
// the store is data backed and every effect query is computed from those
// samples; otherwise it is fixture backed and effect queries decode the
// scenario's canned fixtures. Writes always fail with a configuration error.
//
// The live capture scenario has no canned data. Asking a live capture store
// for a fixture or a synthetic value panics with an error wrapping
// scenario.ErrLiveCapture.
package mockstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nvandessel/glucosim/internal/constants"
	"github.com/nvandessel/glucosim/internal/fixture"
	"github.com/nvandessel/glucosim/internal/glucosemath"
	"github.com/nvandessel/glucosim/internal/logging"
	"github.com/nvandessel/glucosim/internal/metrics"
	"github.com/nvandessel/glucosim/internal/models"
	"github.com/nvandessel/glucosim/internal/resource"
	"github.com/nvandessel/glucosim/internal/scenario"
	"github.com/nvandessel/glucosim/internal/store"
)

// Backing says where a store's effects come from.
type Backing int

const (
	FixtureBacked Backing = iota // canned fixtures keyed by scenario
	DataBacked                   // computed from historical samples
)

func (b Backing) String() string {
	if b == DataBacked {
		return "data"
	}
	return "fixture"
}

// MomentumFunc computes a momentum effect from chronological samples.
type MomentumFunc func(samples []models.GlucoseSample, duration, delta time.Duration) []models.GlucoseEffect

// Option configures a GlucoseStore.
type Option func(*GlucoseStore)

// WithLoader sets the resource loader. Defaults to the embedded bundle.
func WithLoader(l resource.Loader) Option {
	return func(s *GlucoseStore) { s.loader = l }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *GlucoseStore) { s.logger = l }
}

// WithDecisionLogger records every resolution to a JSONL trace.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(s *GlucoseStore) { s.decisions = dl }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *GlucoseStore) { s.metrics = r }
}

// WithCurrentDate pins the date momentum windows are measured back from.
func WithCurrentDate(t time.Time) Option {
	return func(s *GlucoseStore) { s.currentDate = t }
}

// WithMomentumCalculator replaces glucosemath.LinearMomentumEffect.
func WithMomentumCalculator(fn MomentumFunc) Option {
	return func(s *GlucoseStore) { s.momentum = fn }
}

// WithPreferredUnit sets the unit reported by PreferredUnit.
func WithPreferredUnit(u models.Unit) Option {
	return func(s *GlucoseStore) { s.preferredUnit = u }
}

// WithHistoricGlucose supplies the historical samples directly and skips
// loading the historic glucose resource. The samples are copied and put in
// chronological order.
func WithHistoricGlucose(samples []models.GlucoseSample) Option {
	return func(s *GlucoseStore) {
		s.historic = append([]models.GlucoseSample(nil), samples...)
		sort.SliceStable(s.historic, func(i, j int) bool {
			return s.historic[i].StartDate.Before(s.historic[j].StartDate)
		})
		s.historicSet = true
	}
}

// GlucoseStore is the scenario-driven mock. It is immutable after New and
// safe for concurrent use.
type GlucoseStore struct {
	scenario      scenario.Scenario
	loader        resource.Loader
	historic      []models.GlucoseSample
	historicSet   bool
	loadErr       error
	currentDate   time.Time
	preferredUnit models.Unit
	momentum      MomentumFunc

	logger    *slog.Logger
	decisions *logging.DecisionLogger
	metrics   metrics.Recorder
}

var _ store.GlucoseStore = (*GlucoseStore)(nil)

// New creates a store bound to scn and resolves its historical samples.
// A missing or undecodable historic resource leaves the store fixture backed.
func New(ctx context.Context, scn scenario.Scenario, opts ...Option) *GlucoseStore {
	s := &GlucoseStore{
		scenario: scn,
		momentum: glucosemath.LinearMomentumEffect,
		metrics:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = resource.NewEmbedded()
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}

	if !s.historicSet {
		s.historic = s.loadHistoricGlucose(ctx)
	}
	if len(s.historic) == 0 {
		s.historic = nil
	}

	s.logger.Debug("glucose store ready",
		"scenario", scn.String(),
		"backing", s.Backing().String(),
		"driver", string(s.loader.Driver()),
		"samples", len(s.historic))
	s.decisions.LogResolution(logging.Resolution{
		Scenario:  scn.String(),
		Operation: "init",
		Backing:   s.Backing().String(),
		Resource:  scn.HistoricGlucoseResource(),
		Count:     len(s.historic),
	})
	return s
}

func (s *GlucoseStore) loadHistoricGlucose(ctx context.Context) []models.GlucoseSample {
	name := s.scenario.HistoricGlucoseResource()
	data, err := s.loader.Load(ctx, name)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			s.logger.Debug("no historic glucose", "resource", name)
		} else {
			s.logger.Debug("historic glucose unavailable", "resource", name, "error", err)
			s.loadErr = err
		}
		return nil
	}
	samples, err := fixture.DecodeHistoricGlucose(data)
	if err != nil {
		s.logger.Debug("historic glucose undecodable", "resource", name, "error", err)
		return nil
	}
	s.logger.Log(ctx, logging.LevelTrace, "historic glucose decoded", "resource", name, "bytes", len(data), "samples", len(samples))
	return samples
}

// LoadErr returns the error that kept the historic glucose resource from
// loading, other than it not existing. The store is fixture backed when it is
// non-nil, but the failure may be transient.
func (s *GlucoseStore) LoadErr() error {
	return s.loadErr
}

// Scenario returns the bound scenario.
func (s *GlucoseStore) Scenario() scenario.Scenario {
	return s.scenario
}

// Backing reports whether effects are computed or loaded from fixtures.
func (s *GlucoseStore) Backing() Backing {
	if s.historic != nil {
		return DataBacked
	}
	return FixtureBacked
}

// HistoricGlucose returns a copy of the historical samples, or nil.
func (s *GlucoseStore) HistoricGlucose() []models.GlucoseSample {
	if s.historic == nil {
		return nil
	}
	return append([]models.GlucoseSample(nil), s.historic...)
}

// CurrentDate is the instant momentum windows end at. An explicit
// WithCurrentDate wins; otherwise canned scenarios use their glucose start
// date and live capture uses its last historical sample.
func (s *GlucoseStore) CurrentDate() time.Time {
	if !s.currentDate.IsZero() {
		return s.currentDate
	}
	if s.scenario.IsLiveCapture() && s.historic != nil {
		return s.historic[len(s.historic)-1].StartDate
	}
	return s.scenario.GlucoseStartDate()
}

// LatestGlucose returns the newest historical sample, or a synthetic sample
// at the scenario's glucose start date.
func (s *GlucoseStore) LatestGlucose() models.GlucoseSample {
	if s.historic != nil {
		return s.historic[len(s.historic)-1]
	}
	return models.GlucoseSample{
		StartDate:            s.scenario.GlucoseStartDate(),
		Quantity:             models.MgdL(s.scenario.LatestGlucoseValue()),
		ProvenanceIdentifier: constants.DefaultProvenance,
	}
}

// Authorize always grants access.
func (s *GlucoseStore) Authorize(ctx context.Context, toShare, read bool) (bool, error) {
	s.observe(ctx, "authorize", "", 0, nil, time.Now())
	return true, nil
}

// AddGlucoseSamples always fails; the mock does not persist.
func (s *GlucoseStore) AddGlucoseSamples(ctx context.Context, samples []models.NewGlucoseSample) ([]models.GlucoseSample, error) {
	err := store.ConfigurationError("add glucose samples")
	s.observe(ctx, "add_samples", "", 0, err, time.Now())
	return nil, err
}

// GetGlucoseSamples returns the latest sample only; the bounds are ignored.
func (s *GlucoseStore) GetGlucoseSamples(ctx context.Context, start, end *time.Time) ([]models.GlucoseSample, error) {
	began := time.Now()
	samples := []models.GlucoseSample{s.LatestGlucose()}
	s.observe(ctx, "get_samples", "", len(samples), nil, began)
	return samples, nil
}

// PurgeAllGlucoseSamples always fails.
func (s *GlucoseStore) PurgeAllGlucoseSamples(ctx context.Context, predicate store.Predicate) error {
	err := store.ConfigurationError("purge glucose samples")
	s.observe(ctx, "purge", "", 0, err, time.Now())
	return err
}

// ExecuteGlucoseQuery always fails.
func (s *GlucoseStore) ExecuteGlucoseQuery(ctx context.Context, anchor *store.QueryAnchor, limit int) (store.QueryPage, error) {
	err := store.ConfigurationError("execute glucose query")
	s.observe(ctx, "query", "", 0, err, time.Now())
	return store.QueryPage{}, err
}

// CounteractionEffects is not modeled and always returns an empty slice.
func (s *GlucoseStore) CounteractionEffects(samples []models.GlucoseSample, effects []models.GlucoseEffect) []models.GlucoseEffectVelocity {
	return []models.GlucoseEffectVelocity{}
}

// GetRecentMomentumEffect returns the momentum effect at CurrentDate.
func (s *GlucoseStore) GetRecentMomentumEffect(ctx context.Context) ([]models.GlucoseEffect, error) {
	began := time.Now()
	if s.historic != nil {
		window := glucosemath.FilterDateRange(s.historic, s.CurrentDate().Add(-constants.MomentumDataInterval), nil)
		effects := s.momentum(window, constants.MomentumDuration, constants.DefaultEffectDelta)
		if effects == nil {
			effects = []models.GlucoseEffect{}
		}
		s.logger.Log(ctx, logging.LevelTrace, "momentum computed", "window", len(window), "effects", len(effects))
		s.observe(ctx, "momentum", "", len(effects), nil, began)
		return effects, nil
	}

	name := s.scenario.MomentumEffectResource()
	data, err := s.loader.Load(ctx, name)
	if err != nil {
		err = fmt.Errorf("load momentum effect %s: %w", name, err)
		s.observe(ctx, "momentum", name, 0, err, began)
		return nil, err
	}
	effects, err := fixture.DecodeMomentumEffects(data)
	if err != nil {
		err = fmt.Errorf("decode momentum effect %s: %w", name, err)
		s.observe(ctx, "momentum", name, 0, err, began)
		return nil, err
	}
	s.observe(ctx, "momentum", name, len(effects), nil, began)
	return effects, nil
}

// GetCounteractionEffects returns counteraction effects for [start, end).
// A nil end leaves the window open.
func (s *GlucoseStore) GetCounteractionEffects(ctx context.Context, start time.Time, end *time.Time, effects []models.GlucoseEffect) ([]models.GlucoseEffectVelocity, error) {
	began := time.Now()
	if s.historic != nil {
		samples := glucosemath.FilterDateRange(s.historic, start, end)
		velocities := s.CounteractionEffects(samples, effects)
		s.observe(ctx, "counteraction", "", len(velocities), nil, began)
		return velocities, nil
	}

	name := s.scenario.CounteractionEffectResource()
	data, err := s.loader.Load(ctx, name)
	if err != nil {
		err = fmt.Errorf("load counteraction effect %s: %w", name, err)
		s.observe(ctx, "counteraction", name, 0, err, began)
		return nil, err
	}
	velocities, err := fixture.DecodeCounteractionEffects(data)
	if err != nil {
		err = fmt.Errorf("decode counteraction effect %s: %w", name, err)
		s.observe(ctx, "counteraction", name, 0, err, began)
		return nil, err
	}
	s.observe(ctx, "counteraction", name, len(velocities), nil, began)
	return velocities, nil
}

// GenerateDiagnosticReport returns an empty report.
func (s *GlucoseStore) GenerateDiagnosticReport(ctx context.Context) (string, error) {
	return "", nil
}

// PreferredUnit is the display unit, empty unless set with WithPreferredUnit.
func (s *GlucoseStore) PreferredUnit() models.Unit { return s.preferredUnit }

// SampleType is the HealthKit sample type the store serves.
func (s *GlucoseStore) SampleType() string { return constants.BloodGlucoseSampleType }

// ManagedDataInterval is nil: the mock never expires data.
func (s *GlucoseStore) ManagedDataInterval() *time.Duration { return nil }

// HealthKitStorageDelay is zero.
func (s *GlucoseStore) HealthKitStorageDelay() time.Duration { return 0 }

// AuthorizationRequired is always false.
func (s *GlucoseStore) AuthorizationRequired() bool { return false }

// SharingDenied is always false.
func (s *GlucoseStore) SharingDenied() bool { return false }

// observe reports one resolved operation to the logger, the decision trace
// and the metrics recorder.
func (s *GlucoseStore) observe(ctx context.Context, op, resourceName string, count int, err error, began time.Time) {
	backing := s.Backing().String()
	res := logging.Resolution{
		Scenario:  s.scenario.String(),
		Operation: op,
		Backing:   backing,
		Resource:  resourceName,
		Count:     count,
	}
	if err != nil {
		res.Error = err.Error()
		s.logger.Debug("glucose store operation failed", "scenario", res.Scenario, "operation", op, "error", err)
	} else {
		s.logger.Debug("glucose store resolved", "scenario", res.Scenario, "operation", op, "backing", backing, "count", count)
	}
	s.decisions.LogResolution(res)
	s.metrics.Observe(ctx, res.Scenario, backing, op, err == nil, time.Since(began))
}
