// Package glucosemath implements the pure glucose effect computations the
// mock store applies to historical samples.
package glucosemath

import (
	"math"
	"time"

	"github.com/nvandessel/glucosim/internal/constants"
	"github.com/nvandessel/glucosim/internal/models"
)

// maxSampleGap is the widest gap between consecutive samples that still
// counts as a continuous sensor stream.
const maxSampleGap = 2 * constants.DefaultEffectDelta

// minMomentumSpan is the shortest span of samples a slope is fitted over.
const minMomentumSpan = 4*time.Minute + 12*time.Second

// FilterDateRange returns the samples with start <= StartDate < end.
// A nil end leaves the window open. Order is preserved.
func FilterDateRange(samples []models.GlucoseSample, start time.Time, end *time.Time) []models.GlucoseSample {
	filtered := make([]models.GlucoseSample, 0, len(samples))
	for _, s := range samples {
		if s.StartDate.Before(start) {
			continue
		}
		if end != nil && !s.StartDate.Before(*end) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

// LinearMomentumEffect fits a least-squares line through samples and projects
// it forward from the last sample in delta steps for duration.
//
// Samples must be chronological. No effect is produced unless there are at
// least constants.MinMomentumSamples samples spanning more than ~4 minutes
// from a single source, with no gaps wider than two deltas and no
// display-only (calibration) points.
func LinearMomentumEffect(samples []models.GlucoseSample, duration, delta time.Duration) []models.GlucoseEffect {
	if len(samples) < constants.MinMomentumSamples || delta <= 0 {
		return []models.GlucoseEffect{}
	}
	first, last := samples[0], samples[len(samples)-1]
	if last.StartDate.Sub(first.StartDate) <= minMomentumSpan {
		return []models.GlucoseEffect{}
	}
	if !isContinuous(samples) || isCalibrated(samples) || !hasSingleProvenance(samples) {
		return []models.GlucoseEffect{}
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		v, err := s.Quantity.In(models.UnitMilligramsPerDeciliter)
		if err != nil {
			return []models.GlucoseEffect{}
		}
		xs[i] = s.StartDate.Sub(first.StartDate).Seconds()
		ys[i] = v
	}
	slope := linearRegressionSlope(xs, ys)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return []models.GlucoseEffect{}
	}

	var effects []models.GlucoseEffect
	limit := last.StartDate.Add(duration)
	for date := last.StartDate.Truncate(delta); !date.After(limit); date = date.Add(delta) {
		elapsed := math.Max(0, date.Sub(last.StartDate).Seconds())
		effects = append(effects, models.GlucoseEffect{
			StartDate: date,
			Quantity:  models.MgdL(elapsed * slope),
		})
	}
	return effects
}

// linearRegressionSlope returns the least-squares slope of ys over xs.
func linearRegressionSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var num, den float64
	for i := range xs {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	return num / den
}

func isContinuous(samples []models.GlucoseSample) bool {
	for i := 1; i < len(samples); i++ {
		if samples[i].StartDate.Sub(samples[i-1].StartDate) > maxSampleGap {
			return false
		}
	}
	return true
}

func isCalibrated(samples []models.GlucoseSample) bool {
	for _, s := range samples {
		if s.IsDisplayOnly {
			return true
		}
	}
	return false
}

func hasSingleProvenance(samples []models.GlucoseSample) bool {
	for _, s := range samples[1:] {
		if s.ProvenanceIdentifier != samples[0].ProvenanceIdentifier {
			return false
		}
	}
	return true
}
