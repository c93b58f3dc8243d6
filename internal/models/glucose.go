// Package models defines the glucose value types shared by the store,
// fixture decoders and effect math.
package models

import (
	"time"
)

// GlucoseTrend is the sensor-reported direction of change.
type GlucoseTrend string

const (
	TrendUpUpUp       GlucoseTrend = "upUpUp"
	TrendUpUp         GlucoseTrend = "upUp"
	TrendUp           GlucoseTrend = "up"
	TrendFlat         GlucoseTrend = "flat"
	TrendDown         GlucoseTrend = "down"
	TrendDownDown     GlucoseTrend = "downDown"
	TrendDownDownDown GlucoseTrend = "downDownDown"
)

// GlucoseSample is a stored, timestamped glucose reading.
type GlucoseSample struct {
	StartDate            time.Time     `json:"startDate"`
	Quantity             Quantity      `json:"quantity"`
	ProvenanceIdentifier string        `json:"provenanceIdentifier"`
	SyncIdentifier       string        `json:"syncIdentifier,omitempty"`
	SyncVersion          int           `json:"syncVersion,omitempty"`
	Trend                *GlucoseTrend `json:"trend,omitempty"`

	// IsDisplayOnly marks calibration points that must not feed effect math.
	IsDisplayOnly  bool `json:"isDisplayOnly"`
	WasUserEntered bool `json:"wasUserEntered"`
}

// NewGlucoseSample is a reading submitted for storage.
type NewGlucoseSample struct {
	Date           time.Time `json:"date"`
	Quantity       Quantity  `json:"quantity"`
	SyncIdentifier string    `json:"syncIdentifier"`
	IsDisplayOnly  bool      `json:"isDisplayOnly"`
	WasUserEntered bool      `json:"wasUserEntered"`
}

// GlucoseEffect is a projected change in glucose at a point in time.
type GlucoseEffect struct {
	StartDate time.Time `json:"startDate"`
	Quantity  Quantity  `json:"quantity"`
}

// GlucoseEffectVelocity is a rate of glucose change over an interval.
type GlucoseEffectVelocity struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Quantity  Quantity  `json:"quantity"`
}

// Duration returns the length of the velocity's interval.
func (v GlucoseEffectVelocity) Duration() time.Duration {
	return v.EndDate.Sub(v.StartDate)
}
