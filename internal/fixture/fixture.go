// Package fixture decodes the JSON payloads that stand in for computed
// glucose effects and recorded glucose history.
//
// Effect fixtures carry ISO-8601 dates without a zone; they are read in
// local time. Historical glucose carries full RFC 3339 timestamps.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nvandessel/glucosim/internal/constants"
	"github.com/nvandessel/glucosim/internal/models"
)

// ErrMalformed is returned when a fixture payload cannot be decoded.
var ErrMalformed = errors.New("fixture: malformed payload")

// momentumRecord is one entry of a momentum effect fixture.
type momentumRecord struct {
	Date   *string  `json:"date"`
	Unit   *string  `json:"unit"`
	Amount *float64 `json:"amount"`
}

// counteractionRecord is one entry of a counteraction effect fixture.
type counteractionRecord struct {
	StartDate *string  `json:"startDate"`
	EndDate   *string  `json:"endDate"`
	Unit      *string  `json:"unit"`
	Value     *float64 `json:"value"`
}

// historicRecord is one entry of a historical glucose fixture.
// Quantity is in mg/dL.
type historicRecord struct {
	StartDate            time.Time            `json:"startDate"`
	Quantity             *float64             `json:"quantity"`
	ProvenanceIdentifier string               `json:"provenanceIdentifier"`
	SyncIdentifier       string               `json:"syncIdentifier"`
	SyncVersion          int                  `json:"syncVersion"`
	Trend                *models.GlucoseTrend `json:"trend"`
	IsDisplayOnly        bool                 `json:"isDisplayOnly"`
	WasUserEntered       bool                 `json:"wasUserEntered"`
}

// ParseLocalDate parses an ISO-8601 date without zone in local time.
func ParseLocalDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.LocalTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q: %v", ErrMalformed, s, err)
	}
	return t, nil
}

// FormatLocalDate is the inverse of ParseLocalDate.
func FormatLocalDate(t time.Time) string {
	return t.In(time.Local).Format(constants.LocalTimeLayout)
}

// DecodeMomentumEffects decodes a momentum effect fixture.
func DecodeMomentumEffects(data []byte) ([]models.GlucoseEffect, error) {
	var records []momentumRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	effects := make([]models.GlucoseEffect, 0, len(records))
	for i, r := range records {
		if r.Date == nil || r.Unit == nil || r.Amount == nil {
			return nil, fmt.Errorf("%w: momentum entry %d missing date, unit or amount", ErrMalformed, i)
		}
		date, err := ParseLocalDate(*r.Date)
		if err != nil {
			return nil, fmt.Errorf("momentum entry %d: %w", i, err)
		}
		unit, err := models.ParseUnit(*r.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: momentum entry %d: %v", ErrMalformed, i, err)
		}
		effects = append(effects, models.GlucoseEffect{
			StartDate: date,
			Quantity:  models.NewQuantity(unit, *r.Amount),
		})
	}
	return effects, nil
}

// DecodeCounteractionEffects decodes a counteraction effect fixture.
func DecodeCounteractionEffects(data []byte) ([]models.GlucoseEffectVelocity, error) {
	var records []counteractionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	velocities := make([]models.GlucoseEffectVelocity, 0, len(records))
	for i, r := range records {
		if r.StartDate == nil || r.EndDate == nil || r.Unit == nil || r.Value == nil {
			return nil, fmt.Errorf("%w: counteraction entry %d missing startDate, endDate, unit or value", ErrMalformed, i)
		}
		start, err := ParseLocalDate(*r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("counteraction entry %d: %w", i, err)
		}
		end, err := ParseLocalDate(*r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("counteraction entry %d: %w", i, err)
		}
		unit, err := models.ParseUnit(*r.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: counteraction entry %d: %v", ErrMalformed, i, err)
		}
		velocities = append(velocities, models.GlucoseEffectVelocity{
			StartDate: start,
			EndDate:   end,
			Quantity:  models.NewQuantity(unit, *r.Value),
		})
	}
	return velocities, nil
}

// DecodeHistoricGlucose decodes a historical glucose fixture and returns the
// samples in chronological order.
func DecodeHistoricGlucose(data []byte) ([]models.GlucoseSample, error) {
	var records []historicRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	samples := make([]models.GlucoseSample, 0, len(records))
	for i, r := range records {
		if r.StartDate.IsZero() || r.Quantity == nil {
			return nil, fmt.Errorf("%w: glucose entry %d missing startDate or quantity", ErrMalformed, i)
		}
		samples = append(samples, models.GlucoseSample{
			StartDate:            r.StartDate,
			Quantity:             models.MgdL(*r.Quantity),
			ProvenanceIdentifier: r.ProvenanceIdentifier,
			SyncIdentifier:       r.SyncIdentifier,
			SyncVersion:          r.SyncVersion,
			Trend:                r.Trend,
			IsDisplayOnly:        r.IsDisplayOnly,
			WasUserEntered:       r.WasUserEntered,
		})
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].StartDate.Before(samples[j].StartDate)
	})
	return samples, nil
}

// EncodeMomentumEffects renders effects in the momentum fixture format.
func EncodeMomentumEffects(effects []models.GlucoseEffect) ([]byte, error) {
	records := make([]momentumRecord, len(effects))
	for i, e := range effects {
		date := FormatLocalDate(e.StartDate)
		unit := string(e.Quantity.Unit)
		amount := e.Quantity.Value
		records[i] = momentumRecord{Date: &date, Unit: &unit, Amount: &amount}
	}
	return json.Marshal(records)
}

// EncodeCounteractionEffects renders velocities in the counteraction fixture format.
func EncodeCounteractionEffects(velocities []models.GlucoseEffectVelocity) ([]byte, error) {
	records := make([]counteractionRecord, len(velocities))
	for i, v := range velocities {
		start, end := FormatLocalDate(v.StartDate), FormatLocalDate(v.EndDate)
		unit := string(v.Quantity.Unit)
		value := v.Quantity.Value
		records[i] = counteractionRecord{StartDate: &start, EndDate: &end, Unit: &unit, Value: &value}
	}
	return json.Marshal(records)
}

// EncodeHistoricGlucose renders samples in the historical glucose format.
// Quantities are converted to mg/dL.
func EncodeHistoricGlucose(samples []models.GlucoseSample) ([]byte, error) {
	records := make([]historicRecord, len(samples))
	for i, s := range samples {
		mgdl, err := s.Quantity.In(models.UnitMilligramsPerDeciliter)
		if err != nil {
			return nil, fmt.Errorf("glucose entry %d: %w", i, err)
		}
		records[i] = historicRecord{
			StartDate:            s.StartDate,
			Quantity:             &mgdl,
			ProvenanceIdentifier: s.ProvenanceIdentifier,
			SyncIdentifier:       s.SyncIdentifier,
			SyncVersion:          s.SyncVersion,
			Trend:                s.Trend,
			IsDisplayOnly:        s.IsDisplayOnly,
			WasUserEntered:       s.WasUserEntered,
		}
	}
	return json.Marshal(records)
}
