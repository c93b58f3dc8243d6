package models

import (
	"fmt"
	"strings"

	"github.com/nvandessel/glucosim/internal/constants"
)

// Unit identifies the unit a glucose quantity is expressed in.
type Unit string

const (
	UnitMilligramsPerDeciliter          Unit = "mg/dL"      // glucose concentration
	UnitMillimolesPerLiter              Unit = "mmol/L"     // glucose concentration (SI)
	UnitMilligramsPerDeciliterPerMinute Unit = "mg/min·dL"  // glucose velocity
	UnitMillimolesPerLiterPerMinute     Unit = "mmol/min·L" // glucose velocity (SI)
)

// unitAliases maps accepted spellings onto canonical units.
var unitAliases = map[string]Unit{
	"mg/dl":      UnitMilligramsPerDeciliter,
	"mmol/l":     UnitMillimolesPerLiter,
	"mg/min·dl":  UnitMilligramsPerDeciliterPerMinute,
	"mg/min*dl":  UnitMilligramsPerDeciliterPerMinute,
	"mg/dl/min":  UnitMilligramsPerDeciliterPerMinute,
	"mmol/min·l": UnitMillimolesPerLiterPerMinute,
	"mmol/min*l": UnitMillimolesPerLiterPerMinute,
	"mmol/l/min": UnitMillimolesPerLiterPerMinute,
}

// ParseUnit maps a unit string from a fixture onto a known Unit.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseUnit(s string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := unitAliases[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown glucose unit %q", s)
}

// IsVelocity reports whether the unit is a rate (per minute) unit.
func (u Unit) IsVelocity() bool {
	return u == UnitMilligramsPerDeciliterPerMinute || u == UnitMillimolesPerLiterPerMinute
}

// Quantity is a numeric value paired with its unit.
type Quantity struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

// NewQuantity returns a quantity of value in unit.
func NewQuantity(unit Unit, value float64) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// MgdL returns a mg/dL concentration quantity.
func MgdL(value float64) Quantity {
	return NewQuantity(UnitMilligramsPerDeciliter, value)
}

// In converts q to the target unit. Conversion is only defined between
// units of the same dimension (concentration or velocity).
func (q Quantity) In(target Unit) (float64, error) {
	if q.Unit == target {
		return q.Value, nil
	}
	if q.Unit.IsVelocity() != target.IsVelocity() {
		return 0, fmt.Errorf("cannot convert %s to %s", q.Unit, target)
	}
	mgdl := q.Value
	switch q.Unit {
	case UnitMillimolesPerLiter, UnitMillimolesPerLiterPerMinute:
		mgdl = q.Value * constants.MillimolesPerLiterToMilligramsPerDeciliter
	case UnitMilligramsPerDeciliter, UnitMilligramsPerDeciliterPerMinute:
	default:
		return 0, fmt.Errorf("cannot convert from unknown unit %q", q.Unit)
	}
	switch target {
	case UnitMilligramsPerDeciliter, UnitMilligramsPerDeciliterPerMinute:
		return mgdl, nil
	case UnitMillimolesPerLiter, UnitMillimolesPerLiterPerMinute:
		return mgdl / constants.MillimolesPerLiterToMilligramsPerDeciliter, nil
	default:
		return 0, fmt.Errorf("cannot convert to unknown unit %q", target)
	}
}

// String renders the quantity as "<value> <unit>".
func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}
