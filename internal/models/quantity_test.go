package models

import (
	"math"
	"testing"
	"time"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Unit
		wantErr bool
	}{
		{"mg/dL", "mg/dL", UnitMilligramsPerDeciliter, false},
		{"lowercase mg/dl", "mg/dl", UnitMilligramsPerDeciliter, false},
		{"padded", "  mg/dL ", UnitMilligramsPerDeciliter, false},
		{"mmol/L", "mmol/L", UnitMillimolesPerLiter, false},
		{"velocity", "mg/min·dL", UnitMilligramsPerDeciliterPerMinute, false},
		{"velocity ascii", "mg/min*dL", UnitMilligramsPerDeciliterPerMinute, false},
		{"SI velocity", "mmol/min·L", UnitMillimolesPerLiterPerMinute, false},
		{"unknown", "g/L", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseUnit(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuantityIn(t *testing.T) {
	q := NewQuantity(UnitMillimolesPerLiter, 5.5)
	got, err := q.In(UnitMilligramsPerDeciliter)
	if err != nil {
		t.Fatalf("In() error = %v", err)
	}
	if math.Abs(got-99.0858) > 1e-9 {
		t.Errorf("5.5 mmol/L in mg/dL = %v, want 99.0858", got)
	}

	back, err := MgdL(got).In(UnitMillimolesPerLiter)
	if err != nil {
		t.Fatalf("In() error = %v", err)
	}
	if math.Abs(back-5.5) > 1e-9 {
		t.Errorf("round trip = %v, want 5.5", back)
	}

	same, err := MgdL(123.4).In(UnitMilligramsPerDeciliter)
	if err != nil || same != 123.4 {
		t.Errorf("identity conversion = %v, %v", same, err)
	}
}

func TestQuantityIn_DimensionMismatch(t *testing.T) {
	_, err := MgdL(100).In(UnitMilligramsPerDeciliterPerMinute)
	if err == nil {
		t.Error("expected error converting concentration to velocity")
	}
}

func TestQuantityString(t *testing.T) {
	if got := MgdL(5).String(); got != "5 mg/dL" {
		t.Errorf("String() = %q, want %q", got, "5 mg/dL")
	}
}

func TestGlucoseEffectVelocityDuration(t *testing.T) {
	start := time.Date(2020, 8, 11, 20, 0, 0, 0, time.UTC)
	v := GlucoseEffectVelocity{StartDate: start, EndDate: start.Add(5 * time.Minute)}
	if v.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %v, want 5m", v.Duration())
	}
}
