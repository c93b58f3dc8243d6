package scenario

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// expectLivePanic runs fn and fails unless it panics with ErrLiveCapture.
func expectLivePanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("%s: expected panic for live capture", name)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrLiveCapture) {
			t.Fatalf("%s: panic value = %v, want ErrLiveCapture", name, r)
		}
	}()
	fn()
}

func TestCannedConstants(t *testing.T) {
	tests := []struct {
		scenario Scenario
		date     string
		value    float64
		momentum string
		counter  string
	}{
		{FlatAndStable, "2020-08-11T20:45:02", 123.42849966275706, "flat_and_stable_momentum_effect", "flat_and_stable_counteraction_effect"},
		{HighAndStable, "2020-08-12T12:39:22", 200.0, "high_and_stable_momentum_effect", "high_and_stable_counteraction_effect"},
		{HighAndRisingWithCOB, "2020-08-11T21:48:17", 129.93174411197853, "high_and_rising_with_cob_momentum_effect", "high_and_rising_with_cob_counteraction_effect"},
		{LowAndFallingWithCOB, "2020-08-11T22:06:06", 75.10768374646841, "low_and_falling_momentum_effect", "low_and_falling_counteraction_effect"},
		{LowWithLowTreatment, "2020-08-11T22:23:55", 81.22399763523448, "low_with_low_treatment_momentum_effect", "low_with_low_treatment_counteraction_effect"},
		{HighAndFalling, "2020-08-11T22:59:45", 200.0, "high_and_falling_momentum_effect", "high_and_falling_counteraction_effect"},
	}

	for _, tt := range tests {
		t.Run(tt.scenario.String(), func(t *testing.T) {
			want, err := time.ParseInLocation("2006-01-02T15:04:05", tt.date, time.Local)
			if err != nil {
				t.Fatal(err)
			}
			if got := tt.scenario.GlucoseStartDate(); !got.Equal(want) {
				t.Errorf("GlucoseStartDate() = %v, want %v", got, want)
			}
			if got := tt.scenario.LatestGlucoseValue(); got != tt.value {
				t.Errorf("LatestGlucoseValue() = %v, want %v", got, tt.value)
			}
			if got := tt.scenario.MomentumEffectResource(); got != tt.momentum {
				t.Errorf("MomentumEffectResource() = %q, want %q", got, tt.momentum)
			}
			if got := tt.scenario.CounteractionEffectResource(); got != tt.counter {
				t.Errorf("CounteractionEffectResource() = %q, want %q", got, tt.counter)
			}
			if tt.scenario.IsLiveCapture() {
				t.Error("IsLiveCapture() = true for canned scenario")
			}
		})
	}
}

func TestLiveCapturePanics(t *testing.T) {
	expectLivePanic(t, "MomentumEffectResource", func() { _ = LiveCapture.MomentumEffectResource() })
	expectLivePanic(t, "CounteractionEffectResource", func() { _ = LiveCapture.CounteractionEffectResource() })
	expectLivePanic(t, "GlucoseStartDate", func() { _ = LiveCapture.GlucoseStartDate() })
	expectLivePanic(t, "LatestGlucoseValue", func() { _ = LiveCapture.LatestGlucoseValue() })
}

func TestLiveCaptureHasHistoricResource(t *testing.T) {
	if !LiveCapture.IsLiveCapture() {
		t.Fatal("IsLiveCapture() = false")
	}
	if got := LiveCapture.HistoricGlucoseResource(); got != "live_capture_historic_glucose" {
		t.Errorf("HistoricGlucoseResource() = %q", got)
	}
}

func TestHistoricGlucoseResource(t *testing.T) {
	if got := FlatAndStable.HistoricGlucoseResource(); got != "flat_and_stable_historic_glucose" {
		t.Errorf("HistoricGlucoseResource() = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Scenario
		wantErr bool
	}{
		{"flat_and_stable", FlatAndStable, false},
		{"FLAT-AND-STABLE", FlatAndStable, false},
		{" live_capture ", LiveCapture, false},
		{"low_and_falling", LowAndFallingWithCOB, false},
		{"nope", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_ErrorListsKeys(t *testing.T) {
	_, err := Parse("bogus")
	if err == nil || !strings.Contains(err.Error(), "high_and_falling") {
		t.Errorf("error should list valid keys, got %v", err)
	}
}

func TestAllOrder(t *testing.T) {
	all := All()
	if len(all) != 7 {
		t.Fatalf("All() returned %d scenarios, want 7", len(all))
	}
	if all[0] != LiveCapture || all[len(all)-1] != HighAndFalling {
		t.Errorf("All() order = %v", all)
	}
	keys := Keys()
	if keys[1] != "flat_and_stable" {
		t.Errorf("Keys()[1] = %q", keys[1])
	}
}

func TestTextRoundTrip(t *testing.T) {
	text, err := HighAndRisingWithCOB.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var s Scenario
	if err := s.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if s != HighAndRisingWithCOB {
		t.Errorf("round trip = %v", s)
	}
	if _, err := Scenario(99).MarshalText(); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func recoverInto(fn func()) (err error) {
	defer RecoverLiveCapture(&err)
	fn()
	return nil
}

func TestRecoverLiveCapture(t *testing.T) {
	err := recoverInto(func() { LiveCapture.LatestGlucoseValue() })
	if !errors.Is(err, ErrLiveCapture) {
		t.Fatalf("error = %v, want ErrLiveCapture", err)
	}

	if err := recoverInto(func() {}); err != nil {
		t.Errorf("error without panic = %v", err)
	}
}

func TestRecoverLiveCapture_RepanicsOthers(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"runtime error", func() {
			var s []int
			_ = s[len(s)+1]
		}},
		{"plain error", func() { panic(errors.New("boom")) }},
		{"string", func() { panic("boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected the panic to propagate")
				}
				if err, ok := r.(error); ok && errors.Is(err, ErrLiveCapture) {
					t.Errorf("panic value %v must not be a live capture error", r)
				}
			}()
			err := recoverInto(tt.fn)
			t.Errorf("returned %v instead of panicking", err)
		})
	}
}
