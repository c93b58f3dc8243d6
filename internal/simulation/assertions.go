package simulation

import (
	"errors"
	"math"
	"testing"

	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/nvandessel/glucosim/internal/models"
	"github.com/nvandessel/glucosim/internal/scenario"
)

// Trend is the overall direction of a momentum projection.
type Trend int

const (
	Steady Trend = iota
	Rising
	Falling
)

func (tr Trend) String() string {
	switch tr {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return "steady"
	}
}

// tolerance absorbs float noise in momentum comparisons (mg/dL).
const tolerance = 1e-9

// AssertBacking asserts the store resolved to the expected backing.
func AssertBacking(t *testing.T, result Result, want mockstore.Backing) {
	t.Helper()
	if result.Backing != want {
		t.Errorf("AssertBacking(%s): backing = %s, want %s", result.Name, result.Backing, want)
	}
}

// AssertLatest asserts the latest glucose value in mg/dL.
func AssertLatest(t *testing.T, result Result, want float64) {
	t.Helper()
	if result.LatestPanic != nil {
		t.Fatalf("AssertLatest(%s): panicked: %v", result.Name, result.LatestPanic)
	}
	if got := mgdl(t, result.Latest.Quantity); math.Abs(got-want) > tolerance {
		t.Errorf("AssertLatest(%s): latest = %v, want %v", result.Name, got, want)
	}
}

// AssertEffectCount asserts the number of momentum effects returned.
func AssertEffectCount(t *testing.T, result Result, want int) {
	t.Helper()
	assertMomentumOK(t, result)
	if len(result.Momentum) != want {
		t.Errorf("AssertEffectCount(%s): %d effects, want %d", result.Name, len(result.Momentum), want)
	}
}

// AssertMomentumTrend asserts the direction from the first to the last effect.
func AssertMomentumTrend(t *testing.T, result Result, want Trend) {
	t.Helper()
	assertMomentumOK(t, result)
	if len(result.Momentum) < 2 {
		t.Fatalf("AssertMomentumTrend(%s): need at least 2 effects, got %d", result.Name, len(result.Momentum))
	}
	first := mgdl(t, result.Momentum[0].Quantity)
	last := mgdl(t, result.Momentum[len(result.Momentum)-1].Quantity)

	got := Steady
	switch {
	case last-first > tolerance:
		got = Rising
	case first-last > tolerance:
		got = Falling
	}
	if got != want {
		t.Errorf("AssertMomentumTrend(%s): trend = %s (%.4f -> %.4f), want %s", result.Name, got, first, last, want)
	}
}

// AssertMomentumRejected asserts the data-backed path produced no projection.
func AssertMomentumRejected(t *testing.T, result Result) {
	t.Helper()
	assertMomentumOK(t, result)
	if result.Momentum == nil {
		t.Errorf("AssertMomentumRejected(%s): effects are nil, want empty", result.Name)
	}
	if len(result.Momentum) != 0 {
		t.Errorf("AssertMomentumRejected(%s): %d effects, want none", result.Name, len(result.Momentum))
	}
}

// AssertEffectsOrdered asserts momentum effects are strictly increasing in time.
func AssertEffectsOrdered(t *testing.T, result Result) {
	t.Helper()
	for i := 1; i < len(result.Momentum); i++ {
		if !result.Momentum[i].StartDate.After(result.Momentum[i-1].StartDate) {
			t.Errorf("AssertEffectsOrdered(%s): effect %d at %s not after %s", result.Name, i,
				result.Momentum[i].StartDate, result.Momentum[i-1].StartDate)
		}
	}
}

// AssertEmptyCounteraction asserts the counteraction query returned an empty,
// non-nil result.
func AssertEmptyCounteraction(t *testing.T, result Result) {
	t.Helper()
	if result.CounteractionPanic != nil || result.CounteractionErr != nil {
		t.Fatalf("AssertEmptyCounteraction(%s): panic=%v err=%v", result.Name, result.CounteractionPanic, result.CounteractionErr)
	}
	if result.Counteraction == nil || len(result.Counteraction) != 0 {
		t.Errorf("AssertEmptyCounteraction(%s): got %v, want empty", result.Name, result.Counteraction)
	}
}

// AssertLivePanic asserts that a canned-data query panicked with ErrLiveCapture.
func AssertLivePanic(t *testing.T, name string, panicErr error) {
	t.Helper()
	if panicErr == nil {
		t.Fatalf("AssertLivePanic(%s): no panic", name)
	}
	if !errors.Is(panicErr, scenario.ErrLiveCapture) {
		t.Errorf("AssertLivePanic(%s): panic = %v, want ErrLiveCapture", name, panicErr)
	}
}

func assertMomentumOK(t *testing.T, result Result) {
	t.Helper()
	if result.MomentumPanic != nil {
		t.Fatalf("%s: momentum panicked: %v", result.Name, result.MomentumPanic)
	}
	if result.MomentumErr != nil {
		t.Fatalf("%s: momentum error: %v", result.Name, result.MomentumErr)
	}
}

func mgdl(t *testing.T, q models.Quantity) float64 {
	t.Helper()
	v, err := q.In(models.UnitMilligramsPerDeciliter)
	if err != nil {
		t.Fatalf("convert %s: %v", q, err)
	}
	return v
}
