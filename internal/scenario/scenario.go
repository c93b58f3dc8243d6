// Package scenario defines the closed set of dosing test scenarios and the
// per-scenario constants the mock glucose store resolves against.
//
// Every per-scenario literal lives in one table so the momentum fixture,
// counteraction fixture, reference date and latest value of a scenario can
// never disagree.
//
// # Scenarios
//
//   - live_capture: real captured input; no canned effects or constants
//   - flat_and_stable
//   - high_and_stable
//   - high_and_rising_with_cob
//   - low_and_falling
//   - low_with_low_treatment
//   - high_and_falling
package scenario

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nvandessel/glucosim/internal/constants"
)

// ErrLiveCapture is the panic value (wrapped) raised when canned data is
// requested for the live capture scenario. It signals a misconfigured test.
var ErrLiveCapture = errors.New("live capture scenario has no canned data")

// Scenario selects which canned data and constants the mock store uses.
type Scenario int

const (
	LiveCapture Scenario = iota
	FlatAndStable
	HighAndStable
	HighAndRisingWithCOB
	LowAndFallingWithCOB
	LowWithLowTreatment
	HighAndFalling
)

// profile holds the literal constants for one scenario.
type profile struct {
	key           string
	description   string
	momentum      string
	counteraction string
	glucoseDate   string // local time, constants.LocalTimeLayout
	latestValue   float64
	canned        bool
}

var profiles = map[Scenario]profile{
	LiveCapture: {
		key:         "live_capture",
		description: "Captured live input; effects are computed from historic glucose",
	},
	FlatAndStable: {
		key:           "flat_and_stable",
		description:   "Glucose in range with no trend",
		momentum:      "flat_and_stable_momentum_effect",
		counteraction: "flat_and_stable_counteraction_effect",
		glucoseDate:   "2020-08-11T20:45:02",
		latestValue:   123.42849966275706,
		canned:        true,
	},
	HighAndStable: {
		key:           "high_and_stable",
		description:   "Glucose high with no trend",
		momentum:      "high_and_stable_momentum_effect",
		counteraction: "high_and_stable_counteraction_effect",
		glucoseDate:   "2020-08-12T12:39:22",
		latestValue:   200.0,
		canned:        true,
	},
	HighAndRisingWithCOB: {
		key:           "high_and_rising_with_cob",
		description:   "Glucose rising with carbs on board",
		momentum:      "high_and_rising_with_cob_momentum_effect",
		counteraction: "high_and_rising_with_cob_counteraction_effect",
		glucoseDate:   "2020-08-11T21:48:17",
		latestValue:   129.93174411197853,
		canned:        true,
	},
	LowAndFallingWithCOB: {
		key:           "low_and_falling",
		description:   "Glucose low and falling with carbs on board",
		momentum:      "low_and_falling_momentum_effect",
		counteraction: "low_and_falling_counteraction_effect",
		glucoseDate:   "2020-08-11T22:06:06",
		latestValue:   75.10768374646841,
		canned:        true,
	},
	LowWithLowTreatment: {
		key:           "low_with_low_treatment",
		description:   "Glucose low after a low treatment",
		momentum:      "low_with_low_treatment_momentum_effect",
		counteraction: "low_with_low_treatment_counteraction_effect",
		glucoseDate:   "2020-08-11T22:23:55",
		latestValue:   81.22399763523448,
		canned:        true,
	},
	HighAndFalling: {
		key:           "high_and_falling",
		description:   "Glucose high and falling",
		momentum:      "high_and_falling_momentum_effect",
		counteraction: "high_and_falling_counteraction_effect",
		glucoseDate:   "2020-08-11T22:59:45",
		latestValue:   200.0,
		canned:        true,
	},
}

func (s Scenario) profile() profile {
	p, ok := profiles[s]
	if !ok {
		panic(fmt.Sprintf("scenario: unknown scenario %d", int(s)))
	}
	return p
}

// canned returns the profile for scenarios that carry canned data and panics
// for live capture.
func (s Scenario) canned(what string) profile {
	p := s.profile()
	if !p.canned {
		panic(fmt.Errorf("%w: %s of %s is derived from input data", ErrLiveCapture, what, p.key))
	}
	return p
}

// RecoverLiveCapture turns a live capture panic into *retErr. It must be
// deferred directly. Any other panic is re-raised.
func RecoverLiveCapture(retErr *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok && errors.Is(err, ErrLiveCapture) {
		*retErr = err
		return
	}
	panic(r)
}

// String returns the scenario key.
func (s Scenario) String() string {
	p, ok := profiles[s]
	if !ok {
		return fmt.Sprintf("scenario(%d)", int(s))
	}
	return p.key
}

// Description returns a one-line human description.
func (s Scenario) Description() string {
	return s.profile().description
}

// IsLiveCapture reports whether the scenario uses captured input only.
func (s Scenario) IsLiveCapture() bool {
	return !s.profile().canned
}

// FixturePrefix is prepended to resource names owned by the scenario.
func (s Scenario) FixturePrefix() string {
	return s.profile().key + "_"
}

// HistoricGlucoseResource names the optional historical sample resource.
func (s Scenario) HistoricGlucoseResource() string {
	return s.FixturePrefix() + constants.HistoricGlucoseResource
}

// MomentumEffectResource names the canned momentum effect fixture.
// Panics for LiveCapture.
func (s Scenario) MomentumEffectResource() string {
	return s.canned("momentum effect").momentum
}

// CounteractionEffectResource names the canned counteraction effect fixture.
// Panics for LiveCapture.
func (s Scenario) CounteractionEffectResource() string {
	return s.canned("counteraction effect").counteraction
}

// GlucoseStartDate is the timestamp of the synthesized latest sample, read in
// local time. It doubles as the scenario's current date. Panics for LiveCapture.
func (s Scenario) GlucoseStartDate() time.Time {
	raw := s.canned("glucose start date").glucoseDate
	t, err := time.ParseInLocation(constants.LocalTimeLayout, raw, time.Local)
	if err != nil {
		panic(fmt.Sprintf("scenario: bad glucose date %q for %s: %v", raw, s, err))
	}
	return t
}

// LatestGlucoseValue is the synthesized latest glucose value in mg/dL.
// Panics for LiveCapture.
func (s Scenario) LatestGlucoseValue() float64 {
	return s.canned("latest glucose value").latestValue
}

// All returns every scenario in declaration order.
func All() []Scenario {
	all := make([]Scenario, 0, len(profiles))
	for s := range profiles {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// Keys returns every scenario key in declaration order.
func Keys() []string {
	all := All()
	keys := make([]string, len(all))
	for i, s := range all {
		keys[i] = s.String()
	}
	return keys
}

// Parse looks up a scenario by key. Hyphens are accepted in place of
// underscores and matching is case-insensitive.
func Parse(key string) (Scenario, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	for s, p := range profiles {
		if p.key == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown scenario %q (valid: %s)", key, strings.Join(Keys(), ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (s Scenario) MarshalText() ([]byte, error) {
	if _, ok := profiles[s]; !ok {
		return nil, fmt.Errorf("unknown scenario %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scenario) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
