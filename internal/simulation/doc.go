// Package simulation provides a test harness for exercising the mock glucose
// store the way a dosing simulation consumes it.
//
// The harness runs the real mockstore, fixture decoders and momentum math
// against a real SQLite fixture database; nothing is stubbed. Each Runner
// gets an isolated database via t.TempDir(), seeded with the embedded fixture
// bundle, and a sandboxed HOME to prevent touching user data. A Case can add
// historical glucose or override fixtures before the store is built.
//
// Usage:
//
//	func TestRisingHistory(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Case{
//	        Name:     "rising",
//	        Scenario: scenario.LiveCapture,
//	        History:  simulation.Ramp(6, 120, 4),
//	    })
//	    simulation.AssertBacking(t, result, mockstore.DataBacked)
//	    simulation.AssertMomentumTrend(t, result, simulation.Rising)
//	}
package simulation
