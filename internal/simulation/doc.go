// Package simulation runs multi-tick scenarios against a body and checks
// the dynamics that emerge from many ticks of transmission and drift.
//
// The runner exercises the real bundles, adaptation engine, pain model and
// snapshot store. No mocks. A Scenario says how many ticks to run, what to
// feed each bundle and when to release adrenaline; the Result holds every
// tick's output and, when Record is set, the state after each tick for
// property-based assertions.
//
// Usage:
//
//	func TestPracticeSharpens(t *testing.T) {
//	    r := simulation.NewTestRunner(t, armBundle)
//	    result := simulation.MustRun(t, r, simulation.Scenario{
//	        Name:   "practice",
//	        Ticks:  300,
//	        Drive:  simulation.Constant(200, 0),
//	        Record: true,
//	    })
//	    simulation.AssertSettles(t, result, "arm", 0, tract.Jitter, 8, 200)
//	}
package simulation
