// Package harness runs decision scripts as conformance scenarios for the
// choice engine.
//
// A scenario replaces the grammar with a short script of decisions and runs
// it under one of the three modes. The emitted signatures are recorded in an
// in-memory run log and checked against the scenario's assertions, and can
// be compared with a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	mode: exhaustive
//	seed: 1
//	max_depth: 4
//	script:
//	  - upto: 2
//	  - bool: 50
//	  - upto: 3
//	    exclude: [1]
//	    modes: [dfs]
//	  - guard: 2
//	assertions:
//	  - type: count
//	    count: 8
//	  - type: contains
//	    signature: "1_1_2"
//	  - type: never
//	    position: 2
//	    value: 1
//
// # Script Steps
//
//   - upto: n draws a value in [0, n)
//   - bool: p draws a boolean that is true with probability p percent
//   - guard: n asks the depth guard whether n more decisions fit
//
// upto and bool steps may carry an exclude list, optionally scoped to the
// provider kinds named in modes (default, dfs, delta).
//
// # Assertion Types
//
//   - count: exactly N programs were emitted
//   - unique: no signature was emitted twice
//   - contains: the given signature was emitted
//   - never: no emitted signature holds value at position
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store under a fixed run ID,
// and every mode is seeded, so the same scenario always produces the same
// signatures. RunWithGolden compares them with testdata/golden.
package harness
