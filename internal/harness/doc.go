// Package harness runs Taylor analysis scenarios as executable checks.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: sin_at_zero
//	description: "Maclaurin series of sin"
//	expression: sin(x)
//	center: 0
//	x: 0.5
//	order: 5
//	tolerance: 1e-12
//	expect:
//	  coefficients: [0, 1, 0, -0.16666666666666666, 0, 0.008333333333333333]
//	  exact_defined: true
//	assertions:
//	  - type: convergence_monotone
//	  - type: step_contains
//	    stage: polynomial
//	    text: "x^5"
//
// expect.error names the code a failing scenario must produce
// (PARSE_ERROR, DOMAIN_ERROR, ORDER_LIMIT, TREE_TOO_LARGE, ...).
//
// # Assertion Types
//
//   - coefficient: c_k equals value within the tolerance
//   - convergence_monotone: absolute errors of P_0..P_n never increase
//   - step_contains: some step of the given stage contains text
//   - value_error_below: the absolute value error is below value
//
// # Determinism
//
// Every successful analysis is written to a fresh in-memory store with
// sequential run IDs and a deterministic clock, then read back and compared,
// so scenarios also exercise persistence.
package harness
