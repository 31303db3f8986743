// Package sim implements the sequential-modular flowsheet solver.
//
// # Reading Guide
//
// Start with these three files to understand the calculation kernel:
//   - flowsheet.go: Block/Stream/StreamState data model and the graph invariants
//   - solver.go: the per-run tables, the push executor, and fail-fast semantics
//   - units.go: one balance model per block type (flash, mixer, pump, ...)
//
// # Architecture
//
// The sim package owns orchestration; pure calculation libraries live in
// sub-packages:
//   - sim/thermo/: component properties, K-values, Rachford-Rice, density
//   - sim/costing/: equipment cost correlations and economic aggregation
//
// A run flows through Validate -> Solve -> ComputeKPIs/EvaluateSpecs/
// EvaluateConstraints -> SizeEquipment, orchestrated by Run in engine.go.
// All run-scoped state (stream table, block results, traversal markers)
// is created fresh per run and discarded at run end; blocks and streams
// themselves are immutable during solving.
package sim
