package sim

import (
	"github.com/flowsheet-sim/flowsheet-sim/sim/costing"
	"github.com/flowsheet-sim/flowsheet-sim/sim/thermo"
)

// SpecType names the design-spec heuristics the evaluator knows.
type SpecType string

const (
	SpecCapture  SpecType = "capture"
	SpecPurity   SpecType = "purity"
	SpecRecovery SpecType = "recovery"
)

// Spec is a named design target bound to a component or stream,
// evaluated once per run.
type Spec struct {
	ID          string
	Type        SpecType
	Target      float64
	ComponentID string
	StreamID    string
}

// SpecResult records achieved-vs-target for one spec.
type SpecResult struct {
	SpecID   string  `json:"spec_id"`
	Type     string  `json:"type"`
	Target   float64 `json:"target"`
	Achieved float64 `json:"achieved"`
	Pass     bool    `json:"pass"`
}

// MetricKind discriminates the three metric reference shapes.
type MetricKind string

const (
	MetricStream MetricKind = "stream" // stream property by stream id
	MetricUnit   MetricKind = "unit"   // block parameter by block id + name
	MetricKPI    MetricKind = "kpi"    // run KPI by name
)

// MetricRef points at a number somewhere in a project or solved run.
type MetricRef struct {
	Kind     MetricKind
	StreamID string
	Property string // "temperature" | "pressure" | "flow" | "vapor_fraction"
	BlockID  string
	Param    string
	KPI      string
}

// ConstraintType names the bound shapes.
type ConstraintType string

const (
	ConstraintMax   ConstraintType = "max"
	ConstraintMin   ConstraintType = "min"
	ConstraintRange ConstraintType = "range"
)

// Constraint is a bound on a metric reference, checked post-run.
type Constraint struct {
	ID     string
	Metric MetricRef
	Type   ConstraintType
	Limit  float64 // for max/min
	Low    float64 // for range
	High   float64 // for range
	Hard   bool
}

// Violation records a breached constraint.
type Violation struct {
	ConstraintID string  `json:"constraint_id"`
	Value        float64 `json:"value"`
	Message      string  `json:"message"`
	Hard         bool    `json:"hard"`
}

// Project bundles everything the engine consumes for one run. The
// project-management collaborator owns construction and persistence;
// the engine treats it as read-only.
type Project struct {
	Name        string
	Components  []thermo.Component
	Flowsheet   *Flowsheet
	Specs       []Spec
	Constraints []Constraint
	Economics   costing.ExtendedEconomicConfig
}
