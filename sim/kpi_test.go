package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// absorberScenario is the reference case: 100 kmol/h flue gas at 313.15 K
// and 1 bar, 12% CO2, through a 20-stage absorber to a treated-gas sink.
func absorberScenario() *Project {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "abs", Type: BlockAbsorber, Params: map[string]ParamValue{"stages": Count(20)}},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "abs", "gas_in", FeedSpec{
				Temperature: 313.15, TempUnit: "K", Pressure: 1, PresUnit: "bar",
				MolarFlow:   100,
				Composition: map[string]float64{"CO2": 0.12, "N2": 0.88},
				Phase:       PhaseVapor,
			}),
			{ID: "s2", From: "abs", FromPort: "gas_out", To: "sink", ToPort: "in"},
		},
	)
	p := testProject(fs)
	p.Constraints = []Constraint{
		{ID: "steam-cap", Metric: MetricRef{Kind: MetricKPI, KPI: "steam"}, Type: ConstraintMax, Limit: 1000, Hard: true},
		{ID: "electricity-cap", Metric: MetricRef{Kind: MetricKPI, KPI: "electricity"}, Type: ConstraintMax, Limit: 500, Hard: true},
	}
	return p
}

func TestAbsorberScenario_ConstraintsYieldZeroViolations(t *testing.T) {
	// GIVEN the reference absorber flowsheet
	p := absorberScenario()

	// WHEN solved and evaluated
	sr := Solve(p)
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)
	kpis := ComputeKPIs(p, sr)
	violations := EvaluateConstraints(p.Constraints, NewResolver(p, sr, kpis))

	// THEN the steam and electricity caps hold
	assert.Empty(t, violations)
	assert.LessOrEqual(t, kpis["steam"], 1000.0)
	assert.LessOrEqual(t, kpis["electricity"], 500.0)
}

func TestComputeKPIs_UtilityAndFlowTotals(t *testing.T) {
	p := absorberScenario()
	sr := Solve(p)
	require.True(t, sr.Converged)

	kpis := ComputeKPIs(p, sr)
	// Pass-through absorber: no duties, no power; two solved streams.
	assert.Equal(t, 0.0, kpis["electricity"])
	assert.Equal(t, 0.0, kpis["steam"])
	assert.Equal(t, 0.0, kpis["cooling"])
	assert.InDelta(t, 200.0, kpis["totalFlow"], 1e-9)
}

func TestComputeKPIs_SteamAndCoolingScaleToGJPerHour(t *testing.T) {
	// GIVEN one heating and one cooling block result
	p := absorberScenario()
	sr := &SolverResult{
		Converged: true,
		Streams:   map[string]StreamState{},
		Blocks: map[string]BlockResult{
			"hx":   {BlockID: "hx", DutyKW: 1000},   // 1000 kW -> 3.6 GJ/h
			"cool": {BlockID: "cool", DutyKW: -500}, // 500 kW -> 1.8 GJ/h
			"pump": {BlockID: "pump", PowerKW: 12.5},
		},
	}

	kpis := ComputeKPIs(p, sr)
	assert.InDelta(t, 3.6, kpis["steam"], 1e-12)
	assert.InDelta(t, 1.8, kpis["cooling"], 1e-12)
	assert.InDelta(t, 12.5, kpis["electricity"], 1e-12)
}

func TestComputeKPIs_CaptureEfficiency(t *testing.T) {
	// GIVEN a synthetic run where the sink sees 25% of the fed CO2
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "abs", Type: BlockAbsorber},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			{ID: "s1", From: "feed-s1", FromPort: "out", To: "abs", ToPort: "in"},
			{ID: "s2", From: "abs", FromPort: "out", To: "sink", ToPort: "in"},
		},
	)
	p := testProject(fs)
	sr := &SolverResult{
		Converged: true,
		Streams: map[string]StreamState{
			"s1": {MolarFlow: 100, Composition: map[string]float64{"CO2": 0.12, "N2": 0.88}},
			"s2": {MolarFlow: 91, Composition: map[string]float64{"CO2": 3.0 / 91.0, "N2": 88.0 / 91.0}},
		},
		Blocks: map[string]BlockResult{},
	}

	kpis := ComputeKPIs(p, sr)
	assert.InDelta(t, 9.0, kpis["CO2_captured"], 1e-9)
	assert.InDelta(t, 0.75, kpis["captureEfficiency"], 1e-9)
}

func TestEvaluateSpecs_CaptureReadsKPIDirectly(t *testing.T) {
	p := absorberScenario()
	p.Specs = []Spec{{ID: "cap", Type: SpecCapture, Target: 0.5}}
	sr := Solve(p)
	require.True(t, sr.Converged)

	kpis := map[string]float64{"captureEfficiency": 0.8}
	results := EvaluateSpecs(p, sr, kpis)
	require.Len(t, results, 1)
	assert.Equal(t, 0.8, results[0].Achieved)
	assert.True(t, results[0].Pass)
}

func TestEvaluateSpecs_PurityAndRecoveryAreCappedAndMonotonic(t *testing.T) {
	p := absorberScenario()
	p.Specs = []Spec{
		{ID: "purity", Type: SpecPurity, Target: 0.95},
		{ID: "recovery", Type: SpecRecovery, Target: 0.95},
	}
	sr := Solve(p)
	require.True(t, sr.Converged)
	kpis := ComputeKPIs(p, sr)

	few := EvaluateSpecs(p, sr, kpis)

	// Doubling the stage count must not decrease any achieved value.
	abs, _ := p.Flowsheet.Block("abs")
	abs.Params["stages"] = Count(40)
	many := EvaluateSpecs(p, sr, kpis)

	for i := range few {
		assert.LessOrEqual(t, few[i].Achieved, many[i].Achieved,
			"spec %s should be monotonic in stages", few[i].SpecID)
		assert.LessOrEqual(t, many[i].Achieved, 0.99, "achieved values are capped at 0.99")
	}
	abs.Params["stages"] = Count(20)
}

func TestEvaluateConstraints_MaxMinRange(t *testing.T) {
	resolve := func(ref MetricRef) (float64, bool) {
		return map[string]float64{"a": 10, "b": 2, "c": 7}[ref.KPI], true
	}
	constraints := []Constraint{
		{ID: "max-breach", Metric: MetricRef{Kind: MetricKPI, KPI: "a"}, Type: ConstraintMax, Limit: 5, Hard: true},
		{ID: "min-breach", Metric: MetricRef{Kind: MetricKPI, KPI: "b"}, Type: ConstraintMin, Limit: 5},
		{ID: "range-ok", Metric: MetricRef{Kind: MetricKPI, KPI: "c"}, Type: ConstraintRange, Low: 5, High: 10},
		{ID: "range-breach", Metric: MetricRef{Kind: MetricKPI, KPI: "a"}, Type: ConstraintRange, Low: 0, High: 9},
	}

	violations := EvaluateConstraints(constraints, resolve)
	require.Len(t, violations, 3)
	assert.Equal(t, "max-breach", violations[0].ConstraintID)
	assert.True(t, violations[0].Hard)
	assert.Equal(t, 10.0, violations[0].Value)
	assert.False(t, violations[1].Hard)
}

func TestEvaluateConstraints_UnresolvedReferenceIsSkipped(t *testing.T) {
	resolve := func(ref MetricRef) (float64, bool) { return 0, false }
	constraints := []Constraint{
		{ID: "ghost", Metric: MetricRef{Kind: MetricKPI, KPI: "nope"}, Type: ConstraintMax, Limit: 0},
	}
	assert.Empty(t, EvaluateConstraints(constraints, resolve))
}

func TestNewResolver_ThreeReferenceKinds(t *testing.T) {
	p := absorberScenario()
	sr := Solve(p)
	require.True(t, sr.Converged)
	kpis := map[string]float64{"steam": 1.5}
	resolve := NewResolver(p, sr, kpis)

	// Stream property
	v, ok := resolve(MetricRef{Kind: MetricStream, StreamID: "s1", Property: "flow"})
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	v, ok = resolve(MetricRef{Kind: MetricStream, StreamID: "s1", Property: "vapor_fraction"})
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	// Unit parameter (count shape)
	v, ok = resolve(MetricRef{Kind: MetricUnit, BlockID: "abs", Param: "stages"})
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	// Run KPI
	v, ok = resolve(MetricRef{Kind: MetricKPI, KPI: "steam"})
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	// Unresolvable references report false
	_, ok = resolve(MetricRef{Kind: MetricStream, StreamID: "missing", Property: "flow"})
	assert.False(t, ok)
	_, ok = resolve(MetricRef{Kind: MetricUnit, BlockID: "abs", Param: "missing"})
	assert.False(t, ok)
	_, ok = resolve(MetricRef{Kind: MetricKPI, KPI: "missing"})
	assert.False(t, ok)
}
