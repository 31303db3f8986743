package sim

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsheet-sim/flowsheet-sim/sim/thermo"
)

// testProject wraps a flowsheet with the built-in component set.
func testProject(fs *Flowsheet) *Project {
	var comps []thermo.Component
	for _, id := range []string{"CO2", "N2", "H2O", "CH4"} {
		c, _ := thermo.Lookup(id)
		comps = append(comps, c)
	}
	return &Project{Name: "test", Components: comps, Flowsheet: fs}
}

func feedTo(streamID, to, toPort string, spec FeedSpec) *Stream {
	return &Stream{ID: streamID, From: "feed-" + streamID, FromPort: "out", To: to, ToPort: toPort, Feed: &spec}
}

func TestSolve_FeedInitialization_ConvertsUnitsAndDefaultsPhase(t *testing.T) {
	// GIVEN a feed specified in Celsius with an unrecognized phase tag
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{feedTo("s1", "sink", "in", FeedSpec{
			Temperature: 40, TempUnit: "C",
			Pressure: 101.325, PresUnit: "kPa",
			MolarFlow:   100,
			Composition: map[string]float64{"H2O": 1.0},
			Phase:       "supercritical",
		})},
	)

	// WHEN solved
	sr := Solve(testProject(fs))

	// THEN the stream state is normalized to K/bar with phase L
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)
	state := sr.Streams["s1"]
	assert.InDelta(t, 313.15, state.Temperature, 1e-9)
	assert.InDelta(t, 1.01325, state.Pressure, 1e-9)
	assert.Equal(t, PhaseLiquid, state.Phase)
	assert.Equal(t, 100.0, state.MolarFlow)
}

func TestSolve_Mixer_FlowsAddExactly(t *testing.T) {
	// GIVEN two feeds at different conditions into one mixer
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "feed-s2", Type: BlockFeed},
			{ID: "mix", Type: BlockMixer},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "mix", "in1", FeedSpec{
				Temperature: 300, TempUnit: "K", Pressure: 2, PresUnit: "bar",
				MolarFlow: 100, Composition: map[string]float64{"H2O": 1.0}, Phase: PhaseLiquid,
			}),
			feedTo("s2", "mix", "in2", FeedSpec{
				Temperature: 350, TempUnit: "K", Pressure: 1.5, PresUnit: "bar",
				MolarFlow: 50, Composition: map[string]float64{"CO2": 1.0}, Phase: PhaseLiquid,
			}),
			{ID: "s3", From: "mix", FromPort: "out", To: "sink", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)
	out := sr.Streams["s3"]

	// THEN outlet flow equals the exact sum, pressure the minimum, and
	// temperature/composition the flow-weighted averages
	assert.Equal(t, 150.0, out.MolarFlow)
	assert.Equal(t, 1.5, out.Pressure)
	assert.InDelta(t, (100*300.0+50*350.0)/150.0, out.Temperature, 1e-9)
	assert.InDelta(t, 100.0/150.0, out.Composition["H2O"], 1e-12)
	assert.InDelta(t, 50.0/150.0, out.Composition["CO2"], 1e-12)
}

func TestSolve_Splitter_EqualSharesConserveFlow(t *testing.T) {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "split", Type: BlockSplitter},
			{ID: "sink1", Type: BlockSink},
			{ID: "sink2", Type: BlockSink},
			{ID: "sink3", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "split", "in", FeedSpec{
				Temperature: 320, TempUnit: "K", Pressure: 3, PresUnit: "bar",
				MolarFlow: 99, Composition: map[string]float64{"H2O": 1.0}, Phase: PhaseLiquid,
			}),
			{ID: "o1", From: "split", FromPort: "out1", To: "sink1", ToPort: "in"},
			{ID: "o2", From: "split", FromPort: "out2", To: "sink2", ToPort: "in"},
			{ID: "o3", From: "split", FromPort: "out3", To: "sink3", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)

	total := 0.0
	for _, id := range []string{"o1", "o2", "o3"} {
		out := sr.Streams[id]
		assert.InDelta(t, 33.0, out.MolarFlow, 1e-9)
		assert.Equal(t, 320.0, out.Temperature)
		assert.Equal(t, 3.0, out.Pressure)
		total += out.MolarFlow
	}
	assert.InDelta(t, 99.0, total, 1e-9)
}

func TestSolve_Splitter_ExplicitFractions(t *testing.T) {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "split", Type: BlockSplitter, Params: map[string]ParamValue{
				"fraction_out1": Number(0.7),
				"fraction_out2": Number(0.3),
			}},
			{ID: "sink1", Type: BlockSink},
			{ID: "sink2", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "split", "in", FeedSpec{
				Temperature: 320, TempUnit: "K", Pressure: 3, PresUnit: "bar",
				MolarFlow: 100, Composition: map[string]float64{"H2O": 1.0}, Phase: PhaseLiquid,
			}),
			{ID: "o1", From: "split", FromPort: "out1", To: "sink1", ToPort: "in"},
			{ID: "o2", From: "split", FromPort: "out2", To: "sink2", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)
	assert.InDelta(t, 70.0, sr.Streams["o1"].MolarFlow, 1e-9)
	assert.InDelta(t, 30.0, sr.Streams["o2"].MolarFlow, 1e-9)
}

func TestSolve_Pump_RaisesPressureAndChargesPower(t *testing.T) {
	// GIVEN a pump with no pressure_rise parameter (default 5 bar)
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "pump", Type: BlockPump},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "pump", "in", FeedSpec{
				Temperature: 298.15, TempUnit: "K", Pressure: 1, PresUnit: "bar",
				MolarFlow: 100, Composition: map[string]float64{"H2O": 1.0}, Phase: PhaseLiquid,
			}),
			{ID: "s2", From: "pump", FromPort: "out", To: "sink", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)

	out := sr.Streams["s2"]
	assert.InDelta(t, 6.0, out.Pressure, 1e-9)
	assert.Equal(t, 298.15, out.Temperature)

	// Power = (F*MW/3600) * dP / (rho * 0.75 * 1000)
	rho := thermo.LiquidMixtureDensity(map[string]float64{"H2O": 1.0})
	wantKW := (100 * 18.015 / 3600.0) * 5e5 / (rho * 0.75 * 1000.0)
	assert.InDelta(t, wantKW, sr.Blocks["pump"].PowerKW, 1e-9)
}

func TestSolve_Heater_TargetTemperatureAndDuty(t *testing.T) {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "hx", Type: BlockHeater, Params: map[string]ParamValue{
				"outlet_temperature": Quantity(80, "C"),
			}},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "hx", "in", FeedSpec{
				Temperature: 313.15, TempUnit: "K", Pressure: 1, PresUnit: "bar",
				MolarFlow: 100, Composition: map[string]float64{"H2O": 1.0}, Phase: PhaseLiquid,
			}),
			{ID: "s2", From: "hx", FromPort: "out", To: "sink", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)
	assert.InDelta(t, 353.15, sr.Streams["s2"].Temperature, 1e-9)

	h2o, _ := thermo.Lookup("H2O")
	wantKW := 100 * (h2o.Enthalpy(353.15) - h2o.Enthalpy(313.15)) * 1000.0 / 3600.0
	assert.InDelta(t, wantKW, sr.Blocks["hx"].DutyKW, 1e-9)
	assert.Greater(t, sr.Blocks["hx"].DutyKW, 0.0, "heating duty must be positive")
}

func TestSolve_Cooler_DefaultsToMinusFifty(t *testing.T) {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "cool", Type: BlockCooler},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "cool", "in", FeedSpec{
				Temperature: 400, TempUnit: "K", Pressure: 1, PresUnit: "bar",
				MolarFlow: 10, Composition: map[string]float64{"N2": 1.0}, Phase: PhaseVapor,
			}),
			{ID: "s2", From: "cool", FromPort: "out", To: "sink", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)
	assert.InDelta(t, 350.0, sr.Streams["s2"].Temperature, 1e-9)
	assert.Less(t, sr.Blocks["cool"].DutyKW, 0.0, "cooling duty must be negative")
}

func TestSolve_Flash_InteriorVaporFraction(t *testing.T) {
	// GIVEN a CH4/H2O feed at conditions with an interior flash root
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "flash", Type: BlockFlash},
			{ID: "sink-v", Type: BlockSink},
			{ID: "sink-l", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "flash", "in", FeedSpec{
				Temperature: 300, TempUnit: "K", Pressure: 10, PresUnit: "bar",
				MolarFlow: 100, Composition: map[string]float64{"CH4": 0.5, "H2O": 0.5}, Phase: PhaseMixed,
			}),
			{ID: "vap", From: "flash", FromPort: "vapor_out", To: "sink-v", ToPort: "in"},
			{ID: "liq", From: "flash", FromPort: "liquid_out", To: "sink-l", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	require.True(t, sr.Converged, "solve failed: %s", sr.Err)

	vap, liq := sr.Streams["vap"], sr.Streams["liq"]
	// THEN both phases exist and total flow is conserved
	assert.Greater(t, vap.MolarFlow, 0.0)
	assert.Greater(t, liq.MolarFlow, 0.0)
	assert.InDelta(t, 100.0, vap.MolarFlow+liq.MolarFlow, 1e-9)
	assert.Equal(t, PhaseVapor, vap.Phase)
	assert.Equal(t, PhaseLiquid, liq.Phase)
	// Adiabatic isothermal flash inherits inlet conditions
	assert.Equal(t, 300.0, vap.Temperature)
	assert.Equal(t, 10.0, liq.Pressure)
	assert.Equal(t, 0.0, sr.Blocks["flash"].DutyKW)
	// Methane concentrates in the vapor
	assert.Greater(t, vap.Composition["CH4"], liq.Composition["CH4"])
}

func TestSolve_CyclicFlowsheet_RaisesCircularDependency(t *testing.T) {
	// GIVEN a flowsheet whose heater and cooler feed each other
	blocks := []*Block{
		{ID: "a", Type: BlockHeater},
		{ID: "b", Type: BlockCooler},
	}
	streams := []*Stream{
		{ID: "s1", From: "a", FromPort: "out", To: "b", ToPort: "in"},
		{ID: "s2", From: "b", FromPort: "out", To: "a", ToPort: "in"},
	}
	fs := NewFlowsheet(blocks, streams)

	// WHEN the push executor runs
	sr := Solve(testProject(fs))

	// THEN it fails with a circular-dependency message, while Sequence
	// on the same input terminates silently (see sequencer tests)
	assert.False(t, sr.Converged)
	if !strings.Contains(sr.Err, "circular") {
		t.Errorf("error message %q should mention a circular dependency", sr.Err)
	}
	assert.NotPanics(t, func() { Sequence(fs) })
}

func TestSolve_StarvedBlock_ReportsConnectivity(t *testing.T) {
	// GIVEN a heater that no feed can ever reach
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "sink", Type: BlockSink},
			{ID: "orphan", Type: BlockHeater},
			{ID: "sink2", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "sink", "in", FeedSpec{
				Temperature: 300, TempUnit: "K", Pressure: 1, PresUnit: "bar",
				MolarFlow: 10, Composition: map[string]float64{"N2": 1.0}, Phase: PhaseVapor,
			}),
			{ID: "s2", From: "orphan", FromPort: "out", To: "sink2", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	assert.False(t, sr.Converged)
	if !strings.Contains(sr.Err, "orphan") {
		t.Errorf("error %q should name the starved block", sr.Err)
	}
}

func TestSolve_UnknownComponent_FailsFast(t *testing.T) {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "flash", Type: BlockFlash},
			{ID: "sink-v", Type: BlockSink},
			{ID: "sink-l", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "flash", "in", FeedSpec{
				Temperature: 300, TempUnit: "K", Pressure: 10, PresUnit: "bar",
				MolarFlow: 100, Composition: map[string]float64{"XYZ": 1.0}, Phase: PhaseMixed,
			}),
			{ID: "vap", From: "flash", FromPort: "vapor_out", To: "sink-v", ToPort: "in"},
			{ID: "liq", From: "flash", FromPort: "liquid_out", To: "sink-l", ToPort: "in"},
		},
	)

	sr := Solve(testProject(fs))
	assert.False(t, sr.Converged)
	assert.Contains(t, sr.Err, "XYZ")
	assert.Equal(t, StatusError, sr.Blocks["flash"].Status)
}

func TestSolveSequential_MatchesPushExecutorOnAcyclicInput(t *testing.T) {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "hx", Type: BlockHeater, Params: map[string]ParamValue{
				"outlet_temperature": Quantity(360, "K"),
			}},
			{ID: "pump", Type: BlockPump},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "hx", "in", FeedSpec{
				Temperature: 300, TempUnit: "K", Pressure: 1, PresUnit: "bar",
				MolarFlow: 50, Composition: map[string]float64{"H2O": 1.0}, Phase: PhaseLiquid,
			}),
			{ID: "s2", From: "hx", FromPort: "out", To: "pump", ToPort: "in"},
			{ID: "s3", From: "pump", FromPort: "out", To: "sink", ToPort: "in"},
		},
	)
	p := testProject(fs)

	push := Solve(p)
	seq := SolveSequential(p)

	require.True(t, push.Converged, "push solve failed: %s", push.Err)
	require.True(t, seq.Converged, "sequential solve failed: %s", seq.Err)
	require.Equal(t, len(push.Streams), len(seq.Streams))
	for id, a := range push.Streams {
		b := seq.Streams[id]
		if math.Abs(a.Temperature-b.Temperature) > 1e-12 || math.Abs(a.MolarFlow-b.MolarFlow) > 1e-12 {
			t.Errorf("stream %s differs between executors: %+v vs %+v", id, a, b)
		}
	}
}

func TestSolve_RepeatedRuns_AreIdempotent(t *testing.T) {
	fs := NewFlowsheet(
		[]*Block{
			{ID: "feed-s1", Type: BlockFeed},
			{ID: "pump", Type: BlockPump},
			{ID: "sink", Type: BlockSink},
		},
		[]*Stream{
			feedTo("s1", "pump", "in", FeedSpec{
				Temperature: 300, TempUnit: "K", Pressure: 1, PresUnit: "bar",
				MolarFlow: 25, Composition: map[string]float64{"H2O": 1.0}, Phase: PhaseLiquid,
			}),
			{ID: "s2", From: "pump", FromPort: "out", To: "sink", ToPort: "in"},
		},
	)
	p := testProject(fs)

	first := Solve(p)
	second := Solve(p)
	require.True(t, first.Converged)
	require.True(t, second.Converged)
	assert.Equal(t, first.Streams, second.Streams)
	assert.Equal(t, first.Blocks, second.Blocks)
}
