package sim

import (
	"fmt"
	"math"

	"github.com/flowsheet-sim/flowsheet-sim/sim/thermo"
)

// kWToGJh converts a thermal rate from kW to GJ/h.
const kWToGJh = 3600.0 / 1e6

// ComputeKPIs derives the plant-level indicators from solved tables:
//
//	electricity        total shaft power, kW
//	steam              sum of positive duties, GJ/h
//	cooling            sum of |negative duties|, GJ/h
//	totalFlow          sum of all stream molar flows, kmol/h
//	CO2_captured       feed-side minus sink-side CO2 molar rate, kmol/h
//	captureEfficiency  CO2_captured over the feed-side CO2 rate
func ComputeKPIs(p *Project, sr *SolverResult) map[string]float64 {
	kpis := make(map[string]float64)

	for _, br := range sr.Blocks {
		kpis["electricity"] += br.PowerKW
		if br.DutyKW > 0 {
			kpis["steam"] += br.DutyKW * kWToGJh
		} else {
			kpis["cooling"] += -br.DutyKW * kWToGJh
		}
	}

	for _, state := range sr.Streams {
		kpis["totalFlow"] += state.MolarFlow
	}

	feedCO2, sinkCO2 := 0.0, 0.0
	for _, s := range p.Flowsheet.Streams {
		state, ok := sr.Streams[s.ID]
		if !ok {
			continue
		}
		rate := state.MolarFlow * state.Composition["CO2"]
		if from, ok := p.Flowsheet.Block(s.From); ok && from.Type == BlockFeed {
			feedCO2 += rate
		}
		if to, ok := p.Flowsheet.Block(s.To); ok && to.Type == BlockSink {
			sinkCO2 += rate
		}
	}
	kpis["CO2_captured"] = feedCO2 - sinkCO2
	if feedCO2 > 0 {
		kpis["captureEfficiency"] = (feedCO2 - sinkCO2) / feedCO2
	}

	return kpis
}

// specCap bounds the purity/recovery heuristics.
const specCap = 0.99

// columnSeverity sums stage counts and circulation (total inlet flow)
// over the staged-column blocks, the drivers of the separation
// heuristics below.
func columnSeverity(p *Project, sr *SolverResult) (stages int, circulation float64) {
	for _, b := range p.Flowsheet.Blocks {
		switch b.Type {
		case BlockAbsorber, BlockStripper, BlockColumn:
		default:
			continue
		}
		if v, ok := b.Param("stages"); ok {
			if n, isCount := v.AsInt(); isCount {
				stages += n
			}
		}
		for _, s := range p.Flowsheet.Inlets(b.ID) {
			if state, ok := sr.Streams[s.ID]; ok {
				circulation += state.MolarFlow
			}
		}
	}
	return stages, circulation
}

// EvaluateSpecs scores each design spec against the solved run. Capture
// reads the capture-efficiency KPI directly; purity and recovery use
// monotonic heuristics in total stage count and circulation rate, capped
// at 0.99 pending rigorous column models.
func EvaluateSpecs(p *Project, sr *SolverResult, kpis map[string]float64) []SpecResult {
	stages, circulation := columnSeverity(p, sr)

	results := make([]SpecResult, 0, len(p.Specs))
	for _, spec := range p.Specs {
		var achieved float64
		switch spec.Type {
		case SpecCapture:
			achieved = kpis["captureEfficiency"]
		case SpecPurity:
			achieved = math.Min(specCap, 0.50+0.02*float64(stages)+0.0005*circulation)
		case SpecRecovery:
			achieved = math.Min(specCap, 0.40+0.025*float64(stages)+0.0005*circulation)
		}
		results = append(results, SpecResult{
			SpecID:   spec.ID,
			Type:     string(spec.Type),
			Target:   spec.Target,
			Achieved: achieved,
			Pass:     achieved >= spec.Target,
		})
	}
	return results
}

// MetricResolver resolves a metric reference to a number. A false return
// means the reference does not resolve; the constraint evaluator skips
// such constraints silently.
type MetricResolver func(ref MetricRef) (float64, bool)

// NewResolver builds the default resolver over a project and its solved
// run, covering the three reference kinds: stream property, unit
// parameter, and run KPI.
func NewResolver(p *Project, sr *SolverResult, kpis map[string]float64) MetricResolver {
	return func(ref MetricRef) (float64, bool) {
		switch ref.Kind {
		case MetricStream:
			state, ok := sr.Streams[ref.StreamID]
			if !ok {
				return 0, false
			}
			switch ref.Property {
			case "temperature":
				return state.Temperature, true
			case "pressure":
				return state.Pressure, true
			case "flow":
				return state.MolarFlow, true
			case "vapor_fraction":
				switch state.Phase {
				case PhaseVapor:
					return 1, true
				case PhaseLiquid:
					return 0, true
				default:
					return 0.5, true
				}
			}
			return 0, false

		case MetricUnit:
			b, ok := p.Flowsheet.Block(ref.BlockID)
			if !ok {
				return 0, false
			}
			v, ok := b.Param(ref.Param)
			if !ok {
				return 0, false
			}
			return v.AsFloat(), true

		case MetricKPI:
			v, ok := kpis[ref.KPI]
			return v, ok
		}
		return 0, false
	}
}

// EvaluateConstraints checks every constraint against a resolver.
// Unresolvable references are skipped; breaches produce violations with
// a formatted message and the constraint's hard flag.
func EvaluateConstraints(constraints []Constraint, resolve MetricResolver) []Violation {
	var violations []Violation
	for _, c := range constraints {
		value, ok := resolve(c.Metric)
		if !ok {
			continue
		}
		var msg string
		switch c.Type {
		case ConstraintMax:
			if value > c.Limit {
				msg = fmt.Sprintf("constraint %s: value %.4g exceeds maximum %.4g", c.ID, value, c.Limit)
			}
		case ConstraintMin:
			if value < c.Limit {
				msg = fmt.Sprintf("constraint %s: value %.4g below minimum %.4g", c.ID, value, c.Limit)
			}
		case ConstraintRange:
			if value < c.Low || value > c.High {
				msg = fmt.Sprintf("constraint %s: value %.4g outside range [%.4g, %.4g]", c.ID, value, c.Low, c.High)
			}
		}
		if msg != "" {
			violations = append(violations, Violation{ConstraintID: c.ID, Value: value, Message: msg, Hard: c.Hard})
		}
	}
	return violations
}

// volumetricFlow converts a stream's molar flow to m3/h at its own
// conditions and phase.
func volumetricFlow(state StreamState) float64 {
	rho := thermo.MixtureDensity(state.Composition, state.Temperature, state.Pressure, string(state.Phase))
	if rho <= 0 {
		return 0
	}
	massFlow := state.MolarFlow * thermo.AverageMolecularWeight(state.Composition) // kg/h
	return massFlow / rho
}
