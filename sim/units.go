package sim

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/flowsheet-sim/flowsheet-sim/sim/thermo"
)

// Adiabatic-compression constants for the compressor model.
const (
	pumpEfficiency       = 0.75
	compressorEfficiency = 0.75
	heatCapacityRatio    = 1.3  // gamma, fixed for utility-grade estimates
	defaultPressureRise  = 5.0  // bar, pump default
	defaultTempChange    = 50.0 // K, heater/cooler default
)

// outletResult is one solved outlet keyed by stream id.
type outletResult map[string]StreamState

// feedState converts a stream's design spec into its initial solved state.
// Units are normalized to K/bar; an unrecognized phase defaults to liquid.
func feedState(spec *FeedSpec) StreamState {
	phase := spec.Phase
	switch phase {
	case PhaseVapor, PhaseLiquid, PhaseMixed:
	default:
		phase = PhaseLiquid
	}
	comp := make(map[string]float64, len(spec.Composition))
	for id, frac := range spec.Composition {
		comp[id] = frac
	}
	T := ToKelvin(spec.Temperature, spec.TempUnit)
	return StreamState{
		Temperature: T,
		Pressure:    ToBar(spec.Pressure, spec.PresUnit),
		MolarFlow:   spec.MolarFlow,
		Composition: comp,
		Phase:       phase,
		Enthalpy:    thermo.MixtureEnthalpy(comp, T),
	}
}

// presentComponents returns the ids with nonzero feed fraction in
// deterministic (sorted) order.
func presentComponents(comp map[string]float64) []string {
	ids := make([]string, 0, len(comp))
	for id, frac := range comp {
		if frac > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// computeFlash performs an adiabatic isothermal flash: K-values at inlet
// conditions, Rachford-Rice for the vapor fraction, and a phase split
// routed to the vapor/liquid outlets. Both outlets inherit inlet T and P.
func computeFlash(b *Block, inlet StreamState, outlets []*Stream) (outletResult, BlockResult, error) {
	res := BlockResult{BlockID: b.ID}

	ids := presentComponents(inlet.Composition)
	if len(ids) == 0 {
		return nil, res, fmt.Errorf("block %s: inlet has empty composition", b.ID)
	}
	z := make([]float64, len(ids))
	K := make([]float64, len(ids))
	for i, id := range ids {
		c, ok := thermo.Lookup(id)
		if !ok {
			return nil, res, fmt.Errorf("block %s: unknown component %q", b.ID, id)
		}
		z[i] = inlet.Composition[id]
		K[i] = c.KValue(inlet.Temperature, inlet.Pressure)
	}

	V, err := thermo.RachfordRice(z, K)
	if err != nil {
		return nil, res, fmt.Errorf("block %s: %w", b.ID, err)
	}
	x, y := thermo.PhaseSplit(z, K, V)

	var vaporStream, liquidStream *Stream
	for _, s := range outlets {
		name := strings.ToLower(s.FromPort)
		switch {
		case strings.Contains(name, "vapor") || strings.Contains(name, "gas"):
			vaporStream = s
		case strings.Contains(name, "liquid") || strings.Contains(name, "heavy"):
			liquidStream = s
		}
	}
	if vaporStream == nil || liquidStream == nil {
		return nil, res, fmt.Errorf("block %s: flash needs vapor and liquid outlet ports, got %d outlets", b.ID, len(outlets))
	}

	vaporComp := make(map[string]float64, len(ids))
	liquidComp := make(map[string]float64, len(ids))
	for i, id := range ids {
		vaporComp[id] = y[i]
		liquidComp[id] = x[i]
	}

	out := outletResult{
		vaporStream.ID: {
			Temperature: inlet.Temperature,
			Pressure:    inlet.Pressure,
			MolarFlow:   inlet.MolarFlow * V,
			Composition: vaporComp,
			Phase:       PhaseVapor,
			Enthalpy:    thermo.MixtureEnthalpy(vaporComp, inlet.Temperature),
		},
		liquidStream.ID: {
			Temperature: inlet.Temperature,
			Pressure:    inlet.Pressure,
			MolarFlow:   inlet.MolarFlow * (1 - V),
			Composition: liquidComp,
			Phase:       PhaseLiquid,
			Enthalpy:    thermo.MixtureEnthalpy(liquidComp, inlet.Temperature),
		},
	}
	return out, res, nil
}

// computeMixer merges N inlets: flows add, composition and temperature are
// flow-weighted averages, pressure takes the minimum. The temperature rule
// is a linear approximation, not an energy-balance inversion; the enthalpy
// field carries the flow-weighted average so the approximation is visible
// downstream.
func computeMixer(b *Block, inlets []StreamState, outlets []*Stream) (outletResult, BlockResult, error) {
	res := BlockResult{BlockID: b.ID}
	if len(outlets) == 0 {
		return nil, res, fmt.Errorf("block %s: mixer has no outlet", b.ID)
	}

	totalFlow := 0.0
	minPres := math.Inf(1)
	for _, in := range inlets {
		totalFlow += in.MolarFlow
		if in.Pressure < minPres {
			minPres = in.Pressure
		}
	}

	comp := make(map[string]float64)
	T, H := 0.0, 0.0
	phase := inlets[0].Phase
	for _, in := range inlets {
		w := 0.0
		if totalFlow > 0 {
			w = in.MolarFlow / totalFlow
		}
		for id, frac := range in.Composition {
			comp[id] += w * frac
		}
		T += w * in.Temperature
		H += w * in.Enthalpy
		if in.Phase != phase {
			phase = PhaseMixed
		}
	}

	state := StreamState{
		Temperature: T,
		Pressure:    minPres,
		MolarFlow:   totalFlow,
		Composition: comp,
		Phase:       phase,
		Enthalpy:    H,
	}
	out := outletResult{}
	for _, s := range outlets {
		out[s.ID] = state
	}
	return out, res, nil
}

// computeSplitter divides one inlet across K outlets. Fractions come from
// per-port "fraction_<port>" number parameters; when any outlet lacks one,
// the split is equal. Intensive properties are copied unchanged.
func computeSplitter(b *Block, inlet StreamState, outlets []*Stream) (outletResult, BlockResult, error) {
	res := BlockResult{BlockID: b.ID}
	if len(outlets) == 0 {
		return nil, res, fmt.Errorf("block %s: splitter has no outlet", b.ID)
	}

	fractions := make([]float64, len(outlets))
	explicit := true
	for i, s := range outlets {
		p, ok := b.Param("fraction_" + s.FromPort)
		if !ok {
			explicit = false
			break
		}
		fractions[i] = p.AsFloat()
	}
	if !explicit {
		for i := range fractions {
			fractions[i] = 1.0 / float64(len(outlets))
		}
	}

	out := outletResult{}
	for i, s := range outlets {
		state := inlet
		state.Composition = inlet.CloneComposition()
		state.MolarFlow = inlet.MolarFlow * fractions[i]
		out[s.ID] = state
	}
	return out, res, nil
}

// computePump raises pressure by the configured rise (default 5 bar) and
// charges shaft power from the liquid volumetric flow at inlet conditions.
func computePump(b *Block, inlet StreamState, outlets []*Stream) (outletResult, BlockResult, error) {
	res := BlockResult{BlockID: b.ID}

	rise := defaultPressureRise
	if p, ok := b.Param("pressure_rise"); ok {
		rise = p.PressureBar()
	}

	rho := thermo.LiquidMixtureDensity(inlet.Composition)
	massFlow := inlet.MolarFlow * thermo.AverageMolecularWeight(inlet.Composition) / 3600.0 // kg/s
	deltaPa := rise * 1e5
	res.PowerKW = massFlow * deltaPa / (rho * pumpEfficiency * 1000.0)

	state := inlet
	state.Composition = inlet.CloneComposition()
	state.Pressure = inlet.Pressure + rise
	out := outletResult{}
	for _, s := range outlets {
		out[s.ID] = state
	}
	return out, res, nil
}

// computeCompressor raises pressure to the configured outlet pressure or
// by the configured ratio, charging adiabatic ideal-gas compression work.
func computeCompressor(b *Block, inlet StreamState, outlets []*Stream) (outletResult, BlockResult, error) {
	res := BlockResult{BlockID: b.ID}

	outPres := 0.0
	if p, ok := b.Param("outlet_pressure"); ok {
		outPres = p.PressureBar()
	} else if p, ok := b.Param("pressure_ratio"); ok {
		outPres = inlet.Pressure * p.AsFloat()
	}
	if outPres <= inlet.Pressure {
		return nil, res, fmt.Errorf("block %s: compressor outlet pressure %.3g bar not above inlet %.3g bar", b.ID, outPres, inlet.Pressure)
	}

	ratio := outPres / inlet.Pressure
	exp := (heatCapacityRatio - 1) / heatCapacityRatio
	outTemp := inlet.Temperature * math.Pow(ratio, exp)

	molPerSec := inlet.MolarFlow * 1000.0 / 3600.0
	work := molPerSec * thermo.GasConstant * inlet.Temperature / exp * (math.Pow(ratio, exp) - 1)
	res.PowerKW = work / (compressorEfficiency * 1000.0)

	state := inlet
	state.Composition = inlet.CloneComposition()
	state.Pressure = outPres
	state.Temperature = outTemp
	state.Phase = PhaseVapor
	state.Enthalpy = thermo.MixtureEnthalpy(state.Composition, outTemp)
	out := outletResult{}
	for _, s := range outlets {
		out[s.ID] = state
	}
	return out, res, nil
}

// computeHeaterCooler drives the stream to the target temperature
// (configured, or inlet +/- 50 K) and charges the sensible-heat duty.
// Positive duty means heating.
func computeHeaterCooler(b *Block, inlet StreamState, outlets []*Stream) (outletResult, BlockResult, error) {
	res := BlockResult{BlockID: b.ID}

	outTemp := inlet.Temperature
	if p, ok := b.Param("outlet_temperature"); ok {
		outTemp = p.TemperatureK()
	} else if b.Type == BlockHeater {
		outTemp += defaultTempChange
	} else {
		outTemp -= defaultTempChange
	}

	hIn := thermo.MixtureEnthalpy(inlet.Composition, inlet.Temperature)
	hOut := thermo.MixtureEnthalpy(inlet.Composition, outTemp)
	// kmol/h * kJ/mol -> kW
	res.DutyKW = inlet.MolarFlow * (hOut - hIn) * 1000.0 / 3600.0

	state := inlet
	state.Composition = inlet.CloneComposition()
	state.Temperature = outTemp
	state.Enthalpy = hOut
	out := outletResult{}
	for _, s := range outlets {
		out[s.ID] = state
	}
	return out, res, nil
}

// computePassThrough copies the single inlet verbatim to every outlet.
// Placeholder balance for staged columns, reactors, and valves.
func computePassThrough(b *Block, inlet StreamState, outlets []*Stream) (outletResult, BlockResult, error) {
	res := BlockResult{BlockID: b.ID}
	out := outletResult{}
	for _, s := range outlets {
		state := inlet
		state.Composition = inlet.CloneComposition()
		out[s.ID] = state
	}
	return out, res, nil
}
