package sim

import (
	"github.com/flowsheet-sim/flowsheet-sim/sim/costing"
)

// SizeEquipment runs the per-block cost correlations over a solved run.
// Feed, Mixer, Splitter, Sink, and Annotation blocks carry no cost.
func SizeEquipment(p *Project, sr *SolverResult) costing.CAPEXResult {
	var items []costing.EquipmentSize

	for _, b := range p.Flowsheet.Blocks {
		br := sr.Blocks[b.ID]

		switch b.Type {
		case BlockHeater, BlockCooler:
			tIn, tOut := exchangerTemps(p, sr, b)
			items = append(items, costing.HeatExchanger(b.ID, string(b.Type), br.DutyKW, tIn, tOut))

		case BlockPump:
			items = append(items, costing.Pump(b.ID, br.PowerKW))

		case BlockCompressor:
			items = append(items, costing.Compressor(b.ID, br.PowerKW))

		case BlockFlash, BlockSeparator:
			items = append(items, costing.Vessel(b.ID, string(b.Type), liquidOutletVolFlow(p, sr, b)))

		case BlockAbsorber, BlockStripper, BlockColumn:
			items = append(items, costing.Column(b.ID, string(b.Type)))

		case BlockReactor:
			items = append(items, costing.Reactor(b.ID, inletVolFlow(p, sr, b)))

		case BlockValve:
			items = append(items, costing.Valve(b.ID))
		}
	}

	return costing.Total(items)
}

// exchangerTemps reads the process-side inlet and outlet temperatures of
// a heater or cooler from the solved stream table.
func exchangerTemps(p *Project, sr *SolverResult, b *Block) (tIn, tOut float64) {
	for _, s := range p.Flowsheet.Inlets(b.ID) {
		if state, ok := sr.Streams[s.ID]; ok {
			tIn = state.Temperature
			break
		}
	}
	for _, s := range p.Flowsheet.Outlets(b.ID) {
		if state, ok := sr.Streams[s.ID]; ok {
			tOut = state.Temperature
			break
		}
	}
	return tIn, tOut
}

// liquidOutletVolFlow finds the liquid-phase outlet of a flash drum and
// returns its volumetric flow in m3/h.
func liquidOutletVolFlow(p *Project, sr *SolverResult, b *Block) float64 {
	for _, s := range p.Flowsheet.Outlets(b.ID) {
		state, ok := sr.Streams[s.ID]
		if ok && state.Phase == PhaseLiquid {
			return volumetricFlow(state)
		}
	}
	return 0
}

// inletVolFlow returns the total volumetric flow entering a block, m3/h.
func inletVolFlow(p *Project, sr *SolverResult, b *Block) float64 {
	total := 0.0
	for _, s := range p.Flowsheet.Inlets(b.ID) {
		if state, ok := sr.Streams[s.ID]; ok {
			total += volumetricFlow(state)
		}
	}
	return total
}
