package costing

import "math"

// EquipmentSize is one block's sizing parameter and purchased cost.
type EquipmentSize struct {
	BlockID   string  `json:"block_id"`
	BlockType string  `json:"block_type"`
	Parameter string  `json:"parameter"` // e.g. "area", "power", "volume"
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Cost      float64 `json:"cost"` // $
}

// CAPEXResult aggregates per-block equipment costs.
type CAPEXResult struct {
	Items []EquipmentSize `json:"items"`
	Total float64         `json:"total"` // $, purchased equipment
}

// Correlation constants. Purchased costs follow cost = k*(x/xref)^n.
const (
	hxU            = 500.0 // W/(m2*K), fixed overall coefficient
	steamTemp      = 453.0 // K, condensing steam utility
	coolingInTemp  = 298.0 // K
	coolingOutTemp = 308.0 // K
)

// lmtd computes the log-mean temperature difference with the degenerate
// handling the correlations expect: equal end differences use the
// arithmetic mean, a temperature cross clamps to 10 K, and the result is
// floored at 5 K.
func lmtd(dt1, dt2 float64) float64 {
	var v float64
	switch {
	case dt1 <= 0 || dt2 <= 0:
		v = 10
	case math.Abs(dt1-dt2) < 1e-9:
		v = dt1
	default:
		v = (dt1 - dt2) / math.Log(dt1/dt2)
	}
	return math.Max(v, 5)
}

// HeatExchanger sizes an exchanger from its duty (kW) and process-side
// inlet/outlet temperatures (K). Heating assumes condensing steam at
// 453 K; cooling assumes cooling water heated 298->308 K.
func HeatExchanger(blockID, blockType string, dutyKW, tInK, tOutK float64) EquipmentSize {
	var dt1, dt2 float64
	if dutyKW >= 0 {
		dt1 = steamTemp - tInK
		dt2 = steamTemp - tOutK
	} else {
		dt1 = tInK - coolingOutTemp
		dt2 = tOutK - coolingInTemp
	}
	area := math.Abs(dutyKW) * 1000 / (hxU * lmtd(dt1, dt2))
	area = math.Max(area, 1)
	return EquipmentSize{
		BlockID: blockID, BlockType: blockType,
		Parameter: "area", Value: area, Unit: "m2",
		Cost: 32800 * math.Pow(area/100, 0.65),
	}
}

// Pump sizes a pump from its shaft power (kW), floored at 0.1 kW.
func Pump(blockID string, powerKW float64) EquipmentSize {
	p := math.Max(powerKW, 0.1)
	return EquipmentSize{
		BlockID: blockID, BlockType: "Pump",
		Parameter: "power", Value: p, Unit: "kW",
		Cost: 9840 * math.Pow(p/10, 0.55),
	}
}

// Compressor sizes a compressor from its shaft power (kW), floored at 1 kW.
func Compressor(blockID string, powerKW float64) EquipmentSize {
	p := math.Max(powerKW, 1)
	return EquipmentSize{
		BlockID: blockID, BlockType: "Compressor",
		Parameter: "power", Value: p, Unit: "kW",
		Cost: 98400 * math.Pow(p/100, 0.46),
	}
}

// vesselCost is the base pressure-vessel correlation on volume (m3).
func vesselCost(volume float64) float64 {
	return 17640 * math.Pow(volume/1, 0.62)
}

// Vessel sizes a flash drum or separator from the liquid volumetric flow
// (m3/h): 5 minutes residence at 50% holdup, floored at 0.1 m3.
func Vessel(blockID, blockType string, liquidVolFlowM3h float64) EquipmentSize {
	volume := liquidVolFlowM3h * (5.0 / 60.0) / 0.5
	volume = math.Max(volume, 0.1)
	return EquipmentSize{
		BlockID: blockID, BlockType: blockType,
		Parameter: "volume", Value: volume, Unit: "m3",
		Cost: vesselCost(volume),
	}
}

// Column sizes an absorber, stripper, or distillation column at a fixed
// nominal geometry (1 m radius, 10 m height) with a 3x vessel multiplier
// for internals.
func Column(blockID, blockType string) EquipmentSize {
	volume := math.Pi * 1.0 * 1.0 * 10.0
	return EquipmentSize{
		BlockID: blockID, BlockType: blockType,
		Parameter: "volume", Value: volume, Unit: "m3",
		Cost: 3 * vesselCost(volume),
	}
}

// Reactor sizes a reactor from the total volumetric flow (m3/h) with one
// hour residence, floored at 1 m3, with a 2x vessel multiplier.
func Reactor(blockID string, volFlowM3h float64) EquipmentSize {
	volume := math.Max(volFlowM3h*1.0, 1)
	return EquipmentSize{
		BlockID: blockID, BlockType: "Reactor",
		Parameter: "volume", Value: volume, Unit: "m3",
		Cost: 2 * vesselCost(volume),
	}
}

// Valve carries a fixed nominal cost and no sizing parameter.
func Valve(blockID string) EquipmentSize {
	return EquipmentSize{
		BlockID: blockID, BlockType: "Valve",
		Parameter: "", Value: 0, Unit: "",
		Cost: 2500,
	}
}

// Total sums per-block costs into a CAPEXResult.
func Total(items []EquipmentSize) CAPEXResult {
	r := CAPEXResult{Items: items}
	for _, it := range items {
		r.Total += it.Cost
	}
	return r
}
