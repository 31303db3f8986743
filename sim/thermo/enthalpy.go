package thermo

// ReferenceTemp is the enthalpy datum (K). Enthalpies are reported
// relative to this temperature, not to the elements.
const ReferenceTemp = 298.15

// HeatCapacity evaluates the Cp polynomial at T (K), in J/(mol*K).
func (c Component) HeatCapacity(T float64) float64 {
	p := c.Cp
	return p.A + p.B*T + p.C*T*T + p.D*T*T*T
}

// Enthalpy integrates Cp from ReferenceTemp to T (K), in kJ/mol.
func (c Component) Enthalpy(T float64) float64 {
	p := c.Cp
	t0 := ReferenceTemp
	integral := p.A*(T-t0) +
		p.B/2*(T*T-t0*t0) +
		p.C/3*(T*T*T-t0*t0*t0) +
		p.D/4*(T*T*T*T-t0*t0*t0*t0)
	return integral / 1000.0 // J/mol -> kJ/mol
}

// MixtureEnthalpy returns the mole-fraction-weighted specific enthalpy
// of a mixture at T (K), in kJ/mol. Components absent from the registry
// contribute nothing.
func MixtureEnthalpy(composition map[string]float64, T float64) float64 {
	h := 0.0
	for id, frac := range composition {
		if c, ok := Lookup(id); ok {
			h += frac * c.Enthalpy(T)
		}
	}
	return h
}

// AverageMolecularWeight returns the mole-fraction-weighted molecular
// weight of a mixture, in g/mol.
func AverageMolecularWeight(composition map[string]float64) float64 {
	mw := 0.0
	for id, frac := range composition {
		if c, ok := Lookup(id); ok {
			mw += frac * c.MolecularWeight
		}
	}
	return mw
}
