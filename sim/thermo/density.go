package thermo

// GasConstant in J/(mol*K).
const GasConstant = 8.314

// IdealGasDensity returns the vapor-phase mass density in kg/m3 at T (K)
// and P (bar) for a mixture with the given composition.
func IdealGasDensity(composition map[string]float64, T, P float64) float64 {
	if T <= 0 {
		return 0
	}
	mw := AverageMolecularWeight(composition) // g/mol
	// P[bar] -> Pa, MW g/mol -> kg/mol
	return (P * 1e5) * (mw / 1000.0) / (GasConstant * T)
}

// LiquidMixtureDensity returns the liquid mass density in kg/m3 using
// ideal volume-of-mixing over the components' nominal liquid densities.
func LiquidMixtureDensity(composition map[string]float64) float64 {
	mass := 0.0 // g per mol of mixture
	vol := 0.0  // cm3 per mol of mixture
	for id, frac := range composition {
		c, ok := Lookup(id)
		if !ok || c.LiquidDensity <= 0 {
			continue
		}
		m := frac * c.MolecularWeight
		mass += m
		vol += m / (c.LiquidDensity / 1000.0) // kg/m3 == g/L; /1000 -> g/cm3
	}
	if vol == 0 {
		return 1000.0 // fall back to water-like density
	}
	return mass / vol * 1000.0 // g/cm3 -> kg/m3
}

// MixtureDensity dispatches on phase tag: "V" uses the ideal-gas law,
// anything else is treated as liquid.
func MixtureDensity(composition map[string]float64, T, P float64, phase string) float64 {
	if phase == "V" {
		return IdealGasDensity(composition, T, P)
	}
	return LiquidMixtureDensity(composition)
}
