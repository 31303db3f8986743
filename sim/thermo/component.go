// Package thermo provides pure-function thermodynamic property models:
// heat capacity and enthalpy polynomials, vapor pressure, K-values, a
// Rachford-Rice equilibrium solver, phase-split compositions, and mixture
// density. It has no dependencies on the rest of the simulator.
package thermo

import "sort"

// Role classifies how a chemical species participates in the process.
type Role string

const (
	RoleSolute  Role = "solute"
	RoleInert   Role = "inert"
	RoleSolvent Role = "solvent"
)

// CpCoeffs are ideal-gas heat capacity polynomial coefficients:
// Cp(T) = A + B*T + C*T^2 + D*T^3, with T in K and Cp in J/(mol*K).
type CpCoeffs struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

// Component is a chemical species identity plus its property record.
type Component struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Formula string `yaml:"formula"`
	Role    Role   `yaml:"role"`

	MolecularWeight float64  `yaml:"molecular_weight"` // g/mol
	CriticalTemp    float64  `yaml:"critical_temp"`    // K
	CriticalPres    float64  `yaml:"critical_pres"`    // bar
	AcentricFactor  float64  `yaml:"acentric_factor"`
	HeatOfFormation float64  `yaml:"heat_of_formation"` // kJ/mol
	LiquidDensity   float64  `yaml:"liquid_density"`    // kg/m3, nominal
	Cp              CpCoeffs `yaml:"cp"`
}

// builtins holds property records for the species the seed flowsheets use.
// Coefficient sources: Smith/Van Ness/Abbott appendix tables, rounded.
var builtins = map[string]Component{
	"CO2": {
		ID: "CO2", Name: "Carbon Dioxide", Formula: "CO2", Role: RoleSolute,
		MolecularWeight: 44.01, CriticalTemp: 304.13, CriticalPres: 73.8,
		AcentricFactor: 0.224, HeatOfFormation: -393.5, LiquidDensity: 770,
		Cp: CpCoeffs{A: 19.80, B: 7.344e-2, C: -5.602e-5, D: 1.715e-8},
	},
	"N2": {
		ID: "N2", Name: "Nitrogen", Formula: "N2", Role: RoleInert,
		MolecularWeight: 28.014, CriticalTemp: 126.2, CriticalPres: 33.96,
		AcentricFactor: 0.038, HeatOfFormation: 0, LiquidDensity: 807,
		Cp: CpCoeffs{A: 31.15, B: -1.357e-2, C: 2.680e-5, D: -1.168e-8},
	},
	"H2O": {
		ID: "H2O", Name: "Water", Formula: "H2O", Role: RoleSolvent,
		MolecularWeight: 18.015, CriticalTemp: 647.1, CriticalPres: 220.6,
		AcentricFactor: 0.344, HeatOfFormation: -241.8, LiquidDensity: 997,
		Cp: CpCoeffs{A: 32.24, B: 1.924e-3, C: 1.055e-5, D: -3.596e-9},
	},
	"MEA": {
		ID: "MEA", Name: "Monoethanolamine", Formula: "C2H7NO", Role: RoleSolvent,
		MolecularWeight: 61.08, CriticalTemp: 678.2, CriticalPres: 71.2,
		AcentricFactor: 0.447, HeatOfFormation: -206.7, LiquidDensity: 1012,
		Cp: CpCoeffs{A: 9.31, B: 3.009e-1, C: -1.818e-4, D: 4.656e-8},
	},
	"CH4": {
		ID: "CH4", Name: "Methane", Formula: "CH4", Role: RoleInert,
		MolecularWeight: 16.043, CriticalTemp: 190.6, CriticalPres: 45.99,
		AcentricFactor: 0.012, HeatOfFormation: -74.5, LiquidDensity: 422,
		Cp: CpCoeffs{A: 19.25, B: 5.213e-2, C: 1.197e-5, D: -1.132e-8},
	},
	"O2": {
		ID: "O2", Name: "Oxygen", Formula: "O2", Role: RoleInert,
		MolecularWeight: 31.999, CriticalTemp: 154.6, CriticalPres: 50.43,
		AcentricFactor: 0.022, HeatOfFormation: 0, LiquidDensity: 1141,
		Cp: CpCoeffs{A: 25.48, B: 1.520e-2, C: -7.155e-6, D: 1.312e-9},
	},
}

// Lookup returns the built-in property record for a component id.
func Lookup(id string) (Component, bool) {
	c, ok := builtins[id]
	return c, ok
}

// BuiltinIDs lists the ids of all built-in components.
func BuiltinIDs() []string {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
