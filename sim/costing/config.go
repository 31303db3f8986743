// Package costing provides stateless per-equipment sizing and cost
// correlations plus plant-level economic aggregation (COM, total annual
// cost, payback, NPV). All functions are pure; they consume solved block
// results and KPI maps and never touch the flowsheet itself.
package costing

// EconomicConfig holds the utility prices and the CAPEX proxy factor
// used by the simplified cost-of-manufacturing estimate.
type EconomicConfig struct {
	SteamPrice       float64 `yaml:"steam_price"`       // $/GJ
	ElectricityPrice float64 `yaml:"electricity_price"` // $/kWh
	CO2Price         float64 `yaml:"co2_price"`         // $/t
	CapexFactor      float64 `yaml:"capex_factor"`      // annualization proxy on CAPEX
}

// ExtendedEconomicConfig adds the installed-cost and operating-cost
// parameters needed for the full total-annual-cost breakdown.
type ExtendedEconomicConfig struct {
	EconomicConfig `yaml:",inline"`

	InstallationFactor  float64 `yaml:"installation_factor"`  // installed = equipment * factor
	ContingencyFactor   float64 `yaml:"contingency_factor"`   // fraction on installed cost
	AnnualizationFactor float64 `yaml:"annualization_factor"` // capital recovery fraction
	OperatingHours      float64 `yaml:"operating_hours"`      // h/yr
	OperatorsPerShift   float64 `yaml:"operators_per_shift"`
	LaborCost           float64 `yaml:"labor_cost"` // $/operator-yr
	MaintenanceFactor   float64 `yaml:"maintenance_factor"`
}

// CoolingPrice is the fixed cooling-water utility price in $/GJ.
const CoolingPrice = 2.0

// DefaultEconomicConfig returns the reference utility prices.
func DefaultEconomicConfig() EconomicConfig {
	return EconomicConfig{
		SteamPrice:       14.0,
		ElectricityPrice: 0.0775,
		CO2Price:         50.0,
		CapexFactor:      0.1,
	}
}

// DefaultExtendedEconomicConfig returns the reference economic basis.
func DefaultExtendedEconomicConfig() ExtendedEconomicConfig {
	return ExtendedEconomicConfig{
		EconomicConfig:      DefaultEconomicConfig(),
		InstallationFactor:  3.0,
		ContingencyFactor:   0.15,
		AnnualizationFactor: 0.15,
		OperatingHours:      8000,
		OperatorsPerShift:   2,
		LaborCost:           75000,
		MaintenanceFactor:   0.03,
	}
}

// WithDefaults fills zero-valued fields from the reference basis, so a
// partially specified YAML economics section behaves predictably.
func (c ExtendedEconomicConfig) WithDefaults() ExtendedEconomicConfig {
	d := DefaultExtendedEconomicConfig()
	if c.SteamPrice == 0 {
		c.SteamPrice = d.SteamPrice
	}
	if c.ElectricityPrice == 0 {
		c.ElectricityPrice = d.ElectricityPrice
	}
	if c.CO2Price == 0 {
		c.CO2Price = d.CO2Price
	}
	if c.CapexFactor == 0 {
		c.CapexFactor = d.CapexFactor
	}
	if c.InstallationFactor == 0 {
		c.InstallationFactor = d.InstallationFactor
	}
	if c.ContingencyFactor == 0 {
		c.ContingencyFactor = d.ContingencyFactor
	}
	if c.AnnualizationFactor == 0 {
		c.AnnualizationFactor = d.AnnualizationFactor
	}
	if c.OperatingHours == 0 {
		c.OperatingHours = d.OperatingHours
	}
	if c.OperatorsPerShift == 0 {
		c.OperatorsPerShift = d.OperatorsPerShift
	}
	if c.LaborCost == 0 {
		c.LaborCost = d.LaborCost
	}
	if c.MaintenanceFactor == 0 {
		c.MaintenanceFactor = d.MaintenanceFactor
	}
	return c
}
