package costing

import "math"

// shiftCoverage approximates continuous 3-shift operator coverage
// (operators hired per posted position).
const shiftCoverage = 4.8

// kpi reads a named KPI, defaulting to 0 when absent.
func kpi(kpis map[string]float64, name string) float64 {
	return kpis[name]
}

// COM is the simplified annual cost-of-manufacturing proxy:
// utility rates priced directly plus an annualized CAPEX proxy term.
// Rates come from the KPI map; absent KPIs contribute nothing.
func COM(kpis map[string]float64, cfg EconomicConfig) float64 {
	return kpi(kpis, "steam")*cfg.SteamPrice +
		kpi(kpis, "electricity")*cfg.ElectricityPrice +
		kpi(kpis, "CO2_emissions")*cfg.CO2Price +
		kpi(kpis, "CAPEX_proxy")*cfg.CapexFactor
}

// AnnualCostBreakdown itemizes the total-annual-cost calculation.
type AnnualCostBreakdown struct {
	InstalledCAPEX  float64 `json:"installed_capex"`
	AnnualizedCAPEX float64 `json:"annualized_capex"`
	UtilityCost     float64 `json:"utility_cost"`
	LaborCost       float64 `json:"labor_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	TotalOpex       float64 `json:"total_opex"`
	TotalAnnualCost float64 `json:"total_annual_cost"`
}

// TotalAnnualCost aggregates installed capital and operating costs from
// equipment CAPEX and the run's utility KPIs (steam and cooling in GJ/h,
// electricity in kW).
func TotalAnnualCost(equipmentCAPEX float64, kpis map[string]float64, cfg ExtendedEconomicConfig) AnnualCostBreakdown {
	installed := equipmentCAPEX * cfg.InstallationFactor * (1 + cfg.ContingencyFactor)
	annualized := installed * cfg.AnnualizationFactor

	utility := (kpi(kpis, "steam")*cfg.SteamPrice +
		kpi(kpis, "electricity")*cfg.ElectricityPrice +
		kpi(kpis, "cooling")*CoolingPrice) * cfg.OperatingHours

	labor := cfg.OperatorsPerShift * shiftCoverage * cfg.LaborCost
	maintenance := installed * cfg.MaintenanceFactor
	opex := utility + labor + maintenance

	return AnnualCostBreakdown{
		InstalledCAPEX:  installed,
		AnnualizedCAPEX: annualized,
		UtilityCost:     utility,
		LaborCost:       labor,
		MaintenanceCost: maintenance,
		TotalOpex:       opex,
		TotalAnnualCost: annualized + opex,
	}
}

// Payback returns installed CAPEX over annual savings in years, or +Inf
// when savings are zero or negative.
func Payback(installedCAPEX, annualSavings float64) float64 {
	if annualSavings <= 0 {
		return math.Inf(1)
	}
	return installedCAPEX / annualSavings
}

// NPV discounts a constant annual cash flow over the project life against
// the installed capital outlay at t=0.
func NPV(installedCAPEX, annualCashFlow, rate float64, lifeYears int) float64 {
	npv := -installedCAPEX
	for t := 1; t <= lifeYears; t++ {
		npv += annualCashFlow / math.Pow(1+rate, float64(t))
	}
	return npv
}

// Default discounting basis for NPV.
const (
	DefaultDiscountRate = 0.10
	DefaultProjectLife  = 20
)
