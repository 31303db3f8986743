package sim

import "fmt"

// ParamKind discriminates the closed set of block parameter shapes.
type ParamKind int

const (
	// ParamNumber is a plain dimensionless number.
	ParamNumber ParamKind = iota
	// ParamQuantity is a physical quantity with a unit string.
	ParamQuantity
	// ParamCount is an integer count (e.g. number of stages).
	ParamCount
)

// ParamValue is a closed sum over {number, quantity, count}. Every access
// goes through an accessor that reports whether the shape matched, so a
// mistyped parameter surfaces as a validation diagnostic instead of a
// silent zero.
type ParamValue struct {
	Kind   ParamKind
	number float64
	value  float64
	unit   string
	count  int
}

// Number constructs a plain-number parameter.
func Number(v float64) ParamValue {
	return ParamValue{Kind: ParamNumber, number: v}
}

// Quantity constructs a value-with-unit parameter.
func Quantity(v float64, unit string) ParamValue {
	return ParamValue{Kind: ParamQuantity, value: v, unit: unit}
}

// Count constructs an integer-count parameter.
func Count(n int) ParamValue {
	return ParamValue{Kind: ParamCount, count: n}
}

// AsFloat returns the numeric payload of any shape: the number itself,
// the quantity's raw (unconverted) value, or the count widened to float.
func (p ParamValue) AsFloat() float64 {
	switch p.Kind {
	case ParamNumber:
		return p.number
	case ParamQuantity:
		return p.value
	default:
		return float64(p.count)
	}
}

// AsQuantity returns the value and unit; ok is false for non-quantity shapes.
func (p ParamValue) AsQuantity() (value float64, unit string, ok bool) {
	if p.Kind != ParamQuantity {
		return 0, "", false
	}
	return p.value, p.unit, true
}

// AsInt returns the count; ok is false for non-count shapes.
func (p ParamValue) AsInt() (int, bool) {
	if p.Kind != ParamCount {
		return 0, false
	}
	return p.count, true
}

// ToKelvin converts a temperature value in the given unit to K.
// Unrecognized units are assumed to already be Kelvin.
func ToKelvin(value float64, unit string) float64 {
	switch unit {
	case "C", "degC", "°C":
		return value + 273.15
	case "F", "degF", "°F":
		return (value-32)*5/9 + 273.15
	default:
		return value
	}
}

// ToBar converts a pressure value in the given unit to bar.
// Unrecognized units are assumed to already be bar.
func ToBar(value float64, unit string) float64 {
	switch unit {
	case "Pa":
		return value / 1e5
	case "kPa":
		return value / 100
	case "MPa":
		return value * 10
	case "atm":
		return value * 1.01325
	default:
		return value
	}
}

// TemperatureK resolves a quantity-shaped parameter as a temperature in K.
// Plain numbers and counts are read as Kelvin directly.
func (p ParamValue) TemperatureK() float64 {
	if v, unit, ok := p.AsQuantity(); ok {
		return ToKelvin(v, unit)
	}
	return p.AsFloat()
}

// PressureBar resolves a quantity-shaped parameter as a pressure in bar.
// Plain numbers and counts are read as bar directly.
func (p ParamValue) PressureBar() float64 {
	if v, unit, ok := p.AsQuantity(); ok {
		return ToBar(v, unit)
	}
	return p.AsFloat()
}

func (p ParamValue) String() string {
	switch p.Kind {
	case ParamNumber:
		return fmt.Sprintf("%g", p.number)
	case ParamQuantity:
		return fmt.Sprintf("%g %s", p.value, p.unit)
	default:
		return fmt.Sprintf("%d", p.count)
	}
}
