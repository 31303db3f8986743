package thermo

import (
	"fmt"
	"math"
)

// VaporPressure estimates the saturation pressure at T (K), in bar,
// using the Wilson correlation from critical properties:
//
//	Psat = Pc * exp(5.373 * (1 + omega) * (1 - Tc/T))
func (c Component) VaporPressure(T float64) float64 {
	return c.CriticalPres * math.Exp(5.373*(1+c.AcentricFactor)*(1-c.CriticalTemp/T))
}

// KValue returns the vapor-liquid equilibrium ratio y/x at T (K) and
// P (bar), assuming Raoult's law over the Wilson vapor pressure.
func (c Component) KValue(T, P float64) float64 {
	if P <= 0 {
		return 1.0
	}
	return c.VaporPressure(T) / P
}

// rrResidual is the Rachford-Rice objective at vapor fraction V:
// sum_i z_i*(K_i-1)/(1+V*(K_i-1)).
func rrResidual(z, K []float64, V float64) float64 {
	sum := 0.0
	for i := range z {
		sum += z[i] * (K[i] - 1) / (1 + V*(K[i]-1))
	}
	return sum
}

// RachfordRice solves for the vapor fraction V in [0,1] satisfying
// sum_i z_i*(K_i-1)/(1+V*(K_i-1)) = 0 by bisection. When the feed is
// subcooled (residual at V=0 is non-positive) it returns 0; when
// superheated (residual at V=1 is non-negative) it returns 1.
func RachfordRice(z, K []float64) (float64, error) {
	if len(z) != len(K) {
		return 0, fmt.Errorf("rachford-rice: %d feed fractions vs %d K-values", len(z), len(K))
	}
	if len(z) == 0 {
		return 0, fmt.Errorf("rachford-rice: empty feed")
	}

	// Boundary checks: the residual is monotonically decreasing in V, so
	// a root inside (0,1) exists only when f(0) > 0 > f(1).
	if rrResidual(z, K, 0) <= 0 {
		return 0, nil
	}
	if rrResidual(z, K, 1) >= 0 {
		return 1, nil
	}

	lo, hi := 0.0, 1.0
	V := 0.5
	for i := 0; i < 200; i++ {
		V = (lo + hi) / 2
		f := rrResidual(z, K, V)
		if math.Abs(f) < 1e-9 {
			break
		}
		if f > 0 {
			lo = V
		} else {
			hi = V
		}
	}
	return V, nil
}

// PhaseSplit derives liquid (x) and vapor (y) compositions from the feed
// composition z, K-values, and a solved vapor fraction V:
//
//	x_i = z_i / (1 + V*(K_i-1)),  y_i = K_i * x_i
func PhaseSplit(z, K []float64, V float64) (x, y []float64) {
	x = make([]float64, len(z))
	y = make([]float64, len(z))
	for i := range z {
		x[i] = z[i] / (1 + V*(K[i]-1))
		y[i] = K[i] * x[i]
	}
	return x, y
}
