// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate performs cubic interpolation
// x is the fractional position between y1 and y2 (0 <= x <= 1)
// y0, y1, y2, y3 are four consecutive samples
//
// At x == 0 the result is exactly y1, which lets callers stepping at a ratio
// of 1.0 reproduce the input bit for bit.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	if x == 0 {
		return y1
	}

	// Catmull-Rom spline interpolation
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return ((a0*x+a1)*x+a2)*x + a3
}

// LinearInterpolate blends y1 towards y2 by x (0 <= x <= 1).
func LinearInterpolate(y1, y2, x float32) float32 {
	return y1 + (y2-y1)*x
}
