/*
 * bessel.go, part of goPrism.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package kirkland

import "math"

//K0 returns the modified Bessel function of the second kind and order 0,
//for x>0, using the polynomial approximations 9.8.1, 9.8.5 and 9.8.6 in Abramowitz and Stegun.
//The relative error is below 1e-7. K0(0) is +Inf, and K0 of a negative number is NaN.
func K0(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return math.NaN()
	case x == 0:
		return math.Inf(1)
	case x <= 2:
		t := x * x / 4
		return -math.Log(x/2)*i0(x) +
			(-0.57721566 + t*(0.42278420+t*(0.23069756+t*(0.03488590+t*(0.00262698+t*(0.00010750+t*0.00000740))))))
	}
	t := 2 / x
	return math.Exp(-x) / math.Sqrt(x) *
		(1.25331414 + t*(-0.07832358+t*(0.02189568+t*(-0.01062446+t*(0.00587872+t*(-0.00251540+t*0.00053208))))))
}

//i0 is the modified Bessel function of the first kind, order 0, for |x|<=3.75.
func i0(x float64) float64 {
	t := x / 3.75
	t *= t
	return 1 + t*(3.5156229+t*(3.0899424+t*(1.2067492+t*(0.2659732+t*(0.0360768+t*0.0045813)))))
}
