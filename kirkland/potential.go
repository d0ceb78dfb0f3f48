/*
 * potential.go, part of goPrism.
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

import (
	"math"

	"github.com/rmera/goprism/grid"
	"gonum.org/v1/gonum/mat"
)

//SuperSampling is the number of sub-samples per pixel and axis used to
//integrate the potential over each pixel.
const SuperSampling = 8

const (
	bohr2D   = 0.5292
	bohr3D   = 0.529
	eVA      = 14.4 //electron charge in Volt-Angstrom
	minCoord = 2
)

//Axis returns the integer pixel offsets -n..n, with n=ceil(bound/pixel),
//and the same offsets in Angstrom.
func Axis(bound, pixel float64) ([]int, []float64) {
	n := int(math.Ceil(bound / pixel))
	vec := make([]int, 2*n+1)
	r := make([]float64, 2*n+1)
	for i := range vec {
		vec[i] = i - n
		r[i] = float64(i-n) * pixel
	}
	return vec, r
}

//subsamples returns the sub-pixel offsets, in units of the pixel.
func subsamples() []float64 {
	ss := float64(SuperSampling)
	ret := make([]float64, SuperSampling)
	start := -(ss - 1) / ss / 2
	for i := range ret {
		ret[i] = start + float64(i)/ss
	}
	return ret
}

//supersampled returns for every coordinate in r the SuperSampling positions inside its pixel.
func supersampled(r []float64) [][]float64 {
	if len(r) < minCoord {
		panic(grid.ErrShape)
	}
	d := r[1] - r[0]
	sub := subsamples()
	ret := make([][]float64, len(r))
	for i, v := range r {
		ret[i] = make([]float64, len(sub))
		for j, s := range sub {
			ret[i][j] = v + s*d
		}
	}
	return ret
}

//Projected returns the projected potential of an element with parameters ap, in Volt-Angstrom,
//over the grid given by the coordinates yr (rows) and xr (columns). yr and xr must be symmetric about zero
//and have at least 3 elements each.
//Each pixel is the average over SuperSampling^2 sub-samples. The largest of the values at the centre of
//the x and y faces (one pixel in from the edge) is subtracted, and negative values are set to zero,
//so the kernel goes to zero at its boundary.
func Projected(ap Params, xr, yr []float64) *mat.Dense {
	term1 := 4 * math.Pi * math.Pi * bohr2D * eVA
	term2 := 2 * math.Pi * math.Pi * bohr2D * eVA
	xs := supersampled(xr)
	ys := supersampled(yr)
	var sqb, dinv [3]float64
	for i := 0; i < 3; i++ {
		sqb[i] = 2 * math.Pi * math.Sqrt(ap[2*i+1])
		dinv[i] = 1 / ap[2*i+7]
	}
	pot := mat.NewDense(len(yr), len(xr), nil)
	norm := 1 / float64(SuperSampling*SuperSampling)
	for j := range yr {
		for i := range xr {
			var sum float64
			for _, y := range ys[j] {
				for _, x := range xs[i] {
					r2 := x*x + y*y
					r := math.Sqrt(r2)
					sum += term1*(ap[0]*K0(sqb[0]*r)+ap[2]*K0(sqb[1]*r)+ap[4]*K0(sqb[2]*r)) +
						term2*(ap[6]*dinv[0]*math.Exp(-math.Pi*math.Pi*dinv[0]*r2)+
							ap[8]*dinv[1]*math.Exp(-math.Pi*math.Pi*dinv[1]*r2)+
							ap[10]*dinv[2]*math.Exp(-math.Pi*math.Pi*dinv[2]*r2))
				}
			}
			pot.Set(j, i, sum*norm)
		}
	}
	xInd := len(xr) / 2
	yInd := len(yr) / 2
	potMin := 0.0
	for _, v := range []float64{pot.At(yInd, len(xr)-2), pot.At(len(yr)-2, xInd)} {
		potMin = math.Max(potMin, v)
	}
	pot.Apply(func(_, _ int, v float64) float64 {
		return math.Max(v-potMin, 0)
	}, pot)
	return pot
}

//Projected3D returns the 3D potential of an element, over the grid given by zr, yr and xr,
//as a volume indexed [z, y, x]. The integration and edge treatment is the same as in Projected,
//with a third face sampled along z.
func Projected3D(ap Params, xr, yr, zr []float64) *grid.Volume {
	term1 := 2 * math.Pi * math.Pi * bohr3D * eVA
	term2 := 2 * math.Pow(math.Pi, 2.5) * bohr3D * eVA
	xs := supersampled(xr)
	ys := supersampled(yr)
	zs := supersampled(zr)
	var sqb, dinv, d32 [3]float64
	for i := 0; i < 3; i++ {
		sqb[i] = 2 * math.Pi * math.Sqrt(ap[2*i+1])
		dinv[i] = 1 / ap[2*i+7]
		d32[i] = math.Pow(ap[2*i+7], -1.5)
	}
	pot, err := grid.NewVolume(len(zr), len(yr), len(xr))
	if err != nil {
		panic(err.Error())
	}
	norm := 1 / float64(SuperSampling*SuperSampling*SuperSampling)
	for k := range zr {
		for j := range yr {
			for i := range xr {
				var sum float64
				for _, z := range zs[k] {
					for _, y := range ys[j] {
						for _, x := range xs[i] {
							r2 := x*x + y*y + z*z
							r := math.Sqrt(r2)
							sum += term1*(ap[0]*math.Exp(-sqb[0]*r)/r+ap[2]*math.Exp(-sqb[1]*r)/r+ap[4]*math.Exp(-sqb[2]*r)/r) +
								term2*(ap[6]*d32[0]*math.Exp(-math.Pi*math.Pi*dinv[0]*r2)+
									ap[8]*d32[1]*math.Exp(-math.Pi*math.Pi*dinv[1]*r2)+
									ap[10]*d32[2]*math.Exp(-math.Pi*math.Pi*dinv[2]*r2))
						}
					}
				}
				pot.Set(k, j, i, sum*norm)
			}
		}
	}
	xInd, yInd, zInd := len(xr)/2, len(yr)/2, len(zr)/2
	potMin := 0.0
	for _, v := range []float64{pot.At(zInd, yInd, len(xr)-2), pot.At(zInd, len(yr)-2, xInd), pot.At(len(zr)-2, yInd, xInd)} {
		potMin = math.Max(potMin, v)
	}
	d := pot.Data()
	for i, v := range d {
		d[i] = math.Max(v-potMin, 0)
	}
	return pot
}
