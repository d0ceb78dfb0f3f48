/*
 * coords.go, part of goPrism.
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

//Package qspace builds the spectral-space sampling used by the propagation:
//Fourier coordinates, the anti-aliasing mask, the free-space propagators,
//the selection of the plane waves ("beams") that are propagated, and the
//indexes used to crop the results to the non-redundant quarter of each axis.
//
//All 2D arrays are [row, col], with rows along y and columns along x.
package qspace

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/rmera/goprism/grid"
	"gonum.org/v1/gonum/mat"
)

//FourierCoords returns the spectral coordinates for n samples spaced by pixel, in the
//usual FFT order: zero first, then the positive frequencies, then the negative ones.
//q[(nc+i)%n] = (i-nc)/(n*pixel), with nc=floor(n/2).
func FourierCoords(n int, pixel float64) []float64 {
	q := make([]float64, n)
	nc := n / 2
	dp := 1 / (float64(n) * pixel)
	for i := 0; i < n; i++ {
		q[(nc+i)%n] = float64(i-nc) * dp
	}
	return q
}

//Grid is the spectral sampling of one slice.
type Grid struct {
	Rows, Cols int
	PixelSize  [2]float64 //y, x, in Angstrom
	Qxa, Qya   *mat.Dense //spectral coordinates, 1/Angstrom
	Q2         *mat.Dense //Qxa^2+Qya^2
	QMax       float64    //largest usable spectral radius
	Mask       *grid.Mask //anti-aliasing mask
}

//NewGrid builds the spectral grid for a rows x cols slice with the given pixel size (y, x).
//realspacePixel is the real-space pixel size (y, x) requested by the user, which is used
//to obtain QMax.
func NewGrid(rows, cols int, pixelSize, realspacePixel [2]float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &Error{fmt.Sprintf("non-positive image size %dx%d", rows, cols), []string{"NewGrid"}, true}
	}
	for _, v := range append(pixelSize[:], realspacePixel[:]...) {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, &Error{fmt.Sprintf("invalid pixel sizes %v %v", pixelSize, realspacePixel), []string{"NewGrid"}, true}
		}
	}
	G := &Grid{Rows: rows, Cols: cols, PixelSize: pixelSize}
	qx := FourierCoords(cols, pixelSize[1])
	qy := FourierCoords(rows, pixelSize[0])
	G.Qxa = mat.NewDense(rows, cols, nil)
	G.Qya = mat.NewDense(rows, cols, nil)
	G.Q2 = mat.NewDense(rows, cols, nil)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			G.Qxa.Set(j, i, qx[i])
			G.Qya.Set(j, i, qy[j])
			G.Q2.Set(j, i, qx[i]*qx[i]+qy[j]*qy[j])
		}
	}
	dpx := 1 / (float64(cols) * realspacePixel[1])
	dpy := 1 / (float64(rows) * realspacePixel[0])
	G.QMax = math.Min(dpx*float64(cols/2), dpy*float64(rows/2)) / 2
	G.Mask = AntiAliasMask(rows, cols)
	return G, nil
}

//AntiAliasMask returns the mask that keeps the lowest half of the frequencies along each axis.
//Element [(y-rows/4) mod rows, (x-cols/4) mod cols] is true for all y<rows/2, x<cols/2.
func AntiAliasMask(rows, cols int) *grid.Mask {
	M := grid.NewMask(rows, cols)
	oy := rows / 4
	ox := cols / 4
	for y := 0; y < rows/2; y++ {
		for x := 0; x < cols/2; x++ {
			M.Set(mod(y-oy, rows), mod(x-ox, cols), true)
		}
	}
	return M
}

//Propagators returns the row-major free-space propagator for a slice of thickness dz,
//exp(-i pi lambda dz q^2), and the back-propagator that moves the focus to the middle of a cell
//of thickness cellZ, exp(i pi lambda cellZ/2 q^2). Both are zero outside the anti-aliasing mask.
func (G *Grid) Propagators(lambda, dz, cellZ float64) ([]complex128, []complex128) {
	prop := make([]complex128, G.Rows*G.Cols)
	back := make([]complex128, G.Rows*G.Cols)
	for j := 0; j < G.Rows; j++ {
		for i := 0; i < G.Cols; i++ {
			if !G.Mask.At(j, i) {
				continue
			}
			q2 := G.Q2.At(j, i)
			prop[j*G.Cols+i] = cmplx.Exp(complex(0, -math.Pi*lambda*dz*q2))
			back[j*G.Cols+i] = cmplx.Exp(complex(0, math.Pi*lambda*(cellZ/2)*q2))
		}
	}
	return prop, back
}

//meshIndexes returns the integer (unit-cell relative) spectral coordinates of the grid.
func (G *Grid) meshIndexes() (ys, xs []int) {
	xv := FourierCoords(G.Cols, 1/float64(G.Cols))
	yv := FourierCoords(G.Rows, 1/float64(G.Rows))
	xs = make([]int, len(xv))
	ys = make([]int, len(yv))
	for i, v := range xv {
		xs[i] = int(math.Round(v))
	}
	for j, v := range yv {
		ys[j] = int(math.Round(v))
	}
	return ys, xs
}

//mod returns a modulo n in [0,n).
func mod(a, n int) int {
	return (a%n + n) % n
}
