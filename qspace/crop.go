/*
 * crop.go, part of goPrism.
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

package qspace

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//Crop returns the row and column indexes of the low-frequency quarter of each axis:
//for an axis of n points, the n/2 indexes 0..n/4-1 followed by n-n/4..n-1.
//Both extents must be multiples of 4.
func Crop(rows, cols int) ([]int, []int, error) {
	if rows < 4 || cols < 4 || rows%4 != 0 || cols%4 != 0 {
		return nil, nil, &Error{fmt.Sprintf("image size %dx%d is not a multiple of 4", rows, cols), []string{"Crop"}, true}
	}
	return cropAxis(rows), cropAxis(cols), nil
}

func cropAxis(n int) []int {
	q := n / 4
	ret := make([]int, n/2)
	for i := 0; i < q; i++ {
		ret[i] = i
		ret[i+q] = i - q + n
	}
	return ret
}

//Output is the sampling of the cropped (compact) results.
type Output struct {
	Rows, Cols int
	PixelSize  [2]float64 //y, x
	Qxa, Qya   *mat.Dense
	Beams      *mat.Dense //beam numbers (1-based, 0 for none) at each cropped point
}

//Downsample returns the coordinates and beam numbers of the cropped grid given by the
//indexes qy, qx (see Crop). The output pixel is twice the input one.
func Downsample(G *Grid, B *BeamSet, qy, qx []int) *Output {
	O := &Output{
		Rows:      G.Rows / 2,
		Cols:      G.Cols / 2,
		PixelSize: [2]float64{2 * G.PixelSize[0], 2 * G.PixelSize[1]},
		Qxa:       mat.NewDense(len(qy), len(qx), nil),
		Qya:       mat.NewDense(len(qy), len(qx), nil),
		Beams:     mat.NewDense(len(qy), len(qx), nil),
	}
	for y, j := range qy {
		for x, i := range qx {
			O.Qxa.Set(y, x, G.Qxa.At(j, i))
			O.Qya.Set(y, x, G.Qya.At(j, i))
			O.Beams.Set(y, x, float64(B.Numbers[j*G.Cols+i]))
		}
	}
	return O
}
