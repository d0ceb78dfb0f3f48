/*
 * transmission.go, part of goPrism.
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

package slicer

import (
	"math"

	"github.com/rmera/goprism/grid"
)

//Transmission returns the transmission function of each slice of the potential pot,
//exp(i*sigma*V), where sigma is the interaction parameter.
func Transmission(pot *grid.Volume, sigma float64) (*grid.CVolume, error) {
	s, r, c := pot.Dims()
	T, err := grid.NewCVolume(s, r, c)
	if err != nil {
		return nil, err
	}
	td := T.Data()
	for i, v := range pot.Data() {
		sin, cos := math.Sincos(sigma * v)
		td[i] = complex(cos, sin)
	}
	return T, nil
}
