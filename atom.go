/*
 * atom.go, part of goPrism.
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

package prism

import (
	"fmt"
	"math"

	"github.com/rmera/goprism/kirkland"
	"github.com/rmera/goprism/slicer"
)

//Atom is an atom of the structure. The coordinates are fractions of the cell.
type Atom struct {
	Species int     //atomic number
	X, Y, Z float64 //fractional coordinates
	Sigma   float64 //thermal vibration (rms displacement), Angstrom
	Occ     float64 //site occupancy, 0 to 1
}

func (A Atom) check() error {
	switch {
	case A.Species < 1 || A.Species > kirkland.MaxZ:
		return fmt.Errorf("invalid atomic number %d", A.Species)
	case math.IsNaN(A.X+A.Y+A.Z) || math.IsInf(A.X+A.Y+A.Z, 0):
		return fmt.Errorf("invalid coordinates %v %v %v", A.X, A.Y, A.Z)
	case A.Sigma < 0:
		return fmt.Errorf("negative thermal vibration %v", A.Sigma)
	case A.Occ < 0 || A.Occ > 1:
		return fmt.Errorf("occupancy %v outside [0,1]", A.Occ)
	}
	return nil
}

//Tile returns the atoms of a tx x ty x tz supercell of the cell with the given atoms, with their
//fractional coordinates referred to the new cell. The atoms are in z, y, x tile order and, within
//each tile, in input order.
func Tile(atoms []Atom, tx, ty, tz int) []Atom {
	ret := make([]Atom, 0, len(atoms)*tx*ty*tz)
	for z := 0; z < tz; z++ {
		for y := 0; y < ty; y++ {
			for x := 0; x < tx; x++ {
				for _, a := range atoms {
					b := a
					b.X = (a.X + float64(x)) / float64(tx)
					b.Y = (a.Y + float64(y)) / float64(ty)
					b.Z = (a.Z + float64(z)) / float64(tz)
					ret = append(ret, b)
				}
			}
		}
	}
	return ret
}

//sites returns the atoms in Cartesian coordinates for a cell (z, y, x).
func sites(atoms []Atom, cell [3]float64) []slicer.Site {
	ret := make([]slicer.Site, len(atoms))
	for i, a := range atoms {
		ret[i] = slicer.Site{Species: a.Species, X: a.X * cell[2], Y: a.Y * cell[1], Z: a.Z * cell[0], Sigma: a.Sigma, Occ: a.Occ}
	}
	return ret
}

func species(atoms []Atom) []int {
	ret := make([]int, len(atoms))
	for i, a := range atoms {
		ret[i] = a.Species
	}
	return ret
}
