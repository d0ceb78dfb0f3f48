/*
 * selectors.go, part of goPrism.
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
	"math"

	"github.com/rmera/goprism/grid"
)

//Tilt describes the incidence of a beam selected in tilt-series mode.
type Tilt struct {
	X, Y       float64 //tilt angles, rad
	XInd, YInd int     //integer tilt coordinates in units of the tilt step
}

//BeamSet is the set of plane waves to propagate.
type BeamSet struct {
	Mask    *grid.Mask
	Index   []int  //flat spectral indexes of the selected beams, row-major raster order
	Numbers []int  //row-major, 1-based number of the beam at each spectral point, 0 if not selected
	Tilts   []Tilt //one per beam, only for tilt-series selection
}

//Len returns the number of beams.
func (B *BeamSet) Len() int {
	return len(B.Index)
}

//Selector chooses the beams to be propagated on a spectral grid.
type Selector interface {
	Select(G *Grid) (*BeamSet, error)
}

//number fills the Index and Numbers fields of B from its Mask.
func (B *BeamSet) number() {
	rows, cols := B.Mask.Dims()
	B.Numbers = make([]int, rows*cols)
	B.Index = B.Index[:0]
	count := 1
	for n := 0; n < rows*cols; n++ {
		if B.Mask.Flat(n) {
			B.Index = append(B.Index, n)
			B.Numbers[n] = count
			count++
		}
	}
}

//RegularSelector selects the beams on a regular grid in spectral space, every FY and FX
//unit-cell frequencies, up to a maximum angle AlphaMax (rad).
type RegularSelector struct {
	AlphaMax float64
	Lambda   float64 //wavelength, Angstrom
	FY, FX   int     //interpolation factors
}

//Select returns the selected beams. A point is selected if its q^2 is below (AlphaMax/Lambda)^2,
//it is inside the anti-aliasing mask, and both of its integer mesh coordinates are multiples of the
//interpolation factors. Since the test is on the remainder being zero, negative coordinates
//behave exactly like their positive counterparts.
func (S RegularSelector) Select(G *Grid) (*BeamSet, error) {
	if S.FX < 1 || S.FY < 1 {
		return nil, &Error{fmt.Sprintf("interpolation factors must be positive, got %d, %d", S.FY, S.FX), []string{"RegularSelector.Select"}, true}
	}
	if !(S.Lambda > 0) || S.AlphaMax < 0 {
		return nil, &Error{fmt.Sprintf("invalid wavelength %v or maximum angle %v", S.Lambda, S.AlphaMax), []string{"RegularSelector.Select"}, true}
	}
	ys, xs := G.meshIndexes()
	lim := math.Pow(S.AlphaMax/S.Lambda, 2)
	B := &BeamSet{Mask: grid.NewMask(G.Rows, G.Cols)}
	for j := 0; j < G.Rows; j++ {
		for i := 0; i < G.Cols; i++ {
			if G.Q2.At(j, i) < lim && G.Mask.At(j, i) && ys[j]%S.FY == 0 && xs[i]%S.FX == 0 {
				B.Mask.Set(j, i, true)
			}
		}
	}
	B.number()
	return B, nil
}

//TiltMode selects the shape of the tilt window.
type TiltMode int

const (
	Rectangular TiltMode = iota
	Radial
)

func (T TiltMode) String() string {
	switch T {
	case Rectangular:
		return "rectangular"
	case Radial:
		return "radial"
	}
	return fmt.Sprintf("TiltMode(%d)", int(T))
}

//TiltSelector selects the beams for a tilt series (HRTEM mode). All angles in rad.
//The tilt of each spectral point is q*Lambda, and the window is applied to
//its distance from (OffsetY, OffsetX).
type TiltSelector struct {
	Mode             TiltMode
	Lambda           float64
	CellY, CellX     float64 //tiled cell dimensions, Angstrom
	OffsetY, OffsetX float64
	MinY, MaxY       float64 //rectangular window
	MinX, MaxX       float64
	MinR, MaxR       float64 //radial window
	StepY, StepX     float64 //tilt steps in rectangular mode
	FY, FX           int     //interpolation factors, radial mode
}

func (S TiltSelector) check() error {
	var msg string
	switch {
	case !(S.Lambda > 0) || !(S.CellX > 0) || !(S.CellY > 0):
		msg = fmt.Sprintf("invalid wavelength %v or cell %v, %v", S.Lambda, S.CellY, S.CellX)
	case S.Mode != Rectangular && S.Mode != Radial:
		msg = fmt.Sprintf("unknown tilt mode %d", int(S.Mode))
	case S.Mode == Rectangular && (S.MinX < 0 || S.MinY < 0 || S.MaxX < 0 || S.MaxY < 0):
		msg = "negative rectangular tilt window"
	case S.Mode == Rectangular && (S.MinX > S.MaxX || S.MinY > S.MaxY):
		msg = fmt.Sprintf("contradictory rectangular tilt window x:[%v,%v] y:[%v,%v]", S.MinX, S.MaxX, S.MinY, S.MaxY)
	case S.Mode == Rectangular && (S.StepX < 0 || S.StepY < 0):
		msg = "negative tilt step"
	case S.Mode == Radial && (S.MinR < 0 || S.MinR > S.MaxR):
		msg = fmt.Sprintf("contradictory radial tilt window [%v,%v]", S.MinR, S.MaxR)
	case S.Mode == Radial && (S.FX < 1 || S.FY < 1):
		msg = fmt.Sprintf("interpolation factors must be positive, got %d, %d", S.FY, S.FX)
	default:
		return nil
	}
	return &Error{msg, []string{"TiltSelector.Select"}, true}
}

//Factors returns the grid factors used for the selection. In radial mode they are FY and FX.
//In rectangular mode they come from the tilt step divided by the smallest resolvable tilt, Lambda/cell,
//and they are 1 (one beam per cell) if the step is smaller than that.
func (S TiltSelector) Factors() (fy, fx int) {
	if S.Mode != Rectangular {
		return S.FY, S.FX
	}
	minX := S.Lambda / S.CellX
	minY := S.Lambda / S.CellY
	fx, fy = 1, 1
	if S.StepX >= minX {
		fx = int(math.Round(S.StepX / minX))
	}
	if S.StepY >= minY {
		fy = int(math.Round(S.StepY / minY))
	}
	return fy, fx
}

//Select returns the beams inside the tilt window that lie on the grid given by Factors
//and inside the anti-aliasing mask, with their tilts.
func (S TiltSelector) Select(G *Grid) (*BeamSet, error) {
	if err := S.check(); err != nil {
		return nil, err
	}
	fy, fx := S.Factors()
	ys, xs := G.meshIndexes()
	B := &BeamSet{Mask: grid.NewMask(G.Rows, G.Cols)}
	for j := 0; j < G.Rows; j++ {
		for i := 0; i < G.Cols; i++ {
			tx := G.Qxa.At(j, i) * S.Lambda
			ty := G.Qya.At(j, i) * S.Lambda
			relX := math.Abs(tx - S.OffsetX)
			relY := math.Abs(ty - S.OffsetY)
			var in bool
			if S.Mode == Rectangular {
				in = (relX <= S.MaxX && relY <= S.MaxY) && (relX >= S.MinX || relY >= S.MinY)
			} else {
				r := math.Hypot(relX, relY)
				in = r <= S.MaxR && r >= S.MinR
			}
			if !in || ys[j]%fy != 0 || xs[i]%fx != 0 || !G.Mask.At(j, i) {
				continue
			}
			B.Mask.Set(j, i, true)
			B.Tilts = append(B.Tilts, Tilt{X: tx, Y: ty, XInd: xs[i] / fx, YInd: ys[j] / fy})
		}
	}
	B.number()
	return B, nil
}
