/*
 * parameters.go, part of goPrism.
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
	"github.com/rmera/goprism/qspace"
	"github.com/sirupsen/logrus"
)

//Physical constants, SI.
const (
	ElectronMass    = 9.109383e-31
	ElementalCharge = 1.602177e-19
	SpeedOfLight    = 299792458.0
	Planck          = 6.62607e-34
)

//Wavelength returns the relativistic electron wavelength, in Angstrom, for an
//accelerating voltage of E0 V.
func Wavelength(E0 float64) float64 {
	m, e, c, h := ElectronMass, ElementalCharge, SpeedOfLight, Planck
	return h / math.Sqrt(2*m*e*E0) / math.Sqrt(1+e*E0/2/m/c/c) * 1e10
}

//Interaction returns the interaction parameter sigma (rad/(V*Angstrom)) for an accelerating voltage E0
//and the corresponding wavelength lambda.
func Interaction(E0, lambda float64) float64 {
	m, e, c := ElectronMass, ElementalCharge, SpeedOfLight
	return (2 * math.Pi / lambda / E0) * (m*c*c + e*E0) / (2*m*c*c + e*E0)
}

//ImageSize returns the number of pixels along an axis of length cell, for a real-space
//pixel px and an interpolation factor f. The result is a multiple of 4f, and at least 4.
func ImageSize(cell, px float64, f int) int {
	ff := 4 * float64(f)
	return int(math.Max(4, ff*math.Round(cell/px/ff)))
}

//Parameters contains all the data needed for a calculation. It is built by NewParameters
//and must not be modified while a stage runs.
type Parameters struct {
	Meta      *Metadata
	Atoms     []Atom     //in the tiled cell
	Cell      [3]float64 //tiled cell, z, y, x, Angstrom
	ImageSize [2]int     //rows, cols
	PixelSize [2]float64 //y, x
	Lambda    float64    //wavelength, Angstrom
	Sigma     float64    //interaction parameter
	Params    kirkland.ParamSet
	Log       *logrus.Logger
	Progress  Progresser //can be nil
}

//NewParameters checks meta and builds the parameters for a calculation on the given atoms, whose
//fractional coordinates refer to cell (z, y, x). The atoms and cell are tiled as given by meta.Tile.
//The potential parameters are the built-in ones, the logger is the logrus standard logger, and there
//is no progress reporting. All of them can be replaced on the returned value.
func NewParameters(meta *Metadata, atoms []Atom, cell [3]float64) (*Parameters, error) {
	if meta == nil {
		meta = DefaultMetadata()
	}
	if err := meta.Check(); err != nil {
		return nil, errDecorate(err, ConfigError, "NewParameters")
	}
	if len(atoms) == 0 {
		return nil, newError(ConfigError, "NewParameters", "no atoms given")
	}
	for i, a := range atoms {
		if err := a.check(); err != nil {
			return nil, newError(ConfigError, "NewParameters", "atom %d: %s", i, err.Error())
		}
	}
	if !positive(cell[:]...) {
		return nil, newError(ConfigError, "NewParameters", "invalid cell %v", cell)
	}
	tx, ty, tz := meta.Tile[0], meta.Tile[1], meta.Tile[2]
	P := &Parameters{
		Meta:   meta,
		Atoms:  Tile(atoms, tx, ty, tz),
		Cell:   [3]float64{cell[0] * float64(tz), cell[1] * float64(ty), cell[2] * float64(tx)},
		Params: kirkland.Builtin(),
		Log:    logrus.StandardLogger(),
	}
	P.ImageSize[0] = ImageSize(P.Cell[1], meta.RealspacePixelSize[0], meta.InterpolationFactorY)
	P.ImageSize[1] = ImageSize(P.Cell[2], meta.RealspacePixelSize[1], meta.InterpolationFactorX)
	P.PixelSize[0] = P.Cell[1] / float64(P.ImageSize[0])
	P.PixelSize[1] = P.Cell[2] / float64(P.ImageSize[1])
	P.Lambda = Wavelength(meta.E0)
	P.Sigma = Interaction(meta.E0, P.Lambda)
	return P, nil
}

func (P *Parameters) logger() *logrus.Logger {
	if P.Log == nil {
		return logrus.StandardLogger()
	}
	return P.Log
}

func (P *Parameters) threads() int {
	if P.Meta.NumGPUs > 0 {
		P.logger().Warnf("%d GPUs requested, but only CPU workers are available", P.Meta.NumGPUs)
	}
	return P.Meta.NumThreads
}

//Selector returns the beam selection policy for the algorithm in P.Meta.
func (P *Parameters) Selector() (qspace.Selector, error) {
	M := P.Meta
	switch M.algorithm() {
	case PRISM:
		return qspace.RegularSelector{AlphaMax: M.AlphaBeamMax, Lambda: P.Lambda, FY: M.InterpolationFactorY, FX: M.InterpolationFactorX}, nil
	case HRTEM:
		mode := qspace.Rectangular
		if M.tiltMode() == RadialTilt {
			mode = qspace.Radial
		}
		return qspace.TiltSelector{
			Mode:    mode,
			Lambda:  P.Lambda,
			CellY:   P.Cell[1],
			CellX:   P.Cell[2],
			OffsetY: M.YTiltOffset,
			OffsetX: M.XTiltOffset,
			MinY:    M.MinYTilt,
			MaxY:    M.MaxYTilt,
			MinX:    M.MinXTilt,
			MaxX:    M.MaxXTilt,
			MinR:    M.MinRTilt,
			MaxR:    M.MaxRTilt,
			StepY:   M.YTiltStep,
			StepX:   M.XTiltStep,
			FY:      M.InterpolationFactorY,
			FX:      M.InterpolationFactorX,
		}, nil
	}
	return nil, newError(ConfigError, "Parameters.Selector", "unknown algorithm %q", M.Algorithm)
}

func (P *Parameters) String() string {
	return fmt.Sprintf("%d atoms, cell %v A, %dx%d pixels of %.4gx%.4g A, lambda %.5g A, sigma %.5g",
		len(P.Atoms), P.Cell, P.ImageSize[0], P.ImageSize[1], P.PixelSize[0], P.PixelSize[1], P.Lambda, P.Sigma)
}
