/*
 * metadata.go, part of goPrism.
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
	"runtime"
	"strings"
)

//Algorithms
const (
	PRISM = "prism" //regular grid of beams up to AlphaBeamMax
	HRTEM = "hrtem" //tilt series, with back-propagation to the middle of the sample
)

//Tilt window shapes for the HRTEM algorithm.
const (
	RectangularTilt = "rectangular"
	RadialTilt      = "radial"
)

//Metadata contains the user parameters of a simulation. The tags
//allow it to be read from a YAML file, directly or through viper.
//Lengths are in Angstrom, angles in rad, and energies in eV.
//Pairs and triads that refer to axes are ordered y, x and z, y, x
//like the arrays, except for Tile which is x, y, z.
type Metadata struct {
	InterpolationFactorY int        `yaml:"interpolationFactorY" mapstructure:"interpolationFactorY"`
	InterpolationFactorX int        `yaml:"interpolationFactorX" mapstructure:"interpolationFactorX"`
	RealspacePixelSize   [2]float64 `yaml:"realspacePixelSize" mapstructure:"realspacePixelSize"`
	PotBound             float64    `yaml:"potBound" mapstructure:"potBound"`
	SliceThickness       float64    `yaml:"sliceThickness" mapstructure:"sliceThickness"`
	Tile                 [3]int     `yaml:"tile" mapstructure:"tile"`
	E0                   float64    `yaml:"E0" mapstructure:"E0"`
	AlphaBeamMax         float64    `yaml:"alphaBeamMax" mapstructure:"alphaBeamMax"`
	NumThreads           int        `yaml:"numThreads" mapstructure:"numThreads"`
	NumGPUs              int        `yaml:"numGPUs" mapstructure:"numGPUs"`
	BatchSizeTargetCPU   int        `yaml:"batchSizeTargetCPU" mapstructure:"batchSizeTargetCPU"`
	Algorithm            string     `yaml:"algorithm" mapstructure:"algorithm"`
	IncludeThermal       bool       `yaml:"includeThermalEffects" mapstructure:"includeThermalEffects"`
	IncludeOccupancy     bool       `yaml:"includeOccupancy" mapstructure:"includeOccupancy"`
	RandomSeed           uint64     `yaml:"randomSeed" mapstructure:"randomSeed"`
	TiltMode             string     `yaml:"tiltMode" mapstructure:"tiltMode"`
	XTiltOffset          float64    `yaml:"xTiltOffset" mapstructure:"xTiltOffset"`
	YTiltOffset          float64    `yaml:"yTiltOffset" mapstructure:"yTiltOffset"`
	MinXTilt             float64    `yaml:"minXTilt" mapstructure:"minXTilt"`
	MaxXTilt             float64    `yaml:"maxXTilt" mapstructure:"maxXTilt"`
	MinYTilt             float64    `yaml:"minYTilt" mapstructure:"minYTilt"`
	MaxYTilt             float64    `yaml:"maxYTilt" mapstructure:"maxYTilt"`
	MinRTilt             float64    `yaml:"minRTilt" mapstructure:"minRTilt"`
	MaxRTilt             float64    `yaml:"maxRTilt" mapstructure:"maxRTilt"`
	XTiltStep            float64    `yaml:"xTiltStep" mapstructure:"xTiltStep"`
	YTiltStep            float64    `yaml:"yTiltStep" mapstructure:"yTiltStep"`
	ParamsFile           string     `yaml:"paramsFile,omitempty" mapstructure:"paramsFile"`
}

//DefaultMetadata returns the default parameters: 80 keV, 24 mrad, f=4, 0.1 A pixels,
//2 A slices, one thread per CPU.
func DefaultMetadata() *Metadata {
	return &Metadata{
		InterpolationFactorY: 4,
		InterpolationFactorX: 4,
		RealspacePixelSize:   [2]float64{0.1, 0.1},
		PotBound:             2,
		SliceThickness:       2,
		Tile:                 [3]int{1, 1, 1},
		E0:                   80e3,
		AlphaBeamMax:         0.024,
		NumThreads:           runtime.NumCPU(),
		BatchSizeTargetCPU:   1,
		Algorithm:            PRISM,
		TiltMode:             RectangularTilt,
		MaxXTilt:             0.001,
		MaxYTilt:             0.001,
		MaxRTilt:             0.001,
		XTiltStep:            0.0001,
		YTiltStep:            0.0001,
	}
}

func positive(v ...float64) bool {
	for _, f := range v {
		if !(f > 0) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

//Check returns a ConfigError if any of the parameters is invalid. Algorithm and TiltMode are
//compared without regard to case. The tilt windows are checked when the beams are selected.
func (M *Metadata) Check() error {
	var msg string
	switch {
	case M.InterpolationFactorX < 1 || M.InterpolationFactorY < 1:
		msg = fmt.Sprintf("interpolation factors must be positive, got %d, %d", M.InterpolationFactorY, M.InterpolationFactorX)
	case !positive(M.RealspacePixelSize[0], M.RealspacePixelSize[1]):
		msg = fmt.Sprintf("invalid realspace pixel size %v", M.RealspacePixelSize)
	case !positive(M.PotBound):
		msg = fmt.Sprintf("invalid potential bound %v", M.PotBound)
	case !positive(M.SliceThickness):
		msg = fmt.Sprintf("invalid slice thickness %v", M.SliceThickness)
	case M.Tile[0] < 1 || M.Tile[1] < 1 || M.Tile[2] < 1:
		msg = fmt.Sprintf("invalid tiling %v", M.Tile)
	case !positive(M.E0):
		msg = fmt.Sprintf("invalid beam energy %v", M.E0)
	case M.AlphaBeamMax < 0:
		msg = fmt.Sprintf("negative maximum beam angle %v", M.AlphaBeamMax)
	case M.NumThreads < 1:
		msg = fmt.Sprintf("at least one thread is needed, got %d", M.NumThreads)
	case M.BatchSizeTargetCPU < 1:
		msg = fmt.Sprintf("invalid batch size %d", M.BatchSizeTargetCPU)
	case M.NumGPUs < 0:
		msg = fmt.Sprintf("invalid number of GPUs %d", M.NumGPUs)
	case M.algorithm() != PRISM && M.algorithm() != HRTEM:
		msg = fmt.Sprintf("unknown algorithm %q", M.Algorithm)
	case M.algorithm() == HRTEM && M.tiltMode() != RectangularTilt && M.tiltMode() != RadialTilt:
		msg = fmt.Sprintf("unknown tilt mode %q", M.TiltMode)
	default:
		return nil
	}
	return newError(ConfigError, "Metadata.Check", "%s", msg)
}

func (M *Metadata) algorithm() string {
	return strings.ToLower(strings.TrimSpace(M.Algorithm))
}

func (M *Metadata) tiltMode() string {
	return strings.ToLower(strings.TrimSpace(M.TiltMode))
}
