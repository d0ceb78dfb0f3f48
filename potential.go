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

package prism

import (
	"github.com/rmera/goprism/dispatch"
	"github.com/rmera/goprism/grid"
	"github.com/rmera/goprism/kirkland"
	"github.com/rmera/goprism/slicer"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

//ComputePotential returns the projected potential of each slice of the structure in P, as a volume
//indexed [slice, row, col] with P.ImageSize slabs. Slices are computed by P.Meta.NumThreads workers
//taking one slice at a time. The result depends on P.Meta.RandomSeed (if thermal effects or occupancy
//are included) but not on the number of workers.
func ComputePotential(P *Parameters) (*grid.Volume, error) {
	if P == nil || P.Meta == nil {
		return nil, newError(ConfigError, "ComputePotential", "no parameters")
	}
	log := P.logger()
	M := P.Meta
	xvec, xr := kirkland.Axis(M.PotBound, P.PixelSize[1])
	yvec, yr := kirkland.Axis(M.PotBound, P.PixelSize[0])
	table, err := kirkland.NewTable(P.Params, species(P.Atoms), xr, yr)
	if err != nil {
		return nil, errDecorate(err, ConfigError, "ComputePotential")
	}
	log.WithFields(logrus.Fields{"species": table.Species(), "kernel": [2]int{len(yvec), len(xvec)}}).Debug("Computed potential kernels")
	opt := slicer.Options{Thermal: M.IncludeThermal, Occupancy: M.IncludeOccupancy, Seed: M.RandomSeed}
	rows, cols := P.ImageSize[0], P.ImageSize[1]
	S, err := slicer.New(sites(P.Atoms, P.Cell), M.SliceThickness, table, xvec, yvec, P.PixelSize, rows, cols, opt)
	if err != nil {
		return nil, errDecorate(err, ConfigError, "ComputePotential")
	}
	num := S.NumPlanes()
	pot, err := grid.NewVolume(num, rows, cols)
	if err != nil {
		return nil, errDecorate(err, ResourceError, "ComputePotential")
	}
	threads := P.threads()
	log.WithFields(logrus.Fields{"planes": num, "rows": rows, "cols": cols, "threads": threads}).Info("Computing projected potential slices")
	D := dispatch.New(0, num)
	prog := newCounter(P.Progress, num)
	err = dispatch.Run(threads, func(id int) error {
		return D.Drain(1, func(start, stop int) error {
			for k := start; k < stop; k++ {
				S.Slice(k, pot.Slab(k))
			}
			prog.add(stop - start)
			return nil
		})
	})
	if err != nil {
		return nil, errDecorate(err, WorkerError, "ComputePotential")
	}
	mean, std := stat.MeanStdDev(pot.Data(), nil)
	log.WithFields(logrus.Fields{"min": pot.Min(), "max": pot.Max(), "mean": mean, "std": std}).Debug("Projected potential computed")
	return pot, nil
}
