/*
 * smatrix.go, part of goPrism.
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
	"github.com/rmera/goprism/propagate"
	"github.com/rmera/goprism/qspace"
	"github.com/rmera/goprism/slicer"
	"github.com/sirupsen/logrus"
)

//SMatrix is the compact scattering matrix, with the sampling needed to use it.
type SMatrix struct {
	Data         *grid.CVolume //[beam, row, col] on the cropped grid
	Beams        *qspace.BeamSet
	Grid         *qspace.Grid   //full spectral grid
	Output       *qspace.Output //cropped grid
	QyInd, QxInd []int          //rows and columns of Grid kept in Output
	BatchSize    int            //beams propagated together by each worker, 0 for imported matrices
}

//NumberBeams returns the number of beams in the matrix.
func (S *SMatrix) NumberBeams() int {
	return S.Beams.Len()
}

//sampling builds the spectral grid, the beams and the crop for a rows x cols image.
func sampling(P *Parameters, rows, cols int, pixel [2]float64) (*qspace.Grid, *qspace.BeamSet, []int, []int, error) {
	G, err := qspace.NewGrid(rows, cols, pixel, P.Meta.RealspacePixelSize)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sel, err := P.Selector()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	B, err := sel.Select(G)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if B.Len() == 0 {
		return nil, nil, nil, nil, newError(ConfigError, "sampling", "no beams selected")
	}
	qy, qx, err := qspace.Crop(rows, cols)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return G, B, qy, qx, nil
}

//BuildCompactMatrix propagates the beams selected for P through the slices of the potential pot,
//as returned by ComputePotential, and returns the compact S-matrix. The slices of pot must have
//the extents in P.ImageSize. The beams are split among P.Meta.NumThreads workers, in batches
//of at most P.Meta.BatchSizeTargetCPU. Each beam is computed independently, so the result does
//not depend on the number of workers or the batch size.
func BuildCompactMatrix(P *Parameters, pot *grid.Volume) (*SMatrix, error) {
	if P == nil || P.Meta == nil {
		return nil, newError(ConfigError, "BuildCompactMatrix", "no parameters")
	}
	if pot == nil {
		return nil, newError(ConfigError, "BuildCompactMatrix", "no potential")
	}
	log := P.logger()
	_, rows, cols := pot.Dims()
	if rows != P.ImageSize[0] || cols != P.ImageSize[1] {
		return nil, newError(ConfigError, "BuildCompactMatrix", "the potential is %dx%d but the parameters give %dx%d pixels", rows, cols, P.ImageSize[0], P.ImageSize[1])
	}
	G, B, qy, qx, err := sampling(P, rows, cols, P.PixelSize)
	if err != nil {
		return nil, errDecorate(err, ConfigError, "BuildCompactMatrix")
	}
	hrtem := P.Meta.algorithm() == HRTEM
	prop, back := G.Propagators(P.Lambda, P.Meta.SliceThickness, P.Cell[0])
	trans, err := slicer.Transmission(pot, P.Sigma)
	if err != nil {
		return nil, errDecorate(err, ResourceError, "BuildCompactMatrix")
	}
	nb := B.Len()
	S, err := grid.NewCVolume(nb, len(qy), len(qx))
	if err != nil {
		return nil, errDecorate(err, ResourceError, "BuildCompactMatrix")
	}
	setup := &propagate.Setup{
		Rows:          rows,
		Cols:          cols,
		Trans:         trans,
		Prop:          prop,
		Back:          back,
		BackPropagate: hrtem,
		Beams:         B.Index,
		QyInd:         qy,
		QxInd:         qx,
	}
	if err := setup.Check(); err != nil {
		return nil, newError(ConfigError, "BuildCompactMatrix", "%s", err.Error())
	}
	threads := P.threads()
	batch := propagate.BatchSize(P.Meta.BatchSizeTargetCPU, nb, threads)
	log.WithFields(logrus.Fields{"beams": nb, "batch": batch, "threads": threads, "output": [2]int{len(qy), len(qx)}}).Info("Computing compact S-matrix")
	D := dispatch.New(0, nb)
	prog := newCounter(P.Progress, nb)
	err = dispatch.Run(threads, func(id int) error {
		var W *propagate.Worker
		defer func() {
			if W != nil {
				W.Close()
			}
		}()
		return D.Drain(batch, func(start, stop int) error {
			if W == nil {
				var err error
				if W, err = propagate.NewWorker(setup, batch); err != nil {
					return err
				}
				log.WithField("worker", id).Debug("Transform plans created")
			}
			if err := W.Propagate(start, stop, S); err != nil {
				return err
			}
			prog.add(stop - start)
			return nil
		})
	})
	if err != nil {
		return nil, errDecorate(err, WorkerError, "BuildCompactMatrix")
	}
	return &SMatrix{Data: S, Beams: B, Grid: G, Output: qspace.Downsample(G, B, qy, qx), QyInd: qy, QxInd: qx, BatchSize: batch}, nil
}

//ImportCompactMatrix rebuilds the sampling of a compact S-matrix computed earlier with the parameters
//in P, from its data alone. The full grid is twice the extent of the stored slabs. It returns a
//ConfigError if the number of slabs doesn't match the number of beams selected for P.
func ImportCompactMatrix(P *Parameters, data *grid.CVolume) (*SMatrix, error) {
	if P == nil || P.Meta == nil || data == nil {
		return nil, newError(ConfigError, "ImportCompactMatrix", "no parameters or data")
	}
	nb, r, c := data.Dims()
	rows, cols := 2*r, 2*c
	pixel := [2]float64{P.Cell[1] / float64(rows), P.Cell[2] / float64(cols)}
	G, B, qy, qx, err := sampling(P, rows, cols, pixel)
	if err != nil {
		return nil, errDecorate(err, ConfigError, "ImportCompactMatrix")
	}
	if B.Len() != nb {
		return nil, newError(ConfigError, "ImportCompactMatrix", "the matrix has %d beams but the parameters select %d", nb, B.Len())
	}
	P.logger().WithFields(logrus.Fields{"beams": nb, "rows": rows, "cols": cols}).Info("Imported compact S-matrix")
	return &SMatrix{Data: data, Beams: B, Grid: G, Output: qspace.Downsample(G, B, qy, qx), QyInd: qy, QxInd: qx}, nil
}
