/*
 * propagate.go, part of goPrism.
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

//Package propagate propagates plane waves through the slices of a specimen
//(multislice), and stores the cropped exit waves as the slabs of a compact
//scattering matrix.
package propagate

import (
	"fmt"

	"github.com/rmera/goprism/grid"
	"github.com/rmera/goprism/spectral"
)

//Setup is the read-only data shared by all workers.
type Setup struct {
	Rows, Cols    int
	Trans         *grid.CVolume //transmission function, one slab per slice
	Prop          []complex128  //free-space propagator for one slice
	Back          []complex128  //back-propagator, used only if BackPropagate is true
	BackPropagate bool
	Beams         []int //flat spectral index of each beam
	QyInd, QxInd  []int //crop indexes
}

//Check returns an error if the parts of the setup are not consistent with each other.
func (s *Setup) Check() error {
	n := s.Rows * s.Cols
	if s.Trans == nil {
		return fmt.Errorf("no transmission function")
	}
	_, r, c := s.Trans.Dims()
	switch {
	case r != s.Rows || c != s.Cols:
		return fmt.Errorf("transmission slices are %dx%d, want %dx%d", r, c, s.Rows, s.Cols)
	case len(s.Prop) != n:
		return fmt.Errorf("propagator has %d elements, want %d", len(s.Prop), n)
	case s.BackPropagate && len(s.Back) != n:
		return fmt.Errorf("back-propagator has %d elements, want %d", len(s.Back), n)
	case len(s.QyInd) == 0 || len(s.QxInd) == 0:
		return fmt.Errorf("empty crop")
	}
	for _, b := range s.Beams {
		if b < 0 || b >= n {
			return fmt.Errorf("beam index %d outside the %dx%d grid", b, s.Rows, s.Cols)
		}
	}
	return nil
}

//BatchSize returns the number of beams propagated together by each worker:
//min(target, max(1, beams/threads)).
func BatchSize(target, beams, threads int) int {
	if threads < 1 {
		threads = 1
	}
	b := beams / threads
	if b < 1 {
		b = 1
	}
	if target > 0 && target < b {
		return target
	}
	return b
}

//Worker holds the buffers and transform plans for one goroutine. The plans
//are created once in NewWorker and released by Close.
type Worker struct {
	s        *Setup
	batch    int
	plan     *spectral.Plan
	small    *spectral.Plan
	psi      []complex128
	psiSmall []complex128
}

//NewWorker returns a worker that propagates up to batch beams at a time.
func NewWorker(s *Setup, batch int) (*Worker, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}
	if batch < 1 {
		batch = 1
	}
	W := &Worker{s: s, batch: batch}
	W.plan = spectral.NewPlan(s.Rows, s.Cols, batch)
	W.small = spectral.NewPlan(len(s.QyInd), len(s.QxInd), 1)
	W.psi = make([]complex128, batch*s.Rows*s.Cols)
	W.psiSmall = make([]complex128, len(s.QyInd)*len(s.QxInd))
	return W, nil
}

//Close destroys the worker's plans.
func (W *Worker) Close() {
	W.plan.Destroy()
	W.small.Destroy()
}

//Propagate computes beams [start, stop) and writes each cropped exit wave to its slab of S,
//which has one slab per beam. Ranges larger than the worker's batch are split.
func (W *Worker) Propagate(start, stop int, S *grid.CVolume) error {
	nb, r, c := S.Dims()
	if r != len(W.s.QyInd) || c != len(W.s.QxInd) || nb != len(W.s.Beams) {
		return fmt.Errorf("compact matrix is %dx%dx%d, want %dx%dx%d", nb, r, c, len(W.s.Beams), len(W.s.QyInd), len(W.s.QxInd))
	}
	if start < 0 || stop > nb || start > stop {
		return fmt.Errorf("beam range [%d,%d) outside [0,%d)", start, stop, nb)
	}
	for b := start; b < stop; b += W.batch {
		e := b + W.batch
		if e > stop {
			e = stop
		}
		W.batchPropagate(b, e, S)
	}
	return nil
}

func (W *Worker) batchPropagate(start, stop int, S *grid.CVolume) {
	s := W.s
	N := s.Rows * s.Cols
	n := stop - start
	psi := W.psi[:n*N]
	for i := range psi {
		psi[i] = 0
	}
	for b := 0; b < n; b++ {
		psi[b*N+s.Beams[start+b]] = 1
	}
	scale := 1 / float64(N)
	W.plan.Inverse(psi)
	spectral.Scale(psi, scale)
	planes, _, _ := s.Trans.Dims()
	for k := 0; k < planes; k++ {
		spectral.MulTiled(psi, s.Trans.RawSlab(k)) //transmit
		W.plan.Forward(psi)
		spectral.MulTiled(psi, s.Prop) //propagate
		W.plan.Inverse(psi)
		spectral.Scale(psi, scale)
	}
	W.plan.Forward(psi)
	if s.BackPropagate {
		spectral.MulTiled(psi, s.Back)
	}
	nSmall := float64(len(W.psiSmall))
	for b := 0; b < n; b++ {
		wave := psi[b*N : (b+1)*N]
		p := 0
		for _, j := range s.QyInd {
			for _, i := range s.QxInd {
				W.psiSmall[p] = wave[j*s.Cols+i]
				p++
			}
		}
		W.small.Inverse(W.psiSmall)
		spectral.Scale(W.psiSmall, 1/nSmall)
		copy(S.RawSlab(start+b), W.psiSmall)
	}
}
