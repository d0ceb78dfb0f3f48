/*
 * spectral.go, part of goPrism.
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

//Package spectral implements batched, in-place 2D discrete Fourier transforms
//on top of gonum's 1D complex FFT.
//
//As with FFTW, neither transform is normalized: an Inverse after a Forward
//gives the original data times rows*cols. Callers must rescale with Scale.
//
//A Plan holds work buffers and is not safe for concurrent use. Plans are meant to
//be built once per worker. Creation and destruction of plans go through a single package
//lock; executing a plan does not.
package spectral

import (
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	planLock  sync.Mutex
	livePlans int
)

//LivePlans returns the number of plans created and not yet destroyed.
func LivePlans() int {
	planLock.Lock()
	defer planLock.Unlock()
	return livePlans
}

//Plan is a 2D transform for a stack of up to batch rows x cols slabs,
//stored contiguously in row-major order.
type Plan struct {
	rows, cols int
	batch      int
	rowFFT     *fourier.CmplxFFT
	colFFT     *fourier.CmplxFFT
	col        []complex128
	destroyed  bool
}

//NewPlan returns a plan for batch slabs of rows x cols. Panics on non-positive sizes.
func NewPlan(rows, cols, batch int) *Plan {
	if rows <= 0 || cols <= 0 || batch <= 0 {
		panic(ErrPlanSize)
	}
	planLock.Lock()
	defer planLock.Unlock()
	P := &Plan{
		rows:   rows,
		cols:   cols,
		batch:  batch,
		rowFFT: fourier.NewCmplxFFT(cols),
		colFFT: fourier.NewCmplxFFT(rows),
		col:    make([]complex128, rows),
	}
	livePlans++
	return P
}

//Destroy releases the plan. A destroyed plan can't be executed.
//Calling Destroy more than once does nothing.
func (P *Plan) Destroy() {
	planLock.Lock()
	defer planLock.Unlock()
	if P.destroyed {
		return
	}
	P.destroyed = true
	P.rowFFT = nil
	P.colFFT = nil
	P.col = nil
	livePlans--
}

//Dims returns the rows, columns and batch size of the plan.
func (P *Plan) Dims() (int, int, int) {
	return P.rows, P.cols, P.batch
}

//Len is the number of elements in one slab.
func (P *Plan) Len() int {
	return P.rows * P.cols
}

//slabs checks data and returns the number of slabs it contains.
func (P *Plan) slabs(data []complex128) int {
	if P.destroyed {
		panic(ErrDestroyed)
	}
	l := P.Len()
	if len(data) == 0 || len(data)%l != 0 || len(data)/l > P.batch {
		panic(ErrShape)
	}
	return len(data) / l
}

//Forward replaces each slab in data with its (unnormalized) 2D DFT,
//using the exp(-2 pi i jk/n) kernel. data can hold fewer slabs than
//the plan's batch, but none can be partial.
func (P *Plan) Forward(data []complex128) {
	n := P.slabs(data)
	for b := 0; b < n; b++ {
		P.transform(data[b*P.Len():(b+1)*P.Len()], true)
	}
}

//Inverse replaces each slab in data with its unnormalized inverse 2D DFT,
//using the exp(+2 pi i jk/n) kernel.
func (P *Plan) Inverse(data []complex128) {
	n := P.slabs(data)
	for b := 0; b < n; b++ {
		P.transform(data[b*P.Len():(b+1)*P.Len()], false)
	}
}

func (P *Plan) transform(slab []complex128, forward bool) {
	var row, col func(dst, src []complex128) []complex128
	if forward {
		row = P.rowFFT.Coefficients
		col = P.colFFT.Coefficients
	} else {
		row = P.rowFFT.Sequence
		col = P.colFFT.Sequence
	}
	for j := 0; j < P.rows; j++ {
		r := slab[j*P.cols : (j+1)*P.cols]
		row(r, r)
	}
	if P.rows == 1 {
		return
	}
	for i := 0; i < P.cols; i++ {
		for j := 0; j < P.rows; j++ {
			P.col[j] = slab[j*P.cols+i]
		}
		col(P.col, P.col)
		for j := 0; j < P.rows; j++ {
			slab[j*P.cols+i] = P.col[j]
		}
	}
}
