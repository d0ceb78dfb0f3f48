/*
 * grid.go, part of goPrism.
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

//Package grid provides the owned, bounds-checked 3D arrays used by goPrism:
//a real Volume (the sliced potential) and a complex CVolume (transmission functions
//and the compact S-matrix). Both are stored row-major as [slab, row, col].
//Each slab can be obtained as a gonum matrix that shares memory with the volume,
//which is how work units get their own, non-overlapping, view of the data.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//MaxElements is the largest number of elements a single volume can have.
//Larger requests are reported as errors before anything is allocated. This is
//the only guard against huge volumes: running out of memory is a fatal error
//in Go, not a panic, so it can't be turned into an error.
const MaxElements = 1 << 34

//Volume is a 3D array of float64 indexed [slab, row, col].
type Volume struct {
	slabs, rows, cols int
	data              []float64
}

//NewVolume returns a zero-filled volume with the given extents.
//It returns an error if any extent is not positive, or if the
//total size overflows or exceeds MaxElements.
func NewVolume(slabs, rows, cols int) (*Volume, error) {
	n, err := size(slabs, rows, cols)
	if err != nil {
		err.deco = append(err.deco, "NewVolume")
		return nil, err
	}
	data, err := allocFloat(n)
	if err != nil {
		err.deco = append(err.deco, "NewVolume")
		return nil, err
	}
	return &Volume{slabs: slabs, rows: rows, cols: cols, data: data}, nil
}

//VolumeFromData returns a volume that uses data as its backing array.
//Panics if the length of data doesn't match the extents.
func VolumeFromData(slabs, rows, cols int, data []float64) *Volume {
	if slabs*rows*cols != len(data) || slabs <= 0 || rows <= 0 || cols <= 0 {
		panic(ErrShape)
	}
	return &Volume{slabs: slabs, rows: rows, cols: cols, data: data}
}

//Dims returns the number of slabs, rows and columns of the volume.
func (V *Volume) Dims() (int, int, int) {
	return V.slabs, V.rows, V.cols
}

//SlabLen returns the number of elements in one slab.
func (V *Volume) SlabLen() int {
	return V.rows * V.cols
}

func (V *Volume) index(k, j, i int) int {
	if k < 0 || k >= V.slabs || j < 0 || j >= V.rows || i < 0 || i >= V.cols {
		panic(ErrIndexOutOfRange)
	}
	return (k*V.rows+j)*V.cols + i
}

//At returns the element at slab k, row j, column i. Panics if out of range.
func (V *Volume) At(k, j, i int) float64 {
	return V.data[V.index(k, j, i)]
}

//Set sets the element at slab k, row j, column i to v. Panics if out of range.
func (V *Volume) Set(k, j, i int, v float64) {
	V.data[V.index(k, j, i)] = v
}

//RawSlab returns the backing slice for slab k.
//Changes to the returned slice are reflected in the volume.
func (V *Volume) RawSlab(k int) []float64 {
	if k < 0 || k >= V.slabs {
		panic(ErrIndexOutOfRange)
	}
	l := V.SlabLen()
	return V.data[k*l : (k+1)*l : (k+1)*l]
}

//Slab returns a rows x cols gonum matrix viewing slab k.
func (V *Volume) Slab(k int) *mat.Dense {
	return mat.NewDense(V.rows, V.cols, V.RawSlab(k))
}

//Data returns the whole backing slice, in [slab, row, col] order.
func (V *Volume) Data() []float64 {
	return V.data
}

//Min and Max return the extreme values in the volume.
func (V *Volume) Min() float64 { return floats.Min(V.data) }
func (V *Volume) Max() float64 { return floats.Max(V.data) }

//Copy returns a deep copy of the volume.
func (V *Volume) Copy() *Volume {
	d := make([]float64, len(V.data))
	copy(d, V.data)
	return &Volume{slabs: V.slabs, rows: V.rows, cols: V.cols, data: d}
}

func (V *Volume) String() string {
	return fmt.Sprintf("grid.Volume %dx%dx%d", V.slabs, V.rows, V.cols)
}

//CVolume is a 3D array of complex128 indexed [slab, row, col].
type CVolume struct {
	slabs, rows, cols int
	data              []complex128
}

//NewCVolume returns a zero-filled complex volume with the given extents.
//Errors are reported as in NewVolume.
func NewCVolume(slabs, rows, cols int) (*CVolume, error) {
	n, err := size(slabs, rows, cols)
	if err != nil {
		err.deco = append(err.deco, "NewCVolume")
		return nil, err
	}
	data, err := allocComplex(n)
	if err != nil {
		err.deco = append(err.deco, "NewCVolume")
		return nil, err
	}
	return &CVolume{slabs: slabs, rows: rows, cols: cols, data: data}, nil
}

//CVolumeFromData returns a complex volume that uses data as its backing array.
//Panics if the length of data doesn't match the extents.
func CVolumeFromData(slabs, rows, cols int, data []complex128) *CVolume {
	if slabs*rows*cols != len(data) || slabs <= 0 || rows <= 0 || cols <= 0 {
		panic(ErrShape)
	}
	return &CVolume{slabs: slabs, rows: rows, cols: cols, data: data}
}

//Dims returns the number of slabs, rows and columns of the volume.
func (C *CVolume) Dims() (int, int, int) {
	return C.slabs, C.rows, C.cols
}

//SlabLen returns the number of elements in one slab.
func (C *CVolume) SlabLen() int {
	return C.rows * C.cols
}

func (C *CVolume) index(k, j, i int) int {
	if k < 0 || k >= C.slabs || j < 0 || j >= C.rows || i < 0 || i >= C.cols {
		panic(ErrIndexOutOfRange)
	}
	return (k*C.rows+j)*C.cols + i
}

//At returns the element at slab k, row j, column i. Panics if out of range.
func (C *CVolume) At(k, j, i int) complex128 {
	return C.data[C.index(k, j, i)]
}

//Set sets the element at slab k, row j, column i to v. Panics if out of range.
func (C *CVolume) Set(k, j, i int, v complex128) {
	C.data[C.index(k, j, i)] = v
}

//RawSlab returns the backing slice for slab k.
func (C *CVolume) RawSlab(k int) []complex128 {
	if k < 0 || k >= C.slabs {
		panic(ErrIndexOutOfRange)
	}
	l := C.SlabLen()
	return C.data[k*l : (k+1)*l : (k+1)*l]
}

//Slab returns a rows x cols gonum complex matrix viewing slab k.
func (C *CVolume) Slab(k int) *mat.CDense {
	return mat.NewCDense(C.rows, C.cols, C.RawSlab(k))
}

//Data returns the whole backing slice, in [slab, row, col] order.
func (C *CVolume) Data() []complex128 {
	return C.data
}

func (C *CVolume) String() string {
	return fmt.Sprintf("grid.CVolume %dx%dx%d", C.slabs, C.rows, C.cols)
}

//Mask is a 2D boolean array, row-major.
type Mask struct {
	rows, cols int
	d          []bool
}

//NewMask returns an all-false mask. Panics on non-positive extents.
func NewMask(rows, cols int) *Mask {
	if rows <= 0 || cols <= 0 {
		panic(ErrShape)
	}
	return &Mask{rows: rows, cols: cols, d: make([]bool, rows*cols)}
}

func (M *Mask) Dims() (int, int) {
	return M.rows, M.cols
}

func (M *Mask) At(j, i int) bool {
	if j < 0 || j >= M.rows || i < 0 || i >= M.cols {
		panic(ErrIndexOutOfRange)
	}
	return M.d[j*M.cols+i]
}

func (M *Mask) Set(j, i int, v bool) {
	if j < 0 || j >= M.rows || i < 0 || i >= M.cols {
		panic(ErrIndexOutOfRange)
	}
	M.d[j*M.cols+i] = v
}

//Flat returns the value at the flat (row-major) index n.
func (M *Mask) Flat(n int) bool {
	return M.d[n]
}

//Count returns the number of true elements.
func (M *Mask) Count() int {
	c := 0
	for _, v := range M.d {
		if v {
			c++
		}
	}
	return c
}

//size checks the extents and returns the total number of elements.
func size(slabs, rows, cols int) (int, *Error) {
	if slabs <= 0 || rows <= 0 || cols <= 0 {
		return 0, &Error{fmt.Sprintf("non-positive extents %dx%dx%d", slabs, rows, cols), nil, true, false}
	}
	n := float64(slabs) * float64(rows) * float64(cols)
	if n > MaxElements || n > math.MaxInt {
		return 0, &Error{fmt.Sprintf("extents %dx%dx%d exceed %d elements", slabs, rows, cols, int64(MaxElements)), nil, true, true}
	}
	return slabs * rows * cols, nil
}

//allocFloat and allocComplex turn the panic from a length that make rejects
//into an error. They can't catch an out-of-memory condition, which kills the program.
func allocFloat(n int) (d []float64, err *Error) {
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = &Error{fmt.Sprintf("unable to allocate %d elements: %v", n, r), nil, true, true}
		}
	}()
	return make([]float64, n), nil
}

func allocComplex(n int) (d []complex128, err *Error) {
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = &Error{fmt.Sprintf("unable to allocate %d elements: %v", n, r), nil, true, true}
		}
	}()
	return make([]complex128, n), nil
}
