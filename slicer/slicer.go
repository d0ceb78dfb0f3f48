/*
 * slicer.go, part of goPrism.
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

//Package slicer builds the projected potential of each slice of a structure, by
//adding the potential kernel of every atom in the slice at its pixel position,
//with periodic boundaries.
//
//Each slice uses its own random generator, seeded from the base seed and the slice index,
//so the result is the same whatever the goroutine that computes the slice or the
//order in which slices are computed.
package slicer

import (
	"fmt"
	"math"

	"github.com/rmera/goprism/kirkland"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

//Site is an atom in Cartesian coordinates (Angstrom).
type Site struct {
	Species int
	X, Y, Z float64
	Sigma   float64 //thermal vibration, Angstrom
	Occ     float64 //occupancy
}

//Planes returns the slice index for each of the heights in z, for slices of thickness dz, counted
//from the highest atom, and the number of slices. The slice index is round((zMax-z)/dz+0.5)-1.
func Planes(z []float64, dz float64) ([]int, int) {
	if len(z) == 0 {
		return nil, 0
	}
	zMax := z[0]
	for _, v := range z {
		zMax = math.Max(zMax, v)
	}
	planes := make([]int, len(z))
	num := 0
	for i, v := range z {
		planes[i] = int(math.Round((zMax-v)/dz+0.5)) - 1
		if planes[i]+1 > num {
			num = planes[i] + 1
		}
	}
	return planes, num
}

//Options control the stochastic parts of the slicing.
type Options struct {
	Thermal   bool   //displace atoms by a normal deviate scaled by their Sigma
	Occupancy bool   //drop atoms with probability 1-Occ
	Seed      uint64 //base seed
}

//Slicer computes slices of the projected potential. It is read-only after New, so
//Slice can be called concurrently for different slices.
type Slicer struct {
	sites      []Site
	planes     [][]int //atoms in each slice, in input order
	table      *kirkland.Table
	xvec, yvec []int
	pixel      [2]float64 //y, x
	rows, cols int
	opt        Options
}

//New returns a Slicer for the given sites, on a rows x cols image with pixel size pixelSize (y, x).
//xvec and yvec are the pixel offsets of the kernels in T (see kirkland.Axis).
func New(sites []Site, dz float64, T *kirkland.Table, xvec, yvec []int, pixelSize [2]float64, rows, cols int, opt Options) (*Slicer, error) {
	switch {
	case len(sites) == 0:
		return nil, &Error{"no atoms to slice", []string{"New"}, true}
	case !(dz > 0):
		return nil, &Error{fmt.Sprintf("invalid slice thickness %v", dz), []string{"New"}, true}
	case rows <= 0 || cols <= 0:
		return nil, &Error{fmt.Sprintf("invalid image size %dx%d", rows, cols), []string{"New"}, true}
	case !(pixelSize[0] > 0) || !(pixelSize[1] > 0):
		return nil, &Error{fmt.Sprintf("invalid pixel size %v", pixelSize), []string{"New"}, true}
	}
	for _, s := range sites {
		if _, ok := T.Index(s.Species); !ok {
			return nil, &Error{fmt.Sprintf("no potential kernel for Z=%d", s.Species), []string{"New"}, true}
		}
	}
	kr, kc := T.KernelAt(0).Dims()
	if kr != len(yvec) || kc != len(xvec) {
		panic(fmt.Sprintf("goPrism/slicer: kernels are %dx%d but the offsets are %dx%d", kr, kc, len(yvec), len(xvec)))
	}
	z := make([]float64, len(sites))
	for i, s := range sites {
		z[i] = s.Z
	}
	p, num := Planes(z, dz)
	S := &Slicer{sites: sites, planes: make([][]int, num), table: T, xvec: xvec, yvec: yvec, pixel: pixelSize, rows: rows, cols: cols, opt: opt}
	for i, k := range p {
		S.planes[k] = append(S.planes[k], i)
	}
	return S, nil
}

//NumPlanes returns the number of slices.
func (S *Slicer) NumPlanes() int {
	return len(S.planes)
}

//Plane returns the indexes of the atoms in slice k, in input order.
func (S *Slicer) Plane(k int) []int {
	return append([]int(nil), S.planes[k]...)
}

//Seed returns the seed used for slice k.
func (S *Slicer) Seed(k int) uint64 {
	return S.opt.Seed + uint64(k)*uint64(len(S.planes))
}

//Slice computes the projected potential of slice k into dst, which must be rows x cols.
//dst is overwritten.
func (S *Slicer) Slice(k int, dst *mat.Dense) {
	r, c := dst.Dims()
	if r != S.rows || c != S.cols {
		panic(fmt.Sprintf("goPrism/slicer: destination is %dx%d, want %dx%d", r, c, S.rows, S.cols))
	}
	dst.Zero()
	raw := dst.RawMatrix()
	src := rand.NewSource(S.Seed(k))
	rnd := rand.New(src)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	xp := make([]int, len(S.xvec))
	yp := make([]int, len(S.yvec))
	for _, a := range S.planes[k] {
		site := S.sites[a]
		if S.opt.Occupancy && rnd.Float64() > site.Occ {
			continue
		}
		x, y := site.X, site.Y
		if S.opt.Thermal {
			x += normal.Rand() * site.Sigma
			y += normal.Rand() * site.Sigma
		}
		X := int(math.Round(x / S.pixel[1]))
		Y := int(math.Round(y / S.pixel[0]))
		for i, v := range S.xvec {
			xp[i] = mod(v+X, S.cols)
		}
		for j, v := range S.yvec {
			yp[j] = mod(v+Y, S.rows)
		}
		kern := S.table.Kernel(site.Species).RawMatrix()
		for jj, row := range yp {
			krow := kern.Data[jj*kern.Stride : jj*kern.Stride+len(xp)]
			drow := raw.Data[row*raw.Stride : row*raw.Stride+S.cols]
			for ii, col := range xp {
				drow[col] += krow[ii]
			}
		}
	}
}

func mod(a, n int) int {
	return (a%n + n) % n
}

//Error is a configuration error in the slicer setup.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return "goPrism/slicer: " + err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err *Error) Critical() bool { return err.critical }
