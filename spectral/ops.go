/*
 * ops.go, part of goPrism.
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

package spectral

import "fmt"

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrShape     = PanicMsg("goPrism/spectral: data is not a whole number of slabs, or exceeds the batch")
	ErrPlanSize  = PanicMsg("goPrism/spectral: plan extents must be positive")
	ErrDestroyed = PanicMsg("goPrism/spectral: plan used after Destroy")
)

//Scale multiplies every element of dst by the real factor sc, in place,
//and returns dst.
func Scale(dst []complex128, sc float64) []complex128 {
	c := complex(sc, 0)
	for i, v := range dst {
		dst[i] = v * c
	}
	return dst
}

//Mul multiplies dst elementwise by b, in place. Panics if the lengths differ.
func Mul(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= v
	}
}

//MulTiled multiplies each len(b) segment of dst by b. It is used to apply
//a single slice-sized factor to a batch of slabs.
func MulTiled(dst, b []complex128) {
	l := len(b)
	if l == 0 || len(dst)%l != 0 {
		panic(ErrShape)
	}
	for s := 0; s < len(dst); s += l {
		Mul(dst[s:s+l], b)
	}
}
