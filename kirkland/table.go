/*
 * table.go, part of goPrism.
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

package kirkland

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

//Table holds one projected potential kernel per species. It is read-only after NewTable returns,
//so it can be shared by any number of goroutines.
type Table struct {
	species []int
	index   map[int]int
	kernels []*mat.Dense
}

//NewTable computes the projected potential kernels for the unique atomic numbers in species,
//over the grid given by xr and yr (see Axis). The kernels are computed concurrently,
//one goroutine per species. It returns an error if any species has no parameters in ps.
func NewTable(ps ParamSet, species []int, xr, yr []float64) (*Table, error) {
	uniq := Unique(species)
	aps := make([]Params, len(uniq))
	for i, Z := range uniq {
		ap, err := ps.Lookup(Z)
		if err != nil {
			err.(*Error).Decorate("NewTable")
			return nil, err
		}
		aps[i] = ap
	}
	T := &Table{species: uniq, index: make(map[int]int, len(uniq)), kernels: make([]*mat.Dense, len(uniq))}
	type result struct {
		i int
		k *mat.Dense
	}
	results := make(chan result)
	for i := range uniq {
		T.index[uniq[i]] = i
		go func(i int) {
			results <- result{i, Projected(aps[i], xr, yr)}
		}(i)
	}
	for range uniq {
		r := <-results
		T.kernels[r.i] = r.k
	}
	return T, nil
}

//Unique returns the sorted unique atomic numbers in species.
func Unique(species []int) []int {
	s := make([]int, len(species))
	copy(s, species)
	sort.Ints(s)
	ret := s[:0]
	for i, v := range s {
		if i == 0 || v != ret[len(ret)-1] {
			ret = append(ret, v)
		}
	}
	return ret
}

//Species returns the sorted atomic numbers in the table.
func (T *Table) Species() []int {
	return append([]int(nil), T.species...)
}

//Index returns the position of Z in the table.
func (T *Table) Index(Z int) (int, bool) {
	i, ok := T.index[Z]
	return i, ok
}

//Kernel returns the kernel for Z. Panics if Z is not in the table.
func (T *Table) Kernel(Z int) *mat.Dense {
	i, ok := T.index[Z]
	if !ok {
		panic(fmt.Sprintf("goPrism/kirkland: Z=%d not in table", Z))
	}
	return T.kernels[i]
}

//KernelAt returns the i-th kernel.
func (T *Table) KernelAt(i int) *mat.Dense {
	return T.kernels[i]
}

//Len returns the number of species in the table.
func (T *Table) Len() int {
	return len(T.species)
}
