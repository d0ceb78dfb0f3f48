/*
 * params.go, part of goPrism.
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

//Package kirkland computes atomic projected potentials from Kirkland's
//parameterization of the electron scattering factors (E. J. Kirkland,
//Advanced Computing in Electron Microscopy, 2nd ed., Springer 2010).
//
//Each element is described by 12 numbers, in the order used in the
//fparams.dat file: a1 b1 a2 b2 a3 b3 c1 d1 c2 d2 c3 d3. The a,b terms
//are the Lorentzians (which become K0 / Yukawa terms in real space) and the
//c,d terms are the Gaussians.
package kirkland

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

//NumParameters is the number of fitting parameters per element.
const NumParameters = 12

//MaxZ is the largest atomic number in Kirkland's parameterization.
const MaxZ = 103

//Params holds the fitting parameters for one element.
type Params [NumParameters]float64

//ParamSet maps atomic numbers to their parameters.
type ParamSet map[int]Params

var builtin = ParamSet{
	1: {4.20298324e-3, 2.25350888e-1, 6.27762505e-2, 2.25366950e-1, 3.00907347e-2, 2.25331756e-1,
		6.77756695e-2, 4.38854001, 3.56609237e-3, 4.03884823e-1, 2.76135815e-2, 1.44490166},
	6: {2.12080767e-1, 2.08605417e-1, 1.99811865e-1, 2.08610186e-1, 1.68254385e-1, 5.57870773,
		1.42048360e-1, 1.33311887, 3.63830672e-1, 3.80800263, 8.35012044e-4, 4.03982620e-2},
}

//Builtin returns a copy of the parameters compiled into the package.
//Other elements have to be read with LoadParams.
func Builtin() ParamSet {
	ret := make(ParamSet, len(builtin))
	for k, v := range builtin {
		ret[k] = v
	}
	return ret
}

//Lookup returns the parameters for atomic number Z.
func (P ParamSet) Lookup(Z int) (Params, error) {
	if Z < 1 || Z > MaxZ {
		return Params{}, &Error{fmt.Sprintf("invalid atomic number %d, the parameterization covers 1 to %d", Z, MaxZ), []string{"Lookup"}, true}
	}
	p, ok := P[Z]
	if !ok {
		return p, &Error{fmt.Sprintf("no scattering parameters for Z=%d, read them from fparams.dat with LoadParams", Z), []string{"Lookup"}, true}
	}
	return p, nil
}

//Merge copies the parameters in Q into P, replacing those already present.
//It returns P.
func (P ParamSet) Merge(Q ParamSet) ParamSet {
	for k, v := range Q {
		P[k] = v
	}
	return P
}

//Species returns the sorted atomic numbers in the set.
func (P ParamSet) Species() []int {
	ret := make([]int, 0, len(P))
	for k := range P {
		ret = append(ret, k)
	}
	sort.Ints(ret)
	return ret
}

//LoadParams reads parameters in the layout of Kirkland's fparams.dat:
//a header line starting with "Z=" for each element, followed by the
//12 parameters, whitespace-separated, on any number of lines.
func LoadParams(r io.Reader) (ParamSet, error) {
	ret := make(ParamSet)
	sc := bufio.NewScanner(r)
	Z := -1
	var cur Params
	read := 0
	line := 0
	for sc.Scan() {
		line++
		l := strings.TrimSpace(sc.Text())
		if l == "" {
			continue
		}
		if strings.HasPrefix(l, "Z=") || strings.HasPrefix(l, "Z =") {
			if Z > 0 && read != NumParameters {
				return nil, &Error{fmt.Sprintf("element Z=%d has %d parameters, want %d", Z, read, NumParameters), []string{"LoadParams"}, true}
			}
			Z, read = -1, 0
			head := strings.TrimPrefix(strings.TrimSpace(l[1:]), "=")
			head = strings.SplitN(head, ",", 2)[0]
			z, err := strconv.Atoi(strings.TrimSpace(head))
			if err != nil || z <= 0 || z > MaxZ {
				return nil, &Error{fmt.Sprintf("bad element header in line %d: %q", line, l), []string{"LoadParams"}, true}
			}
			Z = z
			continue
		}
		if Z < 0 {
			return nil, &Error{fmt.Sprintf("parameters before any element header in line %d", line), []string{"LoadParams"}, true}
		}
		for _, f := range strings.Fields(l) {
			if read >= NumParameters {
				return nil, &Error{fmt.Sprintf("too many parameters for Z=%d in line %d", Z, line), []string{"LoadParams"}, true}
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &Error{fmt.Sprintf("can't parse %q in line %d: %s", f, line, err.Error()), []string{"LoadParams"}, true}
			}
			cur[read] = v
			read++
			if read == NumParameters {
				ret[Z] = cur
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &Error{err.Error(), []string{"LoadParams"}, true}
	}
	if Z > 0 && read != NumParameters {
		return nil, &Error{fmt.Sprintf("element Z=%d has %d parameters, want %d", Z, read, NumParameters), []string{"LoadParams"}, true}
	}
	return ret, nil
}

//Error is the error type for this package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return "goPrism/kirkland: " + err.message
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
