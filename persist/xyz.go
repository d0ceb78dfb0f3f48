/*
 * xyz.go, part of goPrism.
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

package persist

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	prism "github.com/rmera/goprism"
)

//ReadXYZ reads a structure in the cell XYZ format (see the package documentation) from r. It returns the atoms, with fractional
//coordinates, and the cell as z, y, x. The occupancy and sigma columns are required. Atoms outside the
//cell are wrapped into it.
func ReadXYZ(r io.Reader) ([]prism.Atom, [3]float64, error) {
	var cell [3]float64
	br := bufio.NewScanner(r)
	lineno := 0
	next := func() (string, bool) {
		for br.Scan() {
			lineno++
			l := strings.TrimSpace(br.Text())
			if l != "" {
				return l, true
			}
		}
		return "", false
	}
	if !br.Scan() {
		return nil, cell, newError("", "ReadXYZ", "empty file")
	}
	lineno++
	l, ok := next()
	if !ok {
		return nil, cell, newError("", "ReadXYZ", "no cell line")
	}
	f := strings.Fields(l)
	if len(f) < 3 {
		return nil, cell, newError("", "ReadXYZ", "line %d: malformed cell line %q", lineno, l)
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil || !(v > 0) {
			return nil, cell, newError("", "ReadXYZ", "line %d: invalid cell dimension %q", lineno, f[i])
		}
		cell[2-i] = v
	}
	var atoms []prism.Atom
	for {
		l, ok := next()
		if !ok || l == "-1" {
			break
		}
		f := strings.Fields(l)
		if len(f) < 6 {
			return nil, cell, newError("", "ReadXYZ", "line %d: expected 6 fields, found %d", lineno, len(f))
		}
		Z, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, cell, newError("", "ReadXYZ", "line %d: invalid atomic number %q", lineno, f[0])
		}
		var v [5]float64
		for i := range v {
			if v[i], err = strconv.ParseFloat(f[i+1], 64); err != nil {
				return nil, cell, newError("", "ReadXYZ", "line %d: invalid number %q", lineno, f[i+1])
			}
		}
		atoms = append(atoms, prism.Atom{
			Species: Z,
			X:       wrap(v[0] / cell[2]),
			Y:       wrap(v[1] / cell[1]),
			Z:       wrap(v[2] / cell[0]),
			Occ:     v[3],
			Sigma:   v[4],
		})
	}
	if err := br.Err(); err != nil {
		return nil, cell, errDecorate(err, "", "ReadXYZ")
	}
	if len(atoms) == 0 {
		return nil, cell, newError("", "ReadXYZ", "no atoms")
	}
	return atoms, cell, nil
}

func wrap(f float64) float64 {
	f -= math.Floor(f)
	if f >= 1 {
		return 0
	}
	return f
}

//ReadXYZFile reads a structure from the file name. See ReadXYZ.
func ReadXYZFile(name string) ([]prism.Atom, [3]float64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, [3]float64{}, errDecorate(err, name, "ReadXYZFile")
	}
	defer f.Close()
	atoms, cell, err := ReadXYZ(f)
	if err != nil {
		return nil, cell, errDecorate(err, name, "ReadXYZFile")
	}
	return atoms, cell, nil
}

//WriteXYZ writes the atoms, in a cell given as z, y, x, in the cell XYZ format,
//with the -1 terminator.
func WriteXYZ(w io.Writer, atoms []prism.Atom, cell [3]float64, comment string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", strings.ReplaceAll(comment, "\n", " "))
	fmt.Fprintf(bw, "    %.6f %.6f %.6f\n", cell[2], cell[1], cell[0])
	for _, a := range atoms {
		fmt.Fprintf(bw, "%d %12.6f %12.6f %12.6f %8.4f %8.4f\n", a.Species, a.X*cell[2], a.Y*cell[1], a.Z*cell[0], a.Occ, a.Sigma)
	}
	fmt.Fprintf(bw, "-1\n")
	if err := bw.Flush(); err != nil {
		return errDecorate(err, "", "WriteXYZ")
	}
	return nil
}
