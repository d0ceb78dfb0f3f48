/*
 * stemplot.go, part of goPrism.
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

//Package stemplot draws heat maps of the arrays computed by goPrism, using gonum/plot.
//The format of the file is given by the extension of its name (png, svg, pdf, ...).
package stemplot

import (
	"fmt"
	"math/cmplx"

	prism "github.com/rmera/goprism"
	"github.com/rmera/goprism/grid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Size is the width and height of the saved plots.
var Size = 12 * vg.Centimeter

//pixels is a matrix sampled on a regular grid, as a plotter.GridXYZ.
//Rows go along y.
type pixels struct {
	m      mat.Matrix
	dy, dx float64
}

func (p pixels) Dims() (c, r int) {
	r, c = p.m.Dims()
	return c, r
}

func (p pixels) Z(c, r int) float64 { return p.m.At(r, c) }
func (p pixels) X(c int) float64    { return float64(c) * p.dx }
func (p pixels) Y(r int) float64    { return float64(r) * p.dy }

func heatMap(g pixels, title, name string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (Å)"
	p.Y.Label.Text = "y (Å)"
	h := plotter.NewHeatMap(g, moreland.ExtendedBlackBody().Palette(255))
	if h.Max == h.Min {
		h.Max = h.Min + 1
	}
	p.Add(h)
	if err := p.Save(Size, Size, name); err != nil {
		return fmt.Errorf("goPrism/stemplot: can't save %s: %w", name, err)
	}
	return nil
}

//SliceHeatMap plots slice k of the projected potential pot, whose pixels are
//pixel (y, x) Angstrom, and saves the plot in the file name.
func SliceHeatMap(pot *grid.Volume, k int, pixel [2]float64, title, name string) error {
	if s, _, _ := pot.Dims(); k < 0 || k >= s {
		return fmt.Errorf("goPrism/stemplot: slice %d out of range [0,%d)", k, s)
	}
	return heatMap(pixels{pot.Slab(k), pixel[0], pixel[1]}, title, name)
}

//SMatrixIntensity plots the intensity of the exit wave of beam b of the compact
//matrix S, on its output grid, and saves the plot in the file name.
func SMatrixIntensity(S *prism.SMatrix, b int, title, name string) error {
	nb, r, c := S.Data.Dims()
	if b < 0 || b >= nb {
		return fmt.Errorf("goPrism/stemplot: beam %d out of range [0,%d)", b, nb)
	}
	I := mat.NewDense(r, c, nil)
	slab := S.Data.RawSlab(b)
	I.Apply(func(j, i int, _ float64) float64 {
		v := cmplx.Abs(slab[j*c+i])
		return v * v
	}, I)
	return heatMap(pixels{I, S.Output.PixelSize[0], S.Output.PixelSize[1]}, title, name)
}
