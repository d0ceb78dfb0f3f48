/*
 * doc.go, part of goPrism.
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

/*
Package prism computes the compact scattering matrix used by the PRISM algorithm
(C. Ophus, Adv. Struct. Chem. Imaging 3, 13, 2017) for the simulation of scanning
transmission electron microscopy images.

The calculation has two stages, each run by a fixed pool of goroutines that take work
from a shared dispatcher:

ComputePotential slices the structure along z and builds the projected potential of
each slice from tabulated atomic kernels (package kirkland). Each slice is computed by
one worker, with its own random generator for thermal displacements and partial occupancy,
so the result depends on the seed but not on the number of workers.

BuildCompactMatrix turns the potential into transmission functions, selects the plane
waves to propagate (package qspace), and propagates each of them through all the slices
(package propagate). The exit waves, cropped to the non-redundant quarter of each axis,
are the slabs of the compact S-matrix, in the order of the selected beams.

Reading structures and storing results is done by package persist, which this package does not use.
*/
package prism
