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
Package persist reads structures and parameters, and stores the arrays computed by goPrism.

Structures are read from an XYZ variant for periodic cells: a comment line, a line with the
cell dimensions a, b, c (x, y, z, in Angstrom) and then one line per atom with

	Z x y z occupancy sigma

with Cartesian coordinates in Angstrom. The list can be terminated by a line containing -1.

Volumes are stored in a simple binary format: a text header of key=value lines, a line

	** kind slabs rows cols

where kind is "real" or "complex", and then the little-endian IEEE 754 data in [slab, row, col]
order, real and imaginary parts interleaved for complex volumes. The whole file is compressed
according to the last character of its name: gzip for 'z' (.gz), nothing for 'w' (.raw),
and z-standard otherwise (.zst, .vol).

Metadata is written and read as YAML.
*/
package persist
