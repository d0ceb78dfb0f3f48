/*
 * errors.go, part of goPrism.
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

package grid

//Error is the error returned by the constructors in this package.
//It has the same methods as prism.Error, without importing it.
type Error struct {
	message  string
	deco     []string
	critical bool
	resource bool //the extents are valid but too large to allocate
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	return "goPrism/grid: " + err.message
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

//Resource returns true if the error comes from a size that can't be allocated,
//rather than from invalid extents.
func (err *Error) Resource() bool { return err.resource }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrShape           = PanicMsg("goPrism/grid: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("goPrism/grid: index out of range")
)
