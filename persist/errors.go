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

package persist

import (
	"fmt"
	"strings"
)

//Error is the error returned by the functions in this package.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	if err.filename == "" {
		return "goPrism/persist: " + err.message
	}
	return fmt.Sprintf("goPrism/persist: file %s: %s", err.filename, err.message)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the file associated with the error.
func (err *Error) FileName() string { return err.filename }

//Critical return whether the error is critical or it can be ignored
func (err *Error) Critical() bool { return err.critical }

func newError(filename, caller, format string, a ...interface{}) *Error {
	return &Error{fmt.Sprintf(format, a...), filename, []string{caller}, true}
}

//errDecorate wraps err, which can come from a reader or writer, in an *Error with the given
//file name, or decorates it if it already is one.
func errDecorate(err error, filename, caller string) error {
	if e, ok := err.(*Error); ok {
		if e.filename == "" {
			e.filename = filename
		}
		e.Decorate(caller)
		return e
	}
	return &Error{strings.TrimPrefix(err.Error(), "goPrism/"), filename, []string{caller}, true}
}
