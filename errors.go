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

package prism

import (
	"errors"
	"fmt"
	"strings"
)

//Kind is the class of an error.
type Kind int

const (
	ConfigError   Kind = iota //invalid parameters, detected before any worker starts
	ResourceError             //arrays too large to allocate
	WorkerError               //a worker failed, the stage output is unusable
)

func (K Kind) String() string {
	switch K {
	case ConfigError:
		return "configuration"
	case ResourceError:
		return "resource"
	case WorkerError:
		return "worker"
	}
	return fmt.Sprintf("Kind(%d)", int(K))
}

//Decorator is the interface implemented by the errors in goPrism packages. Decorate allows
//to add the name of the calling function to the error when it is passed up, without
//changing its type.
type Decorator interface {
	Error() string
	Decorate(string) []string
	Critical() bool
}

//Error is the error returned by this package. None of them is retryable:
//all operations are deterministic given their inputs.
type Error struct {
	message  string
	deco     []string
	critical bool
	kind     Kind
	cause    error
}

func (err *Error) Error() string {
	if len(err.deco) == 0 {
		return fmt.Sprintf("goPrism: %s error: %s", err.kind, err.message)
	}
	return fmt.Sprintf("goPrism: %s error: %s (%s)", err.kind, err.message, strings.Join(err.deco, " <- "))
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

//Kind returns the class of the error.
func (err *Error) Kind() Kind { return err.kind }

//Unwrap returns the error from another package that caused this one, if any.
func (err *Error) Unwrap() error { return err.cause }

//IsKind returns true if err is, or wraps, a *Error of the kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == k
}

func newError(kind Kind, caller, format string, a ...interface{}) *Error {
	return &Error{fmt.Sprintf(format, a...), []string{caller}, true, kind, nil}
}

//errDecorate turns err into a *Error, keeping its message and decorations, and adds the caller.
//Errors from other goPrism packages that report a resource problem are classified as such,
//regardless of kind.
func errDecorate(err error, kind Kind, caller string) *Error {
	if e, ok := err.(*Error); ok {
		e.Decorate(caller)
		return e
	}
	ret := &Error{message: err.Error(), critical: true, kind: kind, cause: err}
	if d, ok := err.(Decorator); ok {
		ret.deco = append(ret.deco, d.Decorate("")...)
	}
	if r, ok := err.(interface{ Resource() bool }); ok && r.Resource() {
		ret.kind = ResourceError
	}
	ret.Decorate(caller)
	return ret
}
