/*
 * run.go, part of goPrism.
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

package dispatch

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

//Error is returned by Run when a worker fails.
type Error struct {
	message  string
	deco     []string
	critical bool
	worker   int
	err      error
}

func (err *Error) Error() string {
	return fmt.Sprintf("goPrism/dispatch: worker %d: %s", err.worker, err.message)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical return whether the error is critical or it can be ignored.
//Worker failures are always critical.
func (err *Error) Critical() bool { return err.critical }

//Worker returns the id of the worker that failed.
func (err *Error) Worker() int { return err.worker }

//Unwrap returns the error returned by the worker, or nil if it panicked.
func (err *Error) Unwrap() error { return err.err }

//Run starts n workers (at least 1), each running fn with its id in [0,n), and waits for all of them.
//If any worker returns an error or panics, Run returns a *Error for the first failure, after all the
//workers have finished. There is no cancellation: the other workers run to completion.
func Run(n int, fn func(id int) error) error {
	if n < 1 {
		n = 1
	}
	var g errgroup.Group
	for id := 0; id < n; id++ {
		id := id // per-iteration copy; module builds as go 1.21 (pre-1.22 loop semantics)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &Error{fmt.Sprintf("panic: %v\n%s", r, debug.Stack()), []string{"Run"}, true, id, nil}
				}
			}()
			if e := fn(id); e != nil {
				return &Error{e.Error(), []string{"Run"}, true, id, e}
			}
			return nil
		})
	}
	return g.Wait()
}
