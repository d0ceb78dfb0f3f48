/*
 * dispatch.go, part of goPrism.
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

//Package dispatch hands out contiguous, non-overlapping ranges of a fixed
//index space to a pool of workers.
package dispatch

import (
	"fmt"
	"sync/atomic"
)

//State is the state of a Dispatcher.
type State int

const (
	Idle       State = iota //nothing handed out yet
	Dispensing              //some, but not all, of the range has been handed out
	Exhausted               //the whole range has been handed out. Final.
)

func (S State) String() string {
	switch S {
	case Idle:
		return "Idle"
	case Dispensing:
		return "Dispensing"
	case Exhausted:
		return "Exhausted"
	}
	return fmt.Sprintf("State(%d)", int(S))
}

//Dispatcher distributes the half-open range [start, stop). It is safe for concurrent use
//and lock-free: the only shared state is the next index to hand out, updated by compare-and-swap.
type Dispatcher struct {
	start, stop int64
	next        atomic.Int64
}

//New returns an Idle dispatcher over [start, stop). An empty range is Exhausted from the start.
//Panics if stop < start.
func New(start, stop int) *Dispatcher {
	if stop < start {
		panic(fmt.Sprintf("goPrism/dispatch: invalid range [%d,%d)", start, stop))
	}
	D := &Dispatcher{start: int64(start), stop: int64(stop)}
	D.next.Store(int64(start))
	return D
}

//GetWork returns the next range [start, stop) of at most batch indexes, and true.
//Ranges are strictly increasing and never overlap. Once the dispatcher is Exhausted,
//it returns false. A batch smaller than 1 is taken as 1.
func (D *Dispatcher) GetWork(batch int) (int, int, bool) {
	if batch < 1 {
		batch = 1
	}
	for {
		cur := D.next.Load()
		if cur >= D.stop {
			return 0, 0, false
		}
		end := cur + int64(batch)
		if end > D.stop || end < cur {
			end = D.stop
		}
		if D.next.CompareAndSwap(cur, end) {
			return int(cur), int(end), true
		}
	}
}

//State returns the current state of the dispatcher.
func (D *Dispatcher) State() State {
	n := D.next.Load()
	switch {
	case n >= D.stop:
		return Exhausted
	case n == D.start:
		return Idle
	}
	return Dispensing
}

//Remaining returns the number of indexes not yet handed out.
func (D *Dispatcher) Remaining() int {
	return int(D.stop - D.next.Load())
}

//Drain asks for ranges of up to batch indexes and calls fn on each, until the
//dispatcher is exhausted or fn returns an error, which is then returned.
func (D *Dispatcher) Drain(batch int, fn func(start, stop int) error) error {
	for {
		s, e, ok := D.GetWork(batch)
		if !ok {
			return nil
		}
		if err := fn(s, e); err != nil {
			return err
		}
	}
}
