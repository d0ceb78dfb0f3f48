/*
 * progress.go, part of goPrism.
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

import "sync/atomic"

//Progresser receives progress reports from the stages. Progress is called from the
//worker goroutines, after each unit of work, with the number of units finished so far
//and the total for the stage. Implementations must be safe for concurrent use.
type Progresser interface {
	Progress(done, total int)
}

//ProgressFunc allows to use an ordinary function as a Progresser.
type ProgressFunc func(done, total int)

func (f ProgressFunc) Progress(done, total int) { f(done, total) }

type counter struct {
	p     Progresser
	done  atomic.Int64
	total int
}

func newCounter(p Progresser, total int) *counter {
	return &counter{p: p, total: total}
}

//add records n more finished units. Does nothing useful for a nil counter or Progresser.
func (c *counter) add(n int) {
	if c == nil || c.p == nil {
		return
	}
	c.p.Progress(int(c.done.Add(int64(n))), c.total)
}
