package dispatch

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStates(Te *testing.T) {
	D := New(0, 10)
	assert.Equal(Te, Idle, D.State())
	s, e, ok := D.GetWork(4)
	require.True(Te, ok)
	assert.Equal(Te, [2]int{0, 4}, [2]int{s, e})
	assert.Equal(Te, Dispensing, D.State())
	s, e, _ = D.GetWork(4)
	assert.Equal(Te, [2]int{4, 8}, [2]int{s, e})
	s, e, ok = D.GetWork(4)
	require.True(Te, ok)
	assert.Equal(Te, [2]int{8, 10}, [2]int{s, e}, "last range is clipped")
	assert.Equal(Te, Exhausted, D.State())
	_, _, ok = D.GetWork(4)
	assert.False(Te, ok)
	assert.Equal(Te, Exhausted, D.State(), "no transition back from Exhausted")
	assert.Equal(Te, 0, D.Remaining())
}

func TestEmptyRange(Te *testing.T) {
	D := New(3, 3)
	assert.Equal(Te, Exhausted, D.State())
	_, _, ok := D.GetWork(1)
	assert.False(Te, ok)
	assert.Panics(Te, func() { New(2, 1) })
}

func TestDisjointness(Te *testing.T) {
	const total = 1037
	D := New(0, total)
	nw := 8
	ranges := make([][][2]int, nw)
	err := Run(nw, func(id int) error {
		return D.Drain(7, func(s, e int) error {
			ranges[id] = append(ranges[id], [2]int{s, e})
			return nil
		})
	})
	require.NoError(Te, err)
	seen := make([]int, total)
	for _, w := range ranges {
		last := -1
		for _, r := range w {
			assert.Greater(Te, r[0], last, "ranges given to one worker must increase")
			assert.LessOrEqual(Te, r[1]-r[0], 7)
			last = r[0]
			for i := r[0]; i < r[1]; i++ {
				seen[i]++
			}
		}
	}
	for i, c := range seen {
		if c != 1 {
			Te.Fatalf("index %d handed out %d times", i, c)
		}
	}
}

func TestWorkerPanic(Te *testing.T) {
	D := New(0, 100)
	var mu sync.Mutex
	done := 0
	err := Run(4, func(id int) error {
		return D.Drain(1, func(s, e int) error {
			if s == 50 {
				panic("boom")
			}
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	})
	require.Error(Te, err)
	var de *Error
	require.True(Te, errors.As(err, &de))
	assert.True(Te, de.Critical())
	assert.Nil(Te, de.Unwrap())
	assert.Contains(Te, err.Error(), "boom")
	assert.Equal(Te, Exhausted, D.State())
	assert.Equal(Te, 99, done, "the other workers run to completion")
}

func TestWorkerError(Te *testing.T) {
	sentinel := errors.New("bad slice")
	err := Run(3, func(id int) error {
		if id == 2 {
			return sentinel
		}
		return nil
	})
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, sentinel))
	var de *Error
	require.True(Te, errors.As(err, &de))
	assert.Equal(Te, 2, de.Worker())
	assert.NoError(Te, Run(0, func(int) error { return nil }))
}
