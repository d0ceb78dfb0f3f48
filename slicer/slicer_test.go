package slicer

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/rmera/goprism/grid"
	"github.com/rmera/goprism/kirkland"
	"gonum.org/v1/gonum/mat"
)

func table(Te *testing.T, bound, pixel float64) (*kirkland.Table, []int) {
	vec, r := kirkland.Axis(bound, pixel)
	T, err := kirkland.NewTable(kirkland.Builtin(), []int{1, 6}, r, r)
	if err != nil {
		Te.Fatal(err)
	}
	return T, vec
}

func TestPlanes(Te *testing.T) {
	p, n := Planes([]float64{10, 9, 7.9, 10, 0}, 2)
	want := []int{0, 0, 1, 0, 5}
	if n != 6 {
		Te.Errorf("expected 6 planes, got %d", n)
	}
	for i := range want {
		if p[i] != want[i] {
			Te.Fatalf("wrong planes %v", p)
		}
	}
	if _, n := Planes(nil, 1); n != 0 {
		Te.Errorf("no atoms should give no planes")
	}
}

func sites(n int) []Site {
	ret := make([]Site, n)
	for i := range ret {
		Z := 1
		if i%3 == 0 {
			Z = 6
		}
		ret[i] = Site{Species: Z, X: float64(i) * 0.37, Y: float64(i*7%11) * 0.61, Z: float64(i%5) * 1.3, Sigma: 0.3, Occ: 0.6}
	}
	return ret
}

func TestPartition(Te *testing.T) {
	T, vec := table(Te, 1, 0.25)
	st := sites(40)
	S, err := New(st, 1, T, vec, vec, [2]float64{0.25, 0.25}, 32, 32, Options{})
	if err != nil {
		Te.Fatal(err)
	}
	z := make([]float64, len(st))
	for i := range st {
		z[i] = st[i].Z
	}
	p, n := Planes(z, 1)
	if S.NumPlanes() != n {
		Te.Fatalf("planes %d, want %d", S.NumPlanes(), n)
	}
	total := 0
	for k := 0; k < n; k++ {
		prev := -1
		for _, a := range S.Plane(k) {
			if p[a] != k {
				Te.Errorf("atom %d in plane %d, belongs to %d", a, k, p[a])
			}
			if a <= prev {
				Te.Errorf("atoms in plane %d not in input order", k)
			}
			prev = a
		}
		total += len(S.Plane(k))
	}
	if total != len(st) {
		Te.Errorf("%d atoms in slices, want %d", total, len(st))
	}
}

func TestSingleHydrogen(Te *testing.T) {
	T, vec := table(Te, 2, 1)
	S, err := New([]Site{{Species: 1, Occ: 1}}, 2, T, vec, vec, [2]float64{1, 1}, 8, 8, Options{})
	if err != nil {
		Te.Fatal(err)
	}
	if S.NumPlanes() != 1 {
		Te.Fatalf("expected one plane, got %d", S.NumPlanes())
	}
	dst := mat.NewDense(8, 8, nil)
	dst.Set(4, 4, 100) //Slice must overwrite
	S.Slice(0, dst)
	K := T.Kernel(1)
	want := mat.NewDense(8, 8, nil)
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			want.Set((j-2+8)%8, (i-2+8)%8, K.At(j, i))
		}
	}
	if !mat.Equal(dst, want) {
		Te.Errorf("slice is not the kernel at the wrapped origin:\n%v\n%v", mat.Formatted(dst), mat.Formatted(want))
	}
}

func slices(S *Slicer, order []int) *grid.Volume {
	V, _ := grid.NewVolume(S.NumPlanes(), S.rows, S.cols)
	for _, k := range order {
		S.Slice(k, V.Slab(k))
	}
	return V
}

func TestReproducibility(Te *testing.T) {
	T, vec := table(Te, 1, 0.25)
	opt := Options{Thermal: true, Occupancy: true, Seed: 1234}
	S1, err := New(sites(60), 1, T, vec, vec, [2]float64{0.25, 0.25}, 32, 32, opt)
	if err != nil {
		Te.Fatal(err)
	}
	S2, _ := New(sites(60), 1, T, vec, vec, [2]float64{0.25, 0.25}, 32, 32, opt)
	n := S1.NumPlanes()
	fwd := make([]int, n)
	rev := make([]int, n)
	for k := range fwd {
		fwd[k] = k
		rev[k] = n - 1 - k
	}
	V1 := slices(S1, fwd)
	V2 := slices(S2, rev)
	//and concurrently
	V3, _ := grid.NewVolume(n, 32, 32)
	var wg sync.WaitGroup
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			S1.Slice(k, V3.Slab(k))
		}(k)
	}
	wg.Wait()
	for i, v := range V1.Data() {
		if v != V2.Data()[i] || v != V3.Data()[i] {
			Te.Fatalf("slices differ at %d", i)
		}
	}
	opt.Seed = 4321
	S3, _ := New(sites(60), 1, T, vec, vec, [2]float64{0.25, 0.25}, 32, 32, opt)
	V4 := slices(S3, fwd)
	same := true
	for i, v := range V1.Data() {
		if v != V4.Data()[i] {
			same = false
			break
		}
	}
	if same {
		Te.Errorf("different seeds gave the same potential")
	}
}

func TestOccupancy(Te *testing.T) {
	T, vec := table(Te, 1, 0.25)
	st := sites(10)
	for i := range st {
		st[i].Occ = 0
	}
	S, _ := New(st, 10, T, vec, vec, [2]float64{0.25, 0.25}, 16, 16, Options{Occupancy: true, Seed: 9})
	dst := mat.NewDense(16, 16, nil)
	S.Slice(0, dst)
	if mat.Max(dst) != 0 {
		Te.Errorf("atoms with zero occupancy were added")
	}
	for i := range st {
		st[i].Occ = 1
	}
	S, _ = New(st, 10, T, vec, vec, [2]float64{0.25, 0.25}, 16, 16, Options{Occupancy: true, Seed: 9})
	S.Slice(0, dst)
	ref := mat.NewDense(16, 16, nil)
	S0, _ := New(st, 10, T, vec, vec, [2]float64{0.25, 0.25}, 16, 16, Options{})
	S0.Slice(0, ref)
	if !mat.Equal(dst, ref) {
		Te.Errorf("full occupancy differs from no occupancy sampling")
	}
}

func TestNewErrors(Te *testing.T) {
	T, vec := table(Te, 1, 0.25)
	if _, err := New(nil, 1, T, vec, vec, [2]float64{1, 1}, 8, 8, Options{}); err == nil {
		Te.Errorf("no atoms accepted")
	}
	if _, err := New([]Site{{Species: 8}}, 1, T, vec, vec, [2]float64{1, 1}, 8, 8, Options{}); err == nil {
		Te.Errorf("species without kernel accepted")
	}
	if _, err := New(sites(3), 0, T, vec, vec, [2]float64{1, 1}, 8, 8, Options{}); err == nil {
		Te.Errorf("zero slice thickness accepted")
	}
}

func TestTransmission(Te *testing.T) {
	V, _ := grid.NewVolume(2, 3, 3)
	for i := range V.Data() {
		V.Data()[i] = float64(i) * 0.1
	}
	sigma := 0.0007
	Tr, err := Transmission(V, sigma)
	if err != nil {
		Te.Fatal(err)
	}
	for i, t := range Tr.Data() {
		if math.Abs(cmplx.Abs(t)-1) > 1e-15 {
			Te.Fatalf("transmission is not a phase at %d", i)
		}
		if cmplx.Abs(t-cmplx.Exp(complex(0, sigma*V.Data()[i]))) > 1e-15 {
			Te.Fatalf("wrong transmission at %d", i)
		}
	}
}
