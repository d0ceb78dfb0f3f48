package prism

import (
	"math"
	"math/cmplx"
	"sync/atomic"
	"testing"

	"github.com/rmera/goprism/grid"
	"github.com/rmera/goprism/kirkland"
	"gonum.org/v1/gonum/floats"
)

//hydrogen returns parameters for a single hydrogen atom at the centre of a 3.2 A cube,
//on a 32x32 grid of 0.1 A pixels.
func hydrogen(Te *testing.T, threads int) *Parameters {
	M := DefaultMetadata()
	M.InterpolationFactorX = 1
	M.InterpolationFactorY = 1
	M.PotBound = 1
	M.NumThreads = threads
	P, err := NewParameters(M, []Atom{{Species: 1, X: 0.5, Y: 0.5, Z: 0.5, Sigma: 0.08, Occ: 1}}, [3]float64{3.2, 3.2, 3.2})
	if err != nil {
		Te.Fatal(err)
	}
	return P
}

//several returns parameters for a few H and C atoms in two slices.
func several(Te *testing.T, threads, batch int, thermal bool) *Parameters {
	M := DefaultMetadata()
	M.InterpolationFactorX = 1
	M.InterpolationFactorY = 1
	M.PotBound = 1
	M.SliceThickness = 1.6
	M.NumThreads = threads
	M.BatchSizeTargetCPU = batch
	M.IncludeThermal = thermal
	M.RandomSeed = 1234
	atoms := []Atom{
		{Species: 6, X: 0.25, Y: 0.25, Z: 0.2, Sigma: 0.1, Occ: 1},
		{Species: 1, X: 0.75, Y: 0.3, Z: 0.22, Sigma: 0.1, Occ: 1},
		{Species: 1, X: 0.4, Y: 0.8, Z: 0.7, Sigma: 0.1, Occ: 1},
		{Species: 6, X: 0.9, Y: 0.6, Z: 0.75, Sigma: 0.1, Occ: 1},
	}
	P, err := NewParameters(M, atoms, [3]float64{3.2, 3.2, 3.2})
	if err != nil {
		Te.Fatal(err)
	}
	return P
}

func TestWavelength(Te *testing.T) {
	for _, v := range []struct{ E0, lambda float64 }{{80e3, 0.041757}, {200e3, 0.025079}, {300e3, 0.019687}} {
		if l := Wavelength(v.E0); math.Abs(l-v.lambda) > 1e-5 {
			Te.Errorf("wavelength at %v eV is %v, want %v", v.E0, l, v.lambda)
		}
	}
	//sigma decreases with the energy
	if s80, s300 := Interaction(80e3, Wavelength(80e3)), Interaction(300e3, Wavelength(300e3)); !(s80 > s300 && s300 > 0) {
		Te.Errorf("wrong interaction parameters %v %v", s80, s300)
	}
}

func TestImageSize(Te *testing.T) {
	for _, v := range []struct {
		cell, px float64
		f, want  int
	}{{3.2, 0.1, 1, 32}, {0.1, 0.1, 1, 4}, {10, 0.1, 4, 96}, {5.43, 0.1, 2, 56}} {
		if n := ImageSize(v.cell, v.px, v.f); n != v.want {
			Te.Errorf("ImageSize(%v, %v, %d) = %d, want %d", v.cell, v.px, v.f, n, v.want)
		}
	}
}

func TestTile(Te *testing.T) {
	atoms := []Atom{{Species: 1, X: 0.5, Y: 0.5, Z: 0.5, Occ: 1}, {Species: 6, Occ: 1}}
	T := Tile(atoms, 2, 1, 3)
	if len(T) != 12 {
		Te.Fatalf("got %d atoms, want 12", len(T))
	}
	if T[0].X != 0.25 || T[2].X != 0.75 || T[3].X != 0.5 {
		Te.Errorf("wrong tiled x coordinates %v %v %v", T[0].X, T[2].X, T[3].X)
	}
	if T[4].Z != (0.5+1)/3.0 || T[11].Z != 2/3.0 {
		Te.Errorf("wrong tiled z coordinates %v %v", T[4].Z, T[11].Z)
	}
	M := DefaultMetadata()
	M.Tile = [3]int{2, 1, 3}
	P, err := NewParameters(M, atoms, [3]float64{1, 2, 3})
	if err != nil {
		Te.Fatal(err)
	}
	if P.Cell != [3]float64{3, 2, 6} || len(P.Atoms) != 12 {
		Te.Errorf("wrong tiled cell %v or atoms %d", P.Cell, len(P.Atoms))
	}
}

func TestConfigErrors(Te *testing.T) {
	good := []Atom{{Species: 1, X: 0.5, Y: 0.5, Z: 0.5, Occ: 1}}
	cell := [3]float64{4, 4, 4}
	bad := []func(*Metadata){
		func(M *Metadata) { M.InterpolationFactorX = 0 },
		func(M *Metadata) { M.SliceThickness = 0 },
		func(M *Metadata) { M.Algorithm = "stem" },
		func(M *Metadata) { M.NumThreads = 0 },
		func(M *Metadata) { M.Tile[1] = 0 },
		func(M *Metadata) {
			M.Algorithm = HRTEM
			M.TiltMode = "square"
		},
	}
	for i, f := range bad {
		M := DefaultMetadata()
		f(M)
		if _, err := NewParameters(M, good, cell); !IsKind(err, ConfigError) {
			Te.Errorf("case %d: expected a configuration error, got %v", i, err)
		}
	}
	if _, err := NewParameters(nil, nil, cell); !IsKind(err, ConfigError) {
		Te.Errorf("expected a configuration error for no atoms, got %v", err)
	}
	if _, err := NewParameters(nil, []Atom{{Species: 1, Occ: 1.5}}, cell); !IsKind(err, ConfigError) {
		Te.Errorf("expected a configuration error for occupancy > 1, got %v", err)
	}
	if _, err := NewParameters(nil, good, [3]float64{4, 0, 4}); !IsKind(err, ConfigError) {
		Te.Errorf("expected a configuration error for a null cell, got %v", err)
	}
	for _, Z := range []int{0, 119} {
		if _, err := NewParameters(nil, []Atom{{Species: Z, Occ: 1}}, cell); !IsKind(err, ConfigError) {
			Te.Errorf("expected a configuration error for Z=%d, got %v", Z, err)
		}
	}
	//a species with no parameters loaded
	P := hydrogen(Te, 1)
	delete(P.Params, 1)
	if _, err := ComputePotential(P); !IsKind(err, ConfigError) {
		Te.Errorf("expected a configuration error for missing parameters, got %v", err)
	}
	//contradictory tilt window
	P = hydrogen(Te, 1)
	P.Meta.Algorithm = HRTEM
	P.Meta.MinXTilt = 0.01
	P.Meta.MaxXTilt = 0.001
	pot, _ := grid.NewVolume(1, P.ImageSize[0], P.ImageSize[1])
	if _, err := BuildCompactMatrix(P, pot); !IsKind(err, ConfigError) {
		Te.Errorf("expected a configuration error for a tilt window, got %v", err)
	}
	//a potential sampled for another cell
	P = hydrogen(Te, 1)
	pot, _ = grid.NewVolume(1, P.ImageSize[0]/2, P.ImageSize[1])
	if _, err := BuildCompactMatrix(P, pot); !IsKind(err, ConfigError) {
		Te.Errorf("expected a configuration error for a %dx%d potential, got %v", P.ImageSize[0]/2, P.ImageSize[1], err)
	}
}

func TestHydrogenPotential(Te *testing.T) {
	P := hydrogen(Te, 2)
	if P.ImageSize != [2]int{32, 32} || math.Abs(P.PixelSize[0]-0.1) > 1e-12 {
		Te.Fatalf("unexpected sampling %v %v", P.ImageSize, P.PixelSize)
	}
	pot, err := ComputePotential(P)
	if err != nil {
		Te.Fatal(err)
	}
	s, r, c := pot.Dims()
	if s != 1 || r != 32 || c != 32 {
		Te.Fatalf("potential is %dx%dx%d", s, r, c)
	}
	_, xr := kirkland.Axis(P.Meta.PotBound, P.PixelSize[1])
	_, yr := kirkland.Axis(P.Meta.PotBound, P.PixelSize[0])
	K := kirkland.Projected(P.Params[1], xr, yr)
	want := K.At(len(yr)/2, len(xr)/2)
	if got := pot.At(0, 16, 16); math.Abs(got-want) > 1e-9*want {
		Te.Errorf("potential at the atom is %v, want %v", got, want)
	}
	if pot.Max() != pot.At(0, 16, 16) {
		Te.Errorf("the maximum of the potential is not at the atom")
	}
	if pot.Min() < 0 {
		Te.Errorf("negative potential %v", pot.Min())
	}
	if pot.At(0, 0, 0) != 0 || pot.At(0, 16, 4) != 0 {
		Te.Errorf("potential outside the kernel")
	}
}

//The potential depends on the seed, not on the number of workers.
func TestPotentialReproducible(Te *testing.T) {
	var ref *grid.Volume
	for _, threads := range []int{1, 2, 5} {
		P := several(Te, threads, 1, true)
		var calls atomic.Int64
		last := 0
		P.Progress = ProgressFunc(func(done, total int) {
			calls.Add(1)
			if done == total {
				last = done
			}
		})
		pot, err := ComputePotential(P)
		if err != nil {
			Te.Fatal(err)
		}
		if n, _, _ := pot.Dims(); n != 2 || last != 2 || calls.Load() != 2 {
			Te.Errorf("%d threads: %d planes, progress %d in %d calls", threads, n, last, calls.Load())
		}
		if ref == nil {
			ref = pot
			continue
		}
		if !floats.Equal(ref.Data(), pot.Data()) {
			Te.Errorf("%d threads give a different potential", threads)
		}
	}
	P := several(Te, 2, 1, false)
	still, err := ComputePotential(P)
	if err != nil {
		Te.Fatal(err)
	}
	if floats.Equal(ref.Data(), still.Data()) {
		Te.Errorf("thermal displacements had no effect")
	}
	P.Meta.RandomSeed = 99
	again, _ := ComputePotential(P)
	if !floats.Equal(still.Data(), again.Data()) {
		Te.Errorf("the seed changed a potential without random effects")
	}
}

//naive 2D DFT, sign -1 forward, +1 inverse (unnormalized)
func dft2(in []complex128, rows, cols int, sign float64) []complex128 {
	out := make([]complex128, len(in))
	for ky := 0; ky < rows; ky++ {
		for kx := 0; kx < cols; kx++ {
			var s complex128
			for y := 0; y < rows; y++ {
				for x := 0; x < cols; x++ {
					ph := sign * 2 * math.Pi * (float64(ky*y)/float64(rows) + float64(kx*x)/float64(cols))
					s += in[y*cols+x] * cmplx.Exp(complex(0, ph))
				}
			}
			out[ky*cols+kx] = s
		}
	}
	return out
}

//Through a single slice, the zero-frequency beam is the transmission function
//of the slice, propagated once and cropped:
//IDFT_small(crop(DFT(exp(i sigma V)) * prop)) / (N * N_small).
func TestSingleSliceBeam(Te *testing.T) {
	P := hydrogen(Te, 1)
	pot, err := ComputePotential(P)
	if err != nil {
		Te.Fatal(err)
	}
	S, err := BuildCompactMatrix(P, pot)
	if err != nil {
		Te.Fatal(err)
	}
	if S.Beams.Index[0] != 0 {
		Te.Fatalf("first beam at %d", S.Beams.Index[0])
	}
	rows, cols := P.ImageSize[0], P.ImageSize[1]
	t := make([]complex128, rows*cols)
	for i, v := range pot.RawSlab(0) {
		t[i] = cmplx.Exp(complex(0, P.Sigma*v))
	}
	prop, _ := S.Grid.Propagators(P.Lambda, P.Meta.SliceThickness, P.Cell[0])
	T := dft2(t, rows, cols, -1)
	small := make([]complex128, 0, len(S.QyInd)*len(S.QxInd))
	for _, j := range S.QyInd {
		for _, i := range S.QxInd {
			small = append(small, T[j*cols+i]*prop[j*cols+i])
		}
	}
	want := dft2(small, len(S.QyInd), len(S.QxInd), 1)
	norm := complex(float64(rows*cols*len(small)), 0)
	got := S.Data.RawSlab(0)
	for i := range want {
		if w := want[i] / norm; cmplx.Abs(got[i]-w) > 1e-10 {
			Te.Fatalf("element %d is %v, want %v", i, got[i], w)
		}
	}
	//the wave over the atom differs from the wave at the corner
	if cmplx.Abs(got[len(got)/2+len(S.QxInd)/2]-got[0]) < 1e-9 {
		Te.Errorf("the atom had no effect on the beam")
	}
}

//With no potential, each beam leaves the sample as a plane wave of unit
//amplitude, which is 1/N after the normalized inverse transform.
func TestVacuumSMatrix(Te *testing.T) {
	P := hydrogen(Te, 3)
	pot, _ := grid.NewVolume(2, P.ImageSize[0], P.ImageSize[1])
	S, err := BuildCompactMatrix(P, pot)
	if err != nil {
		Te.Fatal(err)
	}
	nb, r, c := S.Data.Dims()
	if nb != 9 || S.NumberBeams() != 9 || r != 16 || c != 16 {
		Te.Fatalf("compact matrix is %dx%dx%d", nb, r, c)
	}
	n := float64(r * c)
	for i, v := range S.Data.Data() {
		if math.Abs(cmplx.Abs(v)-1/n) > 1e-12 {
			Te.Fatalf("element %d has modulus %v, want %v", i, cmplx.Abs(v), 1/n)
		}
	}
	//raster order starts at the zero frequency and ends at (-1,-1)
	if S.Beams.Index[0] != 0 || S.Beams.Index[8] != 31*32+31 {
		Te.Errorf("beams at %v", S.Beams.Index)
	}
	if S.Output.Rows != 16 || S.Output.PixelSize[0] != 2*S.Grid.PixelSize[0] {
		Te.Errorf("wrong output sampling %d %v", S.Output.Rows, S.Output.PixelSize)
	}
}

//Beams are independent, so threads and batch size don't change the result.
func TestSMatrixDeterminism(Te *testing.T) {
	var ref *SMatrix
	for _, tb := range [][2]int{{1, 1}, {2, 4}, {4, 2}} {
		P := several(Te, tb[0], tb[1], true)
		pot, err := ComputePotential(P)
		if err != nil {
			Te.Fatal(err)
		}
		S, err := BuildCompactMatrix(P, pot)
		if err != nil {
			Te.Fatal(err)
		}
		if ref == nil {
			ref = S
			continue
		}
		a, b := ref.Data.Data(), S.Data.Data()
		for i := range a {
			if cmplx.Abs(a[i]-b[i]) > 1e-12 {
				Te.Fatalf("threads %d, batch %d: element %d is %v, want %v", tb[0], tb[1], i, b[i], a[i])
			}
		}
	}
	//the atoms scatter
	if math.Abs(cmplx.Abs(ref.Data.At(0, 3, 3))-1/256.0) < 1e-9 {
		Te.Errorf("the sample had no effect on the beams")
	}
}

func TestImportCompactMatrix(Te *testing.T) {
	P := hydrogen(Te, 2)
	pot, err := ComputePotential(P)
	if err != nil {
		Te.Fatal(err)
	}
	S, err := BuildCompactMatrix(P, pot)
	if err != nil {
		Te.Fatal(err)
	}
	I, err := ImportCompactMatrix(P, S.Data)
	if err != nil {
		Te.Fatal(err)
	}
	if len(I.Beams.Index) != len(S.Beams.Index) || I.Grid.Rows != S.Grid.Rows {
		Te.Fatalf("imported matrix has %d beams on %d rows", I.NumberBeams(), I.Grid.Rows)
	}
	for i, v := range S.Beams.Index {
		if I.Beams.Index[i] != v {
			Te.Errorf("beam %d at %d, want %d", i, I.Beams.Index[i], v)
		}
	}
	P.Meta.AlphaBeamMax = 0.05
	if _, err := ImportCompactMatrix(P, S.Data); !IsKind(err, ConfigError) {
		Te.Errorf("expected a configuration error for a beam mismatch, got %v", err)
	}
}

func TestTiltSeries(Te *testing.T) {
	P := hydrogen(Te, 2)
	P.Meta.Algorithm = HRTEM
	P.Meta.MaxXTilt = 0.02
	P.Meta.MaxYTilt = 0.02
	pot, err := ComputePotential(P)
	if err != nil {
		Te.Fatal(err)
	}
	S, err := BuildCompactMatrix(P, pot)
	if err != nil {
		Te.Fatal(err)
	}
	if S.NumberBeams() == 0 || len(S.Beams.Tilts) != S.NumberBeams() {
		Te.Errorf("%d beams with %d tilts", S.NumberBeams(), len(S.Beams.Tilts))
	}
	for _, t := range S.Beams.Tilts {
		if math.Abs(t.X) > 0.02 || math.Abs(t.Y) > 0.02 {
			Te.Errorf("tilt %v outside the window", t)
		}
	}
}
