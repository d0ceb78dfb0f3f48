package propagate

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/rmera/goprism/grid"
	"github.com/rmera/goprism/qspace"
	"github.com/rmera/goprism/spectral"
)

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

type fixture struct {
	setup *Setup
	G     *qspace.Grid
	B     *qspace.BeamSet
}

func newFixture(Te *testing.T, planes int, vacuum, back bool) *fixture {
	rows, cols := 8, 8
	G, err := qspace.NewGrid(rows, cols, [2]float64{1, 1}, [2]float64{1, 1})
	if err != nil {
		Te.Fatal(err)
	}
	B, err := qspace.RegularSelector{AlphaMax: 1, Lambda: 1, FY: 1, FX: 1}.Select(G)
	if err != nil {
		Te.Fatal(err)
	}
	qy, qx, err := qspace.Crop(rows, cols)
	if err != nil {
		Te.Fatal(err)
	}
	prop, bk := G.Propagators(0.0197, 2, float64(planes)*2)
	T, _ := grid.NewCVolume(planes, rows, cols)
	for i := range T.Data() {
		if vacuum {
			T.Data()[i] = 1
		} else {
			T.Data()[i] = cmplx.Exp(complex(0, 0.3*math.Sin(float64(i)*1.7)))
		}
	}
	s := &Setup{Rows: rows, Cols: cols, Trans: T, Prop: prop, Back: bk, BackPropagate: back, Beams: B.Index, QyInd: qy, QxInd: qx}
	return &fixture{setup: s, G: G, B: B}
}

func run(Te *testing.T, s *Setup, batch int) *grid.CVolume {
	W, err := NewWorker(s, batch)
	if err != nil {
		Te.Fatal(err)
	}
	defer W.Close()
	S, _ := grid.NewCVolume(len(s.Beams), len(s.QyInd), len(s.QxInd))
	if err := W.Propagate(0, len(s.Beams), S); err != nil {
		Te.Fatal(err)
	}
	return S
}

//In vacuum each beam only picks up the propagator phase, so the exit wave is a plane wave
//on the cropped grid.
func TestVacuum(Te *testing.T) {
	for _, back := range []bool{false, true} {
		f := newFixture(Te, 3, true, back)
		S := run(Te, f.setup, 4)
		nys, nxs := len(f.setup.QyInd), len(f.setup.QxInd)
		nSmall := float64(nys * nxs)
		for b, k := range f.setup.Beams {
			//position of the beam in the cropped grid
			ys, xs := -1, -1
			for p, j := range f.setup.QyInd {
				if j == k/8 {
					ys = p
				}
			}
			for p, i := range f.setup.QxInd {
				if i == k%8 {
					xs = p
				}
			}
			amp := cmplx.Pow(f.setup.Prop[k], 3)
			if back {
				amp *= f.setup.Back[k]
			}
			for y := 0; y < nys; y++ {
				for x := 0; x < nxs; x++ {
					ph := 2 * math.Pi * (float64(ys*y)/float64(nys) + float64(xs*x)/float64(nxs))
					want := amp * cmplx.Exp(complex(0, ph)) / complex(nSmall, 0)
					if got := S.At(b, y, x); cmplx.Abs(got-want) > 1e-12 {
						Te.Fatalf("beam %d (back %v) at %d %d: %v, want %v", b, back, y, x, got, want)
					}
				}
			}
		}
		//beam 0 is the unscattered one: a constant 1/N_small
		for _, v := range S.RawSlab(0) {
			if cmplx.Abs(v-complex(1/nSmall, 0)) > 1e-12 {
				Te.Fatalf("beam 0 is not constant: %v", v)
			}
		}
	}
}

//reference multislice for one beam, with naive transforms
func reference(s *Setup, beam int) []complex128 {
	N := s.Rows * s.Cols
	psi := make([]complex128, N)
	psi[s.Beams[beam]] = 1
	inv := func(p []complex128) []complex128 {
		o := dft2(p, s.Rows, s.Cols, 1)
		for i := range o {
			o[i] /= complex(float64(N), 0)
		}
		return o
	}
	psi = inv(psi)
	planes, _, _ := s.Trans.Dims()
	for k := 0; k < planes; k++ {
		t := s.Trans.RawSlab(k)
		for i := range psi {
			psi[i] *= t[i]
		}
		psi = dft2(psi, s.Rows, s.Cols, -1)
		for i := range psi {
			psi[i] *= s.Prop[i]
		}
		psi = inv(psi)
	}
	psi = dft2(psi, s.Rows, s.Cols, -1)
	if s.BackPropagate {
		for i := range psi {
			psi[i] *= s.Back[i]
		}
	}
	small := make([]complex128, 0, len(s.QyInd)*len(s.QxInd))
	for _, j := range s.QyInd {
		for _, i := range s.QxInd {
			small = append(small, psi[j*s.Cols+i])
		}
	}
	small = dft2(small, len(s.QyInd), len(s.QxInd), 1)
	for i := range small {
		small[i] /= complex(float64(len(small)), 0)
	}
	return small
}

func TestAgainstNaiveMultislice(Te *testing.T) {
	f := newFixture(Te, 2, false, true)
	S := run(Te, f.setup, 3)
	for _, b := range []int{0, 5, len(f.setup.Beams) - 1} {
		ref := reference(f.setup, b)
		for i, v := range S.RawSlab(b) {
			if cmplx.Abs(v-ref[i]) > 1e-10 {
				Te.Fatalf("beam %d differs from the reference at %d: %v %v", b, i, v, ref[i])
			}
		}
	}
}

func TestBatchIndependence(Te *testing.T) {
	f := newFixture(Te, 2, false, false)
	S1 := run(Te, f.setup, 1)
	S7 := run(Te, f.setup, 7)
	for i, v := range S1.Data() {
		if cmplx.Abs(v-S7.Data()[i]) > 1e-12 {
			Te.Fatalf("batch size changes the result at %d", i)
		}
	}
}

func TestWorkerPlans(Te *testing.T) {
	before := spectral.LivePlans()
	f := newFixture(Te, 1, true, false)
	W, err := NewWorker(f.setup, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if spectral.LivePlans() != before+2 {
		Te.Errorf("a worker should hold 2 plans")
	}
	S, _ := grid.NewCVolume(len(f.setup.Beams), 4, 4)
	if err := W.Propagate(3, 1, S); err == nil {
		Te.Errorf("inverted range accepted")
	}
	bad, _ := grid.NewCVolume(1, 4, 4)
	if err := W.Propagate(0, 1, bad); err == nil {
		Te.Errorf("wrong compact matrix accepted")
	}
	W.Close()
	if spectral.LivePlans() != before {
		Te.Errorf("plans leaked")
	}
}

func TestBatchSize(Te *testing.T) {
	cases := [][4]int{{50, 1000, 8, 50}, {50, 100, 8, 12}, {50, 3, 8, 1}, {0, 10, 2, 5}}
	for _, c := range cases {
		if got := BatchSize(c[0], c[1], c[2]); got != c[3] {
			Te.Errorf("BatchSize(%d,%d,%d)=%d, want %d", c[0], c[1], c[2], got, c[3])
		}
	}
}
