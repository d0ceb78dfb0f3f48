package main

import (
	"os"
	"path/filepath"
	"testing"

	prism "github.com/rmera/goprism"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestLoadMetadata(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "sim.yaml")
	conf := "E0: 200000\nrealspacePixelSize: [0.05, 0.08]\ntile: [2, 2, 1]\nincludeThermalEffects: true\nrandomSeed: 7\nalgorithm: HRTEM\n"
	if err := os.WriteFile(name, []byte(conf), 0644); err != nil {
		Te.Fatal(err)
	}
	configPath = name
	defer func() { configPath = "" }()
	if err := rootCmd.PersistentFlags().Set("threads", "3"); err != nil {
		Te.Fatal(err)
	}
	M, err := loadMetadata()
	if err != nil {
		Te.Fatal(err)
	}
	D := prism.DefaultMetadata()
	switch {
	case M.E0 != 200000 || M.RandomSeed != 7 || !M.IncludeThermal:
		Te.Errorf("values from the file not read: %+v", M)
	case M.RealspacePixelSize != [2]float64{0.05, 0.08} || M.Tile != [3]int{2, 2, 1}:
		Te.Errorf("arrays from the file not read: %v %v", M.RealspacePixelSize, M.Tile)
	case M.NumThreads != 3:
		Te.Errorf("flag not applied, %d threads", M.NumThreads)
	case M.SliceThickness != D.SliceThickness || M.AlphaBeamMax != D.AlphaBeamMax:
		Te.Errorf("defaults lost: %v %v", M.SliceThickness, M.AlphaBeamMax)
	}
}

//Workers report whole batches, so each report can cross more than one 10% step.
func TestProgressLog(Te *testing.T) {
	hook := test.NewLocal(log)
	defer hook.Reset()
	P := &progressLog{}
	for done := 4; done <= 24; done += 4 {
		P.Progress(done, 25)
	}
	P.Progress(25, 25)
	//4, 8, 12, 16, 20, 24 and 25 of 25 cross 10, 30, 40, 60, 80, 90 and 100%
	assert.Len(Te, hook.AllEntries(), 7)
	assert.Equal(Te, "25 of 25 done (100%)", hook.LastEntry().Message)
	hook.Reset()
	P.Progress(25, 25)
	P.Progress(12, 25) //late report from another worker
	P.Progress(0, 0)
	assert.Empty(Te, hook.AllEntries())
	Q := &progressLog{}
	Q.Progress(1, 3)
	Q.Progress(3, 3)
	assert.Len(Te, hook.AllEntries(), 2)
}
