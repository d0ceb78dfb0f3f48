/*
 * config.go, part of goPrism.
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

package main

import (
	"os"
	"sync/atomic"

	prism "github.com/rmera/goprism"
	"github.com/rmera/goprism/kirkland"
	"github.com/rmera/goprism/persist"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var v = viper.New()

//bindFlags adds the flags that override the configuration file, with the defaults of
//prism.DefaultMetadata, and binds them to their metadata keys.
func bindFlags(fs *pflag.FlagSet) {
	D := prism.DefaultMetadata()
	fs.StringVar(&configPath, "config", "", "YAML file with the simulation parameters")
	fs.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.Int("threads", D.NumThreads, "number of worker goroutines")
	fs.Int("gpus", D.NumGPUs, "number of GPUs (not supported, ignored)")
	fs.Int("batch", D.BatchSizeTargetCPU, "target number of beams propagated together")
	fs.String("algorithm", D.Algorithm, "beam selection: prism or hrtem")
	fs.Float64("E0", D.E0, "accelerating voltage, V")
	fs.Float64("alpha", D.AlphaBeamMax, "maximum beam angle, rad")
	fs.Int("fx", D.InterpolationFactorX, "interpolation factor along x")
	fs.Int("fy", D.InterpolationFactorY, "interpolation factor along y")
	fs.Float64("slice-thickness", D.SliceThickness, "slice thickness, Angstrom")
	fs.Float64("pot-bound", D.PotBound, "radius of the atomic potentials, Angstrom")
	fs.Bool("thermal", D.IncludeThermal, "include thermal displacements")
	fs.Bool("occupancy", D.IncludeOccupancy, "include partial occupancy")
	fs.Uint64("seed", D.RandomSeed, "random seed")
	fs.String("params", D.ParamsFile, "fparams.dat file with potential parameters")
	keys := map[string]string{
		"threads":         "numThreads",
		"gpus":            "numGPUs",
		"batch":           "batchSizeTargetCPU",
		"algorithm":       "algorithm",
		"E0":              "E0",
		"alpha":           "alphaBeamMax",
		"fx":              "interpolationFactorX",
		"fy":              "interpolationFactorY",
		"slice-thickness": "sliceThickness",
		"pot-bound":       "potBound",
		"thermal":         "includeThermalEffects",
		"occupancy":       "includeOccupancy",
		"seed":            "randomSeed",
		"params":          "paramsFile",
	}
	for flag, key := range keys {
		v.BindPFlag(key, fs.Lookup(flag))
	}
}

//loadMetadata returns the defaults, overridden by the configuration file, if any, and by the flags.
func loadMetadata() (*prism.Metadata, error) {
	M := prism.DefaultMetadata()
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		log.WithField("file", v.ConfigFileUsed()).Debug("Read configuration")
	}
	if err := v.Unmarshal(M); err != nil {
		return nil, err
	}
	return M, M.Check()
}

//setup reads the configuration and the structure, and returns the parameters
//for the calculation.
func setup(structure string) (*prism.Parameters, error) {
	M, err := loadMetadata()
	if err != nil {
		return nil, err
	}
	atoms, cell, err := persist.ReadXYZFile(structure)
	if err != nil {
		return nil, err
	}
	P, err := prism.NewParameters(M, atoms, cell)
	if err != nil {
		return nil, err
	}
	P.Log = log
	P.Progress = &progressLog{}
	if M.ParamsFile != "" {
		f, err := os.Open(M.ParamsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		ps, err := kirkland.LoadParams(f)
		if err != nil {
			return nil, err
		}
		P.Params = P.Params.Merge(ps)
		log.WithField("species", len(ps)).Info("Loaded potential parameters")
	}
	log.Info(P.String())
	return P, nil
}

//progressLog logs the progress of a stage each time it crosses a multiple of 10%.
//Workers report whole batches, possibly out of order, so a report can skip several
//multiples, and only the highest one is logged. Use a fresh progressLog for each stage.
type progressLog struct {
	decade atomic.Int64 //last multiple of 10% logged
}

//step reports whether done of total crosses a multiple of 10% not logged yet.
func (p *progressLog) step(done, total int) bool {
	if total <= 0 || done <= 0 {
		return false
	}
	d := int64(done * 10 / total)
	for {
		last := p.decade.Load()
		if d <= last {
			return false
		}
		if p.decade.CompareAndSwap(last, d) {
			return true
		}
	}
}

func (p *progressLog) Progress(done, total int) {
	if p.step(done, total) {
		log.Infof("%d of %d done (%d%%)", done, total, done*100/total)
	}
}

//sidecar writes M next to the file out, with the yaml extension added.
func sidecar(out string, M *prism.Metadata) error {
	f, err := os.Create(out + ".yaml")
	if err != nil {
		return err
	}
	if err := persist.WriteMetadata(f, M); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
