/*
 * commands.go, part of goPrism.
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
	"fmt"
	"strconv"

	prism "github.com/rmera/goprism"
	"github.com/rmera/goprism/grid"
	"github.com/rmera/goprism/persist"
	"github.com/rmera/goprism/stemplot"
	"github.com/spf13/cobra"
)

var potentialFile string

var potentialCmd = &cobra.Command{
	Use:   "potential structure.xyz",
	Short: "Compute the projected potential slices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		P, err := setup(args[0])
		if err != nil {
			return err
		}
		pot, err := prism.ComputePotential(P)
		if err != nil {
			return err
		}
		if err := persist.WriteVolume(output, pot, header(P)); err != nil {
			return err
		}
		if plotName != "" {
			if err := stemplot.SliceHeatMap(pot, 0, P.PixelSize, "Slice 1", plotName); err != nil {
				return err
			}
		}
		log.WithField("file", output).Info("Potential written")
		return sidecar(output, P.Meta)
	},
}

var smatrixCmd = &cobra.Command{
	Use:   "smatrix structure.xyz",
	Short: "Compute the compact S-matrix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		P, err := setup(args[0])
		if err != nil {
			return err
		}
		var pot *grid.Volume
		if potentialFile != "" {
			if pot, _, err = persist.ReadVolume(potentialFile); err != nil {
				return err
			}
		} else if pot, err = prism.ComputePotential(P); err != nil {
			return err
		}
		P.Progress = &progressLog{}
		S, err := prism.BuildCompactMatrix(P, pot)
		if err != nil {
			return err
		}
		h := header(P)
		h["numberBeams"] = strconv.Itoa(S.NumberBeams())
		if err := persist.WriteCVolume(output, S.Data, h); err != nil {
			return err
		}
		if plotName != "" {
			if err := stemplot.SMatrixIntensity(S, 0, "Beam 1", plotName); err != nil {
				return err
			}
		}
		log.WithField("file", output).Info("Compact S-matrix written")
		return sidecar(output, P.Meta)
	},
}

var importCmd = &cobra.Command{
	Use:   "import structure.xyz smatrix",
	Short: "Read a compact S-matrix and rebuild its sampling",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		P, err := setup(args[0])
		if err != nil {
			return err
		}
		data, h, err := persist.ReadCVolume(args[1])
		if err != nil {
			return err
		}
		S, err := prism.ImportCompactMatrix(P, data)
		if err != nil {
			return err
		}
		if n, ok := h["numberBeams"]; ok && n != strconv.Itoa(S.NumberBeams()) {
			log.Warnf("%s says it has %s beams, found %d", args[1], n, S.NumberBeams())
		}
		fmt.Printf("%d beams, output %dx%d pixels of %.4gx%.4g A\n", S.NumberBeams(), S.Output.Rows, S.Output.Cols, S.Output.PixelSize[0], S.Output.PixelSize[1])
		if plotName != "" {
			return stemplot.SMatrixIntensity(S, 0, "Beam 1", plotName)
		}
		return nil
	},
}

//header returns the sampling data stored with the arrays.
func header(P *prism.Parameters) map[string]string {
	g := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	return map[string]string{
		"E0":         g(P.Meta.E0),
		"lambda":     g(P.Lambda),
		"pixelSizeY": g(P.PixelSize[0]),
		"pixelSizeX": g(P.PixelSize[1]),
		"cellZ":      g(P.Cell[0]),
		"cellY":      g(P.Cell[1]),
		"cellX":      g(P.Cell[2]),
		"algorithm":  P.Meta.Algorithm,
	}
}

func init() {
	bindFlags(rootCmd.PersistentFlags())
	for _, c := range []*cobra.Command{potentialCmd, smatrixCmd} {
		c.Flags().StringVarP(&output, "output", "o", "", "output file, compressed according to its extension")
		c.MarkFlagRequired("output")
	}
	for _, c := range []*cobra.Command{potentialCmd, smatrixCmd, importCmd} {
		c.Flags().StringVar(&plotName, "plot", "", "also plot the first slice or beam to this file")
	}
	smatrixCmd.Flags().StringVar(&potentialFile, "potential", "", "use the potential in this file instead of computing it")
	rootCmd.AddCommand(potentialCmd, smatrixCmd, importCmd)
}
