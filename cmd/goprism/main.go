/*
 * main.go, part of goPrism.
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

//goprism computes projected potentials and compact S-matrices for STEM simulations.
//
//	goprism potential structure.xyz -o pot.zst
//	goprism smatrix structure.xyz -o smatrix.zst [--potential pot.zst]
//	goprism import structure.xyz smatrix.zst
//
//Parameters are read from a YAML file given with --config, and can be overridden with flags.
package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	output     string
	plotName   string
	log        = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:           "goprism",
	Short:         "PRISM potentials and compact S-matrices",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(logLevel)
	},
}

func setupLogger(level string) error {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("goprism failed")
		os.Exit(1)
	}
}
