/*
 * metadata.go, part of goPrism.
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

package persist

import (
	"io"

	prism "github.com/rmera/goprism"
	"gopkg.in/yaml.v3"
)

//WriteMetadata writes M to w as YAML.
func WriteMetadata(w io.Writer, M *prism.Metadata) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(M); err != nil {
		return errDecorate(err, "", "WriteMetadata")
	}
	if err := enc.Close(); err != nil {
		return errDecorate(err, "", "WriteMetadata")
	}
	return nil
}

//ReadMetadata reads YAML metadata from r. Parameters not in r take their default values.
//Unknown keys are an error.
func ReadMetadata(r io.Reader) (*prism.Metadata, error) {
	M := prism.DefaultMetadata()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(M); err != nil && err != io.EOF {
		return nil, errDecorate(err, "", "ReadMetadata")
	}
	return M, nil
}
