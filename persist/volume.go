/*
 * volume.go, part of goPrism.
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
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rmera/goprism/grid"
)

const (
	realKind    = "real"
	complexKind = "complex"
)

//zstdReadCloser makes a *zstd.Decoder an io.ReadCloser, as its Close method returns nothing.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

//compressor returns the writer to use for a file with the given name.
func compressor(name string, w io.Writer) (io.WriteCloser, error) {
	switch last(name) {
	case 'z':
		return gzip.NewWriterLevel(w, gzip.BestSpeed)
	case 'w':
		return nopWriteCloser{w}, nil
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func decompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch last(name) {
	case 'z':
		return gzip.NewReader(r)
	case 'w':
		return io.NopCloser(r), nil
	}
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zstdReadCloser{d}, nil
}

func last(name string) byte {
	if name == "" {
		return 0
	}
	return strings.ToLower(name)[len(name)-1]
}

func writeHeader(w io.Writer, header map[string]string, kind string, s, r, c int) error {
	keys := make([]string, 0, len(header))
	for k := range header {
		if strings.ContainsAny(k, "=\n") || strings.Contains(header[k], "\n") || strings.HasPrefix(k, "**") {
			return fmt.Errorf("invalid header entry %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, header[k]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "** %s %d %d %d\n", kind, s, r, c)
	return err
}

//readHeader returns the header entries, the kind and the extents.
func readHeader(r *bufio.Reader) (map[string]string, string, [3]int, error) {
	m := make(map[string]string)
	var dims [3]int
	for {
		str, err := r.ReadString('\n')
		if err != nil {
			return nil, "", dims, fmt.Errorf("can't read header: %w", err)
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			f := strings.Fields(str)
			if len(f) != 5 {
				return nil, "", dims, fmt.Errorf("malformed extents line %q", str)
			}
			for i := range dims {
				if dims[i], err = strconv.Atoi(f[2+i]); err != nil {
					return nil, "", dims, fmt.Errorf("malformed extents line %q", str)
				}
			}
			return m, f[1], dims, nil
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, "", dims, fmt.Errorf("malformed header line %q", str)
		}
		m[kv[0]] = kv[1]
	}
}

//EncodeVolume writes V, with the given header, to w without compression.
func EncodeVolume(w io.Writer, V *grid.Volume, header map[string]string) error {
	s, r, c := V.Dims()
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, header, realKind, s, r, c); err != nil {
		return errDecorate(err, "", "EncodeVolume")
	}
	buf := make([]byte, 8*V.SlabLen())
	for k := 0; k < s; k++ {
		for i, v := range V.RawSlab(k) {
			binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
		}
		if _, err := bw.Write(buf); err != nil {
			return errDecorate(err, "", "EncodeVolume")
		}
	}
	if err := bw.Flush(); err != nil {
		return errDecorate(err, "", "EncodeVolume")
	}
	return nil
}

//EncodeCVolume writes C, with the given header, to w without compression.
func EncodeCVolume(w io.Writer, C *grid.CVolume, header map[string]string) error {
	s, r, c := C.Dims()
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, header, complexKind, s, r, c); err != nil {
		return errDecorate(err, "", "EncodeCVolume")
	}
	buf := make([]byte, 16*C.SlabLen())
	for k := 0; k < s; k++ {
		for i, v := range C.RawSlab(k) {
			binary.LittleEndian.PutUint64(buf[16*i:], math.Float64bits(real(v)))
			binary.LittleEndian.PutUint64(buf[16*i+8:], math.Float64bits(imag(v)))
		}
		if _, err := bw.Write(buf); err != nil {
			return errDecorate(err, "", "EncodeCVolume")
		}
	}
	if err := bw.Flush(); err != nil {
		return errDecorate(err, "", "EncodeCVolume")
	}
	return nil
}

//DecodeVolume reads a real volume written by EncodeVolume from r, and returns it with its header.
func DecodeVolume(r io.Reader) (*grid.Volume, map[string]string, error) {
	br := bufio.NewReader(r)
	h, kind, d, err := readHeader(br)
	if err != nil {
		return nil, nil, errDecorate(err, "", "DecodeVolume")
	}
	if kind != realKind {
		return nil, nil, newError("", "DecodeVolume", "expected a %s volume, found %s", realKind, kind)
	}
	V, err := grid.NewVolume(d[0], d[1], d[2])
	if err != nil {
		return nil, nil, errDecorate(err, "", "DecodeVolume")
	}
	buf := make([]byte, 8*V.SlabLen())
	for k := 0; k < d[0]; k++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, nil, newError("", "DecodeVolume", "slab %d: %s", k, err.Error())
		}
		slab := V.RawSlab(k)
		for i := range slab {
			slab[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
		}
	}
	return V, h, nil
}

//DecodeCVolume reads a complex volume written by EncodeCVolume from r, and returns it with its header.
func DecodeCVolume(r io.Reader) (*grid.CVolume, map[string]string, error) {
	br := bufio.NewReader(r)
	h, kind, d, err := readHeader(br)
	if err != nil {
		return nil, nil, errDecorate(err, "", "DecodeCVolume")
	}
	if kind != complexKind {
		return nil, nil, newError("", "DecodeCVolume", "expected a %s volume, found %s", complexKind, kind)
	}
	C, err := grid.NewCVolume(d[0], d[1], d[2])
	if err != nil {
		return nil, nil, errDecorate(err, "", "DecodeCVolume")
	}
	buf := make([]byte, 16*C.SlabLen())
	for k := 0; k < d[0]; k++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, nil, newError("", "DecodeCVolume", "slab %d: %s", k, err.Error())
		}
		slab := C.RawSlab(k)
		for i := range slab {
			re := math.Float64frombits(binary.LittleEndian.Uint64(buf[16*i:]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(buf[16*i+8:]))
			slab[i] = complex(re, im)
		}
	}
	return C, h, nil
}

//create opens name for writing, through the compressor for its extension, and returns
//a function that closes everything and returns the first error found.
func create(name string) (io.Writer, func() error, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	z, err := compressor(name, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	closer := func() error {
		err := z.Close()
		if err2 := f.Close(); err == nil {
			err = err2
		}
		return err
	}
	return z, closer, nil
}

func open(name string) (io.Reader, func(), error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	z, err := decompressor(name, bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return z, func() { z.Close(); f.Close() }, nil
}

//WriteVolume writes V to the file name, compressed according to its extension.
func WriteVolume(name string, V *grid.Volume, header map[string]string) error {
	w, closer, err := create(name)
	if err != nil {
		return errDecorate(err, name, "WriteVolume")
	}
	if err := EncodeVolume(w, V, header); err != nil {
		closer()
		return errDecorate(err, name, "WriteVolume")
	}
	if err := closer(); err != nil {
		return errDecorate(err, name, "WriteVolume")
	}
	return nil
}

//ReadVolume reads a real volume and its header from the file name.
func ReadVolume(name string) (*grid.Volume, map[string]string, error) {
	r, closer, err := open(name)
	if err != nil {
		return nil, nil, errDecorate(err, name, "ReadVolume")
	}
	defer closer()
	V, h, err := DecodeVolume(r)
	if err != nil {
		return nil, nil, errDecorate(err, name, "ReadVolume")
	}
	return V, h, nil
}

//WriteCVolume writes C to the file name, compressed according to its extension.
func WriteCVolume(name string, C *grid.CVolume, header map[string]string) error {
	w, closer, err := create(name)
	if err != nil {
		return errDecorate(err, name, "WriteCVolume")
	}
	if err := EncodeCVolume(w, C, header); err != nil {
		closer()
		return errDecorate(err, name, "WriteCVolume")
	}
	if err := closer(); err != nil {
		return errDecorate(err, name, "WriteCVolume")
	}
	return nil
}

//ReadCVolume reads a complex volume and its header from the file name.
func ReadCVolume(name string) (*grid.CVolume, map[string]string, error) {
	r, closer, err := open(name)
	if err != nil {
		return nil, nil, errDecorate(err, name, "ReadCVolume")
	}
	defer closer()
	C, h, err := DecodeCVolume(r)
	if err != nil {
		return nil, nil, errDecorate(err, name, "ReadCVolume")
	}
	return C, h, nil
}
