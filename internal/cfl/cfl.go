// Package cfl reads and writes BART-style complex float arrays: a
// <base>.hdr text file holding the dimensions and a <base>.cfl file holding
// the little-endian complex float32 samples in column-major order.
package cfl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kspace-tools/kspace/internal/dims"
)

const dimensionsMarker = "# Dimensions"

// Write stores data under base as base.hdr + base.cfl. The descriptor's
// element count must match the buffer length; all 16 axes are written to
// the header.
func Write(base string, data []complex64, d dims.Dim) error {
	if d.Numel() != len(data) {
		return fmt.Errorf("cfl: buffer has %d samples but dimensions describe %d", len(data), d.Numel())
	}
	if err := writeHeader(base+".hdr", d); err != nil {
		return err
	}
	return writeData(base+".cfl", data)
}

// Read loads base.hdr + base.cfl written by Write (or by BART itself).
func Read(base string) ([]complex64, dims.Dim, error) {
	d, err := ReadHeader(base)
	if err != nil {
		return nil, d, err
	}
	data, err := readData(base+".cfl", d.Numel())
	return data, d, err
}

// ReadHeader parses base.hdr without touching the data file.
func ReadHeader(base string) (dims.Dim, error) {
	var d dims.Dim
	f, err := os.Open(base + ".hdr") //nolint:gosec // path comes from the CLI
	if err != nil {
		return d, fmt.Errorf("cfl: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != dimensionsMarker {
			continue
		}
		if !sc.Scan() {
			return d, fmt.Errorf("cfl: %s.hdr: missing dimensions line", base)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || len(fields) > dims.MaxAxes {
			return d, fmt.Errorf("cfl: %s.hdr: expected 1..%d dimensions, got %d", base, dims.MaxAxes, len(fields))
		}
		shape := make([]int, len(fields))
		for i, field := range fields {
			n, err := strconv.Atoi(field)
			if err != nil || n < 0 {
				return d, fmt.Errorf("cfl: %s.hdr: bad dimension %q", base, field)
			}
			shape[i] = n
		}
		return dims.FromShape(shape), nil
	}
	if err := sc.Err(); err != nil {
		return d, fmt.Errorf("cfl: %w", err)
	}
	return d, fmt.Errorf("cfl: %s.hdr: no %q section", base, dimensionsMarker)
}

func writeHeader(path string, d dims.Dim) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return fmt.Errorf("cfl: %w", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, dimensionsMarker)
	shape := d.Shape()
	parts := make([]string, len(shape))
	for i, size := range shape {
		parts[i] = strconv.Itoa(size)
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cfl: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cfl: %w", err)
	}
	return nil
}

func writeData(path string, data []complex64) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return fmt.Errorf("cfl: %w", err)
	}
	w := bufio.NewWriterSize(f, 1<<20)
	var buf [8]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(real(v)))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(imag(v)))
		if _, err := w.Write(buf[:]); err != nil {
			_ = f.Close()
			return fmt.Errorf("cfl: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cfl: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cfl: %w", err)
	}
	return nil
}

func readData(path string, numel int) ([]complex64, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return nil, fmt.Errorf("cfl: %w", err)
	}
	if len(raw) != 8*numel {
		return nil, fmt.Errorf("cfl: %s: expected %d bytes for %d samples, got %d", path, 8*numel, numel, len(raw))
	}
	data := make([]complex64, numel)
	for i := range data {
		re := math.Float32frombits(binary.LittleEndian.Uint32(raw[8*i:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(raw[8*i+4:]))
		data[i] = complex(re, im)
	}
	return data, nil
}
